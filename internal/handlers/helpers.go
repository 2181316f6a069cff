package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/logger"
	"avrexpense/internal/models"
	"avrexpense/internal/uuid"
)

// UserLookup loads the acting user behind a verified token.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// ProjectAccess answers whether a user may see a project.
type ProjectAccess interface {
	IsUserAssignedToProject(ctx context.Context, user *models.User, projectID string) bool
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString("userID")
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// currentUser resolves the acting user. Unknown users are unauthorized and
// deactivated ones forbidden.
func currentUser(c *gin.Context, users UserLookup) (*models.User, error) {
	userID, err := getUserID(c)
	if err != nil {
		return nil, err
	}
	user, err := users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if apperrors.Kind(err) == apperrors.KindNotFound {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrForbidden
	}
	return user, nil
}

// requireProjectAccess loads the acting user and checks they may see projectID.
func requireProjectAccess(c *gin.Context, users UserLookup, access ProjectAccess, projectID string) (*models.User, error) {
	user, err := currentUser(c, users)
	if err != nil {
		return nil, err
	}
	if !access.IsUserAssignedToProject(c.Request.Context(), user, projectID) {
		return nil, apperrors.ErrForbidden
	}
	return user, nil
}

// requireRole fails with ErrForbidden unless user holds one of roles.
func requireRole(user *models.User, roles ...models.UserRole) error {
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return apperrors.ErrForbidden
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message}})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{Error: ErrorDetail{
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
	}})
}
