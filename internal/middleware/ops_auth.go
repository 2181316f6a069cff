package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/models"
)

var (
	errOpsNotConfigured = &apperrors.AppError{Code: "OPS_NOT_CONFIGURED", Message: "Ops API key is not configured", StatusCode: http.StatusServiceUnavailable}
	errInvalidAPIKey    = &apperrors.AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// OpsAuthMiddleware guards the ops endpoints. A request carrying X-API-Key is
// checked against apiKey; any other request needs an admin bearer token.
func OpsAuthMiddleware(apiKey, jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)
	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-Key"); key != "" {
			if apiKey == "" {
				abortWithError(c, errOpsNotConfigured)
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				abortWithError(c, errInvalidAPIKey)
				return
			}
			c.Set(UserIDKey, models.SystemActor)
			c.Next()
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}
		if models.UserRole(claims.Role) != models.RoleAdmin {
			abortWithError(c, apperrors.ErrForbidden)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}
