package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/pagination"
	"avrexpense/internal/services"
)

// NotificationHandler serves the caller's inbox and push device registration.
type NotificationHandler struct {
	router services.NotificationRouterServicer
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(router services.NotificationRouterServicer) *NotificationHandler {
	return &NotificationHandler{router: router}
}

// RegisterDeviceRequest represents a push token registration.
type RegisterDeviceRequest struct {
	Token    string `json:"token" binding:"required,min=8,max=4096"`
	Platform string `json:"platform" binding:"omitempty,oneof=ios android web"`
}

// ListNotifications returns the caller's notifications, newest first.
// @Summary     List notifications
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Notification] "Paginated notifications"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.router.ListForUser(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RegisterDevice stores a push token for the caller.
// @Summary     Register device
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RegisterDeviceRequest true "Device token"
// @Success     201 {object} object "Device registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /devices [post]
func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.router.RegisterDevice(c.Request.Context(), userID, req.Token, req.Platform); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Device registered"})
}
