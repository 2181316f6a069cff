package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/models"
	"avrexpense/internal/services"
)

// DelegationHandler manages a project's temporary approvers.
type DelegationHandler struct {
	delegations services.DelegationServicer
	access      ProjectAccess
	users       UserLookup
}

// NewDelegationHandler creates a new DelegationHandler.
func NewDelegationHandler(delegations services.DelegationServicer, access ProjectAccess, users UserLookup) *DelegationHandler {
	return &DelegationHandler{delegations: delegations, access: access, users: users}
}

// CreateDelegationRequest represents the request payload for a new temporary approver.
type CreateDelegationRequest struct {
	ApproverID   string     `json:"approver_id" binding:"required,uuid"`
	StartDate    *time.Time `json:"start_date"`
	ExpiringDate *time.Time `json:"expiring_date"`
}

// UpdateDelegationRequest represents the request payload for editing a delegation.
type UpdateDelegationRequest struct {
	ApproverID        *string    `json:"approver_id" binding:"omitempty,uuid"`
	StartDate         *time.Time `json:"start_date"`
	ExpiringDate      *time.Time `json:"expiring_date"`
	ClearExpiringDate bool       `json:"clear_expiring_date"`
}

// manager loads the acting user and checks they may manage delegations on projectID.
func (h *DelegationHandler) manager(c *gin.Context, projectID string) (*models.User, error) {
	user, err := requireProjectAccess(c, h.users, h.access, projectID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(user, models.RoleAdmin, models.RoleProductionHead); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateDelegation appoints a temporary approver.
// @Summary     Create delegation
// @Description Appoint a temporary approver; a project holds at most one active delegation
// @Tags        delegations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Project ID"
// @Param       request body CreateDelegationRequest true "Delegation"
// @Success     201 {object} models.TemporaryApprover "Delegation created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Delegation already active"
// @Router      /projects/{id}/delegations [post]
func (h *DelegationHandler) CreateDelegation(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	user, err := h.manager(c, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateDelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.CreateDelegationInput{ApproverID: req.ApproverID, ExpiringDate: req.ExpiringDate}
	if req.StartDate != nil {
		in.StartDate = *req.StartDate
	}

	record, err := h.delegations.Create(c.Request.Context(), projectID, user.ID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"delegation": record})
}

// UpdateDelegation edits an active delegation.
// @Summary     Update delegation
// @Tags        delegations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id           path string                  true "Project ID"
// @Param       delegationId path string                  true "Delegation ID"
// @Param       request      body UpdateDelegationRequest true "Changes"
// @Success     200 {object} models.TemporaryApprover "Delegation updated"
// @Failure     404 {object} ErrorResponse "Delegation not found"
// @Failure     409 {object} ErrorResponse "Delegation no longer active"
// @Router      /projects/{id}/delegations/{delegationId} [put]
func (h *DelegationHandler) UpdateDelegation(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	delegationID, err := parsePathID(c, "delegationId")
	if err != nil {
		respondWithError(c, err)
		return
	}
	user, err := h.manager(c, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateDelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.ClearExpiringDate && req.ExpiringDate != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "expiring_date and clear_expiring_date are mutually exclusive"))
		return
	}

	record, err := h.delegations.Update(c.Request.Context(), projectID, delegationID, user.ID, services.UpdateDelegationInput{
		ApproverID:        req.ApproverID,
		StartDate:         req.StartDate,
		ExpiringDate:      req.ExpiringDate,
		ClearExpiringDate: req.ClearExpiringDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delegation": record})
}

// RemoveDelegation ends a delegation early.
// @Summary     Remove delegation
// @Tags        delegations
// @Produce     json
// @Security    BearerAuth
// @Param       id           path string true "Project ID"
// @Param       delegationId path string true "Delegation ID"
// @Success     200 {object} object "Delegation removed"
// @Failure     404 {object} ErrorResponse "Delegation not found"
// @Failure     409 {object} ErrorResponse "Delegation no longer active"
// @Router      /projects/{id}/delegations/{delegationId} [delete]
func (h *DelegationHandler) RemoveDelegation(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	delegationID, err := parsePathID(c, "delegationId")
	if err != nil {
		respondWithError(c, err)
		return
	}
	user, err := h.manager(c, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.delegations.Remove(c.Request.Context(), projectID, delegationID, user.ID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Temporary approver removed"})
}

// ListDelegations returns the project's delegation history, newest first.
// @Summary     List delegations
// @Tags        delegations
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     200 {array}  models.TemporaryApprover "Delegations"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /projects/{id}/delegations [get]
func (h *DelegationHandler) ListDelegations(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if _, err := requireProjectAccess(c, h.users, h.access, projectID); err != nil {
		respondWithError(c, err)
		return
	}

	records, err := h.delegations.List(c.Request.Context(), projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if records == nil {
		records = []models.TemporaryApprover{}
	}
	c.JSON(http.StatusOK, gin.H{"delegations": records})
}
