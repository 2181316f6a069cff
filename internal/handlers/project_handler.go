package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/models"
	"avrexpense/internal/services"
)

// ProjectHandler serves the budget, authority and assignment views of a project.
type ProjectHandler struct {
	ledger   services.BudgetLedgerServicer
	resolver services.AuthorityResolverServicer
	router   services.NotificationRouterServicer
	expenses services.ExpenseServicer
	users    UserLookup
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(
	ledger services.BudgetLedgerServicer,
	resolver services.AuthorityResolverServicer,
	router services.NotificationRouterServicer,
	expenses services.ExpenseServicer,
	users UserLookup,
) *ProjectHandler {
	return &ProjectHandler{ledger: ledger, resolver: resolver, router: router, expenses: expenses, users: users}
}

// EvaluateBudgetQuery holds the candidate expense for a budget check.
type EvaluateBudgetQuery struct {
	Department string `form:"department" binding:"required,department"`
	Amount     string `form:"amount" binding:"required"`
}

// AssignmentRequest names the user added to a project.
type AssignmentRequest struct {
	UserID    string `json:"user_id" binding:"required,uuid"`
	RoleLabel string `json:"role_label" binding:"required,min=1,max=64"`
}

// EvaluateBudget checks a candidate amount against a department's remaining budget.
// @Summary     Evaluate budget
// @Description Check whether an amount fits in the department's remaining budget
// @Tags        budget
// @Produce     json
// @Security    BearerAuth
// @Param       id         path  string true "Project ID"
// @Param       department query string true "Department"
// @Param       amount     query string true "Candidate amount"
// @Success     200 {object} services.BudgetValidationResult "Validation result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /projects/{id}/budget/evaluate [get]
func (h *ProjectHandler) EvaluateBudget(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if _, err := requireProjectAccess(c, h.users, h.resolver, projectID); err != nil {
		respondWithError(c, err)
		return
	}

	var q EvaluateBudgetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	amount, err := decimal.NewFromString(q.Amount)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a decimal number"))
		return
	}

	result := h.ledger.Evaluate(c.Request.Context(), projectID, q.Department, amount)
	if apperrors.Kind(result.Err) == apperrors.KindTransient {
		respondWithError(c, result.Err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"validation": result})
}

// GetBudgetSummary returns per-department spend for a project.
// @Summary     Budget summary
// @Tags        budget
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     200 {object} map[string]services.DepartmentSummary "Summary by department"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id}/budget/summary [get]
func (h *ProjectHandler) GetBudgetSummary(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if _, err := requireProjectAccess(c, h.users, h.resolver, projectID); err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.ledger.Summary(c.Request.Context(), projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": summary})
}

// GetAuthority returns who may currently approve the project's expenses.
// @Summary     Effective authority
// @Tags        authority
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     200 {object} services.Authority "Authority sets"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id}/authority [get]
func (h *ProjectHandler) GetAuthority(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if _, err := requireProjectAccess(c, h.users, h.resolver, projectID); err != nil {
		respondWithError(c, err)
		return
	}

	authority, err := h.resolver.AuthorityFor(c.Request.Context(), projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authority": authority})
}

// NotifyAssignment tells a user they were added to the project.
// @Summary     Announce assignment
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Project ID"
// @Param       request body AssignmentRequest true "Assignment"
// @Success     202 {object} object "Notification queued"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /projects/{id}/assignments [post]
func (h *ProjectHandler) NotifyAssignment(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	user, err := requireProjectAccess(c, h.users, h.resolver, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := requireRole(user, models.RoleAdmin, models.RoleProductionHead); err != nil {
		respondWithError(c, err)
		return
	}

	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.router.NotifyAssignment(c.Request.Context(), projectID, req.UserID, req.RoleLabel); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "notified"})
}

// RemindPending reminds production heads about the project's pending expenses.
// @Summary     Pending reminder
// @Tags        projects
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     200 {object} object "Number of production heads notified"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /projects/{id}/pending-reminder [post]
func (h *ProjectHandler) RemindPending(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	user, err := requireProjectAccess(c, h.users, h.resolver, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := requireRole(user, models.RoleAdmin, models.RoleProductionHead); err != nil {
		respondWithError(c, err)
		return
	}

	notified, err := h.expenses.RemindPendingApprovals(c.Request.Context(), projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notified": notified})
}
