package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/models"
	"avrexpense/internal/pagination"
	"avrexpense/internal/services"
)

// ExpenseHandler handles expense submission and review.
type ExpenseHandler struct {
	expenses services.ExpenseServicer
	access   ProjectAccess
	users    UserLookup
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenses services.ExpenseServicer, access ProjectAccess, users UserLookup) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, access: access, users: users}
}

// SubmitExpenseRequest represents the request payload for a new expense.
type SubmitExpenseRequest struct {
	Department  string          `json:"department" binding:"required,department"`
	Category    string          `json:"category" binding:"required,min=1,max=64"`
	Description string          `json:"description" binding:"max=500"`
	Amount      decimal.Decimal `json:"amount"`
	Date        *time.Time      `json:"date"`
}

// DecisionRequest represents an approve or reject decision.
type DecisionRequest struct {
	Approved *bool  `json:"approved" binding:"required"`
	Comments string `json:"comments" binding:"max=500"`
}

// SubmitExpense records a new PENDING expense.
// @Summary     Submit expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Project ID"
// @Param       request body SubmitExpenseRequest true "Expense"
// @Success     201 {object} models.Expense "Expense submitted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not assigned to project"
// @Failure     422 {object} ErrorResponse "Budget exceeded"
// @Router      /projects/{id}/expenses [post]
func (h *ExpenseHandler) SubmitExpense(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	user, err := currentUser(c, h.users)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.SubmitExpenseInput{
		ProjectID:   projectID,
		Department:  req.Department,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}

	expense, err := h.expenses.SubmitExpense(c.Request.Context(), user, in)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// ListExpenses returns a page of the project's expenses.
// @Summary     List expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Project ID"
// @Param       status    query string false "Filter by status (PENDING/APPROVED/REJECTED)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       order     query string false "Sort by date: asc or desc (default desc)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /projects/{id}/expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if _, err := requireProjectAccess(c, h.users, h.access, projectID); err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.ExpenseStatus
	if v := c.Query("status"); v != "" {
		s := models.ExpenseStatus(v)
		switch s {
		case models.ExpenseStatusPending, models.ExpenseStatusApproved, models.ExpenseStatusRejected:
			status = &s
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be PENDING, APPROVED or REJECTED"))
			return
		}
	}

	result, err := h.expenses.ListProjectExpenses(c.Request.Context(), projectID, status, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DecideExpense approves or rejects a PENDING expense.
// @Summary     Decide expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Expense ID"
// @Param       request body DecisionRequest true "Decision"
// @Success     200 {object} models.Expense "Expense decided"
// @Failure     403 {object} ErrorResponse "No authority on project"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Expense not pending"
// @Router      /expenses/{id}/decision [post]
func (h *ExpenseHandler) DecideExpense(c *gin.Context) {
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	user, err := currentUser(c, h.users)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenses.DecideExpense(c.Request.Context(), user, expenseID, *req.Approved, req.Comments)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}
