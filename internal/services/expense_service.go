package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/logger"
	"avrexpense/internal/models"
	"avrexpense/internal/pagination"
	"avrexpense/internal/store"
)

// expenseService handles expense submission and review.
type expenseService struct {
	store    store.Store
	ledger   BudgetLedgerServicer
	resolver AuthorityResolverServicer
	router   NotificationRouterServicer
	audit    AuditServicer
	now      func() time.Time
	logger   *zap.SugaredLogger
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(
	st store.Store,
	ledger BudgetLedgerServicer,
	resolver AuthorityResolverServicer,
	router NotificationRouterServicer,
	audit AuditServicer,
) ExpenseServicer {
	return &expenseService{
		store:    st,
		ledger:   ledger,
		resolver: resolver,
		router:   router,
		audit:    audit,
		now:      time.Now,
		logger:   logger.Named("expense"),
	}
}

// SubmitExpense checks the budget, stores the expense as PENDING and notifies
// the project's reviewers. A notification failure does not fail the submission.
func (s *expenseService) SubmitExpense(ctx context.Context, submitter *models.User, in SubmitExpenseInput) (*models.Expense, error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if _, err := s.store.GetProject(ctx, in.ProjectID); err != nil {
		return nil, err
	}
	if !s.resolver.IsUserAssignedToProject(ctx, submitter, in.ProjectID) {
		return nil, apperrors.ErrForbidden
	}

	check := s.ledger.Evaluate(ctx, in.ProjectID, in.Department, in.Amount)
	if !check.Allowed {
		return nil, check.Err
	}

	date := in.Date
	if date.IsZero() {
		date = s.now().UTC()
	}

	expense := &models.Expense{
		ProjectID:         in.ProjectID,
		Department:        in.Department,
		Category:          in.Category,
		Description:       in.Description,
		Amount:            in.Amount,
		Status:            models.ExpenseStatusPending,
		SubmittedByUserID: submitter.ID,
		SubmittedByName:   submitter.Name,
		Date:              date,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	if _, err := s.router.NotifySubmission(ctx, expense.ProjectID, expense.ID, submitter.Name, expense.Amount, expense.Category); err != nil {
		s.logger.Errorw("Failed to notify reviewers of submission",
			"project_id", expense.ProjectID,
			"expense_id", expense.ID,
			"error", err,
		)
	}
	return expense, nil
}

// DecideExpense approves or rejects a PENDING expense. The reviewer must hold
// authority on the project or be an admin.
func (s *expenseService) DecideExpense(ctx context.Context, reviewer *models.User, expenseID string, approved bool, comments string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.Status != models.ExpenseStatusPending {
		return nil, apperrors.ErrExpenseNotPending
	}

	if reviewer.Role != models.RoleAdmin {
		authority, err := s.resolver.AuthorityFor(ctx, expense.ProjectID)
		if err != nil {
			return nil, err
		}
		if !authority.Holds(reviewer.ID) {
			return nil, apperrors.ErrForbidden
		}
	}

	to := models.ExpenseStatusRejected
	action := AuditExpenseRejected
	if approved {
		to = models.ExpenseStatusApproved
		action = AuditExpenseApproved
	}
	reviewedAt := s.now().UTC()

	applied, err := s.store.UpdateExpenseStatus(ctx, expenseID, models.ExpenseStatusPending, to, map[string]any{
		"reviewed_by":     reviewer.ID,
		"reviewer_name":   reviewer.Name,
		"review_comments": comments,
		"reviewed_at":     reviewedAt,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.ErrExpenseNotPending
	}

	expense.Status = to
	expense.ReviewedBy = reviewer.ID
	expense.ReviewerName = reviewer.Name
	expense.ReviewComments = comments
	expense.ReviewedAt = &reviewedAt

	s.audit.Log(ctx, reviewer.ID, action, "expense", expense.ID, expense.ProjectID, map[string]any{
		"amount":   expense.Amount.String(),
		"comments": comments,
	})

	err = s.router.NotifyDecision(ctx, DecisionNotice{
		ExpenseID:    expense.ID,
		ProjectID:    expense.ProjectID,
		SubmitterID:  expense.SubmittedByUserID,
		Approved:     approved,
		Amount:       expense.Amount,
		ReviewerName: reviewer.Name,
		Comments:     comments,
	})
	if err != nil {
		s.logger.Errorw("Failed to notify submitter of decision",
			"expense_id", expense.ID,
			"submitter_id", expense.SubmittedByUserID,
			"error", err,
		)
	}
	return expense, nil
}

// ListProjectExpenses returns a page of the project's expenses, optionally by status.
func (s *expenseService) ListProjectExpenses(
	ctx context.Context,
	projectID string,
	status *models.ExpenseStatus,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.Expense], error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesForProject(ctx, projectID, status, page)
}

// RemindPendingApprovals notifies the project's production heads when any
// expense is still PENDING, returning how many were notified.
func (s *expenseService) RemindPendingApprovals(ctx context.Context, projectID string) (int, error) {
	count, err := s.store.CountPendingExpenses(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	return s.router.NotifyPendingApprovals(ctx, projectID, count)
}
