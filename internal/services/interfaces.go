package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"avrexpense/internal/models"
	"avrexpense/internal/pagination"
)

// BudgetValidationResult is the outcome of checking a candidate expense
// against a department's remaining budget. Err carries the typed cause when
// Allowed is false so callers can map it onto a response.
type BudgetValidationResult struct {
	Allowed   bool            `json:"allowed"`
	Allocated decimal.Decimal `json:"allocated"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Reason    string          `json:"reason,omitempty"`
	Err       error           `json:"-"`
}

// DepartmentSummary is the spend position of one department.
type DepartmentSummary struct {
	Allocated  decimal.Decimal `json:"allocated"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
}

// BudgetLedgerServicer answers budget questions from approved spend.
type BudgetLedgerServicer interface {
	Evaluate(ctx context.Context, projectID, department string, amount decimal.Decimal) *BudgetValidationResult
	Summary(ctx context.Context, projectID string) (map[string]DepartmentSummary, error)
	HasBudget(ctx context.Context, projectID string) bool
}

// AuthoritySource records whether an authority set came from the project's own
// assignments or from the system-wide fallback.
type AuthoritySource string

const (
	AuthoritySourceExplicit AuthoritySource = "explicit"
	AuthoritySourceFallback AuthoritySource = "fallback"
)

// Authority is the set of users currently able to review a project's expenses.
type Authority struct {
	ApproverIDs       []string        `json:"approver_ids"`
	ProductionHeadIDs []string        `json:"production_head_ids"`
	Source            AuthoritySource `json:"source"`
}

// IsEmpty reports whether nobody holds authority.
func (a *Authority) IsEmpty() bool {
	return a == nil || (len(a.ApproverIDs) == 0 && len(a.ProductionHeadIDs) == 0)
}

// Holds reports whether userID is in either authority set.
func (a *Authority) Holds(userID string) bool {
	if a == nil {
		return false
	}
	return models.ContainsID(a.ApproverIDs, userID) || models.ContainsID(a.ProductionHeadIDs, userID)
}

// AuthorityResolverServicer resolves who may act on a project right now.
type AuthorityResolverServicer interface {
	AuthorityFor(ctx context.Context, projectID string) (*Authority, error)
	IsUserAssignedToProject(ctx context.Context, user *models.User, projectID string) bool
}

// ProjectSweeper expires a single project's overdue delegations.
type ProjectSweeper interface {
	SweepProject(ctx context.Context, projectID string) (int, error)
}

// CreateDelegationInput describes a new temporary approver.
type CreateDelegationInput struct {
	ApproverID   string
	StartDate    time.Time
	ExpiringDate *time.Time
}

// UpdateDelegationInput carries the fields an edit may change. Nil fields are
// left alone; ClearExpiringDate makes the delegation open-ended.
type UpdateDelegationInput struct {
	ApproverID        *string
	StartDate         *time.Time
	ExpiringDate      *time.Time
	ClearExpiringDate bool
}

// DelegationServicer owns the temporary approver lifecycle.
type DelegationServicer interface {
	Create(ctx context.Context, projectID, createdBy string, in CreateDelegationInput) (*models.TemporaryApprover, error)
	Update(ctx context.Context, projectID, delegationID, changedBy string, in UpdateDelegationInput) (*models.TemporaryApprover, error)
	Expire(ctx context.Context, projectID string, record *models.TemporaryApprover) (bool, error)
	ExpireDue(ctx context.Context, projectID string) (int, error)
	Remove(ctx context.Context, projectID, delegationID, removedBy string) error
	List(ctx context.Context, projectID string) ([]models.TemporaryApprover, error)
}

// ProjectError is a failure confined to one project during a batch job.
type ProjectError struct {
	ProjectID string `json:"project_id"`
	Error     string `json:"error"`
}

// SweepResult summarises one pass of the expiry sweep.
type SweepResult struct {
	ProjectsChecked  int            `json:"projects_checked"`
	TotalDeactivated int            `json:"total_deactivated"`
	Errors           []ProjectError `json:"errors,omitempty"`
	Duration         time.Duration  `json:"duration_ns"`
}

// ExpirySweeperServicer drives overdue delegations to EXPIRED.
type ExpirySweeperServicer interface {
	ProjectSweeper
	Run(ctx context.Context) (*SweepResult, error)
	RunNow() error
	Start(interval, jitter time.Duration) error
	IsScheduled() bool
	Status() SweepStatus
}

// SweepStatus is the operator view of the expiry sweep.
type SweepStatus struct {
	Scheduled  bool         `json:"scheduled"`
	LastRunAt  *time.Time   `json:"last_run_at,omitempty"`
	LastResult *SweepResult `json:"last_result,omitempty"`
	LastError  string       `json:"last_error,omitempty"`
}

// DecisionNotice describes a review outcome for the submitter.
type DecisionNotice struct {
	ExpenseID    string
	ProjectID    string
	SubmitterID  string
	Approved     bool
	Amount       decimal.Decimal
	ReviewerName string
	Comments     string
}

// NotificationRouterServicer persists in-app notifications and fans out pushes.
type NotificationRouterServicer interface {
	NotifySubmission(ctx context.Context, projectID, expenseID, submitterName string, amount decimal.Decimal, category string) (int, error)
	NotifyDecision(ctx context.Context, notice DecisionNotice) error
	NotifyAssignment(ctx context.Context, projectID, userID, roleLabel string) error
	NotifyPendingApprovals(ctx context.Context, projectID string, pendingCount int64) (int, error)
	NotifyDelegationExpired(ctx context.Context, record *models.TemporaryApprover) (int, error)
	NotifyByRoleFiltered(ctx context.Context, role models.UserRole, projectID, title, message string, notificationType models.NotificationType) (int, error)
	ListForUser(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error)
	RegisterDevice(ctx context.Context, userID, token, platform string) error
}

// SubmitExpenseInput is a new expense as entered by its submitter.
type SubmitExpenseInput struct {
	ProjectID   string
	Department  string
	Category    string
	Description string
	Amount      decimal.Decimal
	Date        time.Time
}

// ExpenseServicer runs the submission and review workflow.
type ExpenseServicer interface {
	SubmitExpense(ctx context.Context, submitter *models.User, in SubmitExpenseInput) (*models.Expense, error)
	DecideExpense(ctx context.Context, reviewer *models.User, expenseID string, approved bool, comments string) (*models.Expense, error)
	ListProjectExpenses(ctx context.Context, projectID string, status *models.ExpenseStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	RemindPendingApprovals(ctx context.Context, projectID string) (int, error)
}

// ReminderResult summarises one pass of the pending-approval reminder.
type ReminderResult struct {
	ProjectsChecked  int            `json:"projects_checked"`
	ProjectsNotified int            `json:"projects_notified"`
	Errors           []ProjectError `json:"errors,omitempty"`
}

// AuditServicer records compliance events. It never fails the caller.
type AuditServicer interface {
	Log(ctx context.Context, actorID, action, resourceType, resourceID, projectID string, changes map[string]any)
}
