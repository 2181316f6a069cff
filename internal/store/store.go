// Package store is the durable-store collaborator the approval engine depends on.
// Services only see the Store interface; the GORM implementation backs it with
// PostgreSQL in production and SQLite in tests.
package store

import (
	"context"
	"time"

	"avrexpense/internal/models"
	"avrexpense/internal/pagination"
)

// Store is the capability interface over projects, expenses, users, delegations,
// notifications and device tokens. Every call is network I/O that may fail
// transiently; such failures surface as errors.ErrStoreUnavailable.
type Store interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	// GetProjectForUpdate reads a project and, inside a transaction, locks its row
	// until commit so read-modify-write of the member sets is serialized.
	GetProjectForUpdate(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, project *models.Project) error
	UpdateProject(ctx context.Context, id string, fields map[string]any) error

	GetExpensesForProject(ctx context.Context, projectID string) ([]models.Expense, error)
	ListExpensesForProject(ctx context.Context, projectID string, status *models.ExpenseStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	CreateExpense(ctx context.Context, expense *models.Expense) error
	// UpdateExpenseStatus moves an expense from one status to another. The write
	// only applies when the stored status still equals from; applied reports it.
	UpdateExpenseStatus(ctx context.Context, id string, from, to models.ExpenseStatus, fields map[string]any) (applied bool, err error)
	CountPendingExpenses(ctx context.Context, projectID string) (int64, error)

	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	CreateTemporaryApprover(ctx context.Context, record *models.TemporaryApprover) error
	GetTemporaryApprover(ctx context.Context, id string) (*models.TemporaryApprover, error)
	ListTemporaryApprovers(ctx context.Context, projectID string) ([]models.TemporaryApprover, error)
	ListActiveTemporaryApprovers(ctx context.Context, projectID string) ([]models.TemporaryApprover, error)
	// UpdateTemporaryApprover writes fields only while the record is still active.
	UpdateTemporaryApprover(ctx context.Context, id string, fields map[string]any) (applied bool, err error)
	// DeactivateTemporaryApprover is the compare-and-set on is_active: it flips an
	// active record to EXPIRED and reports false when another writer got there first.
	DeactivateTemporaryApprover(ctx context.Context, id, changedBy string, at time.Time) (applied bool, err error)

	CreateNotification(ctx context.Context, notification *models.Notification) (string, error)
	ListNotificationsForUser(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error)

	GetDeviceTokens(ctx context.Context, userID string) ([]string, error)
	RegisterDeviceToken(ctx context.Context, token *models.DeviceToken) error

	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error

	// Transaction runs fn against a Store bound to a single database transaction.
	// Returning an error from fn rolls the transaction back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
