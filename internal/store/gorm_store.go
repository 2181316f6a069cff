package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/models"
	"avrexpense/internal/pagination"
)

// gormStore implements Store on top of a *gorm.DB.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by db.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

var _ Store = (*gormStore)(nil)

// translate maps driver errors onto the application taxonomy. A missing row
// becomes notFound; anything else is treated as a transient store failure.
func translate(err error, notFound *apperrors.AppError) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil {
		return notFound
	}
	return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
}

// --- projects ---

func (s *gormStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, translate(err, apperrors.ErrProjectNotFound)
	}
	return &project, nil
}

func (s *gormStore) GetProjectForUpdate(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, translate(err, apperrors.ErrProjectNotFound)
	}
	return &project, nil
}

func (s *gormStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, translate(err, nil)
	}
	return projects, nil
}

func (s *gormStore) CreateProject(ctx context.Context, project *models.Project) error {
	return translate(s.db.WithContext(ctx).Create(project).Error, nil)
}

func (s *gormStore) UpdateProject(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translate(result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrProjectNotFound
	}
	return nil
}

// --- expenses ---

func (s *gormStore) GetExpensesForProject(ctx context.Context, projectID string) ([]models.Expense, error) {
	var expenses []models.Expense
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("date ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return expenses, nil
}

func (s *gormStore) ListExpensesForProject(
	ctx context.Context,
	projectID string,
	status *models.ExpenseStatus,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Expense{}).Where("project_id = ?", projectID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, translate(err, nil)
	}

	var expenses []models.Expense
	if err := base.Order(page.OrderBy("date")).Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, translate(err, nil)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *gormStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&expense).Error; err != nil {
		return nil, translate(err, apperrors.ErrExpenseNotFound)
	}
	return &expense, nil
}

func (s *gormStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	return translate(s.db.WithContext(ctx).Create(expense).Error, nil)
}

func (s *gormStore) UpdateExpenseStatus(
	ctx context.Context,
	id string,
	from, to models.ExpenseStatus,
	fields map[string]any,
) (bool, error) {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["status"] = to

	result := s.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, translate(result.Error, nil)
	}
	return result.RowsAffected > 0, nil
}

func (s *gormStore) CountPendingExpenses(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("project_id = ? AND status = ?", projectID, models.ExpenseStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, nil)
	}
	return count, nil
}

// --- users ---

func (s *gormStore) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, translate(err, nil)
	}
	return users, nil
}

func (s *gormStore) GetUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("role = ?", role).Order("name ASC").Find(&users).Error; err != nil {
		return nil, translate(err, nil)
	}
	return users, nil
}

func (s *gormStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func (s *gormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error, nil)
}

// --- temporary approvers ---

func (s *gormStore) CreateTemporaryApprover(ctx context.Context, record *models.TemporaryApprover) error {
	return translate(s.db.WithContext(ctx).Create(record).Error, nil)
}

func (s *gormStore) GetTemporaryApprover(ctx context.Context, id string) (*models.TemporaryApprover, error) {
	var record models.TemporaryApprover
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, translate(err, apperrors.ErrDelegationNotFound)
	}
	return &record, nil
}

func (s *gormStore) ListTemporaryApprovers(ctx context.Context, projectID string) ([]models.TemporaryApprover, error) {
	var records []models.TemporaryApprover
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return records, nil
}

func (s *gormStore) ListActiveTemporaryApprovers(ctx context.Context, projectID string) ([]models.TemporaryApprover, error) {
	var records []models.TemporaryApprover
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return records, nil
}

func (s *gormStore) UpdateTemporaryApprover(ctx context.Context, id string, fields map[string]any) (bool, error) {
	if len(fields) == 0 {
		return true, nil
	}
	result := s.db.WithContext(ctx).
		Model(&models.TemporaryApprover{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(fields)
	if result.Error != nil {
		return false, translate(result.Error, nil)
	}
	return result.RowsAffected > 0, nil
}

func (s *gormStore) DeactivateTemporaryApprover(ctx context.Context, id, changedBy string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.TemporaryApprover{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{
			"is_active":  false,
			"status":     models.DelegationStatusExpired,
			"changed_by": changedBy,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, translate(result.Error, nil)
	}
	return result.RowsAffected > 0, nil
}

// --- notifications ---

func (s *gormStore) CreateNotification(ctx context.Context, notification *models.Notification) (string, error) {
	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return "", translate(err, nil)
	}
	return notification.ID, nil
}

func (s *gormStore) ListNotificationsForUser(
	ctx context.Context,
	userID string,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.Notification], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, translate(err, nil)
	}

	var notifications []models.Notification
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&notifications).Error; err != nil {
		return nil, translate(err, nil)
	}

	result := pagination.NewPageResponse(notifications, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// --- device tokens ---

func (s *gormStore) GetDeviceTokens(ctx context.Context, userID string) ([]string, error) {
	var tokens []string
	err := s.db.WithContext(ctx).
		Model(&models.DeviceToken{}).
		Where("user_id = ?", userID).
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return tokens, nil
}

// RegisterDeviceToken upserts on the token so a device that changes hands is
// re-pointed at its current user.
func (s *gormStore) RegisterDeviceToken(ctx context.Context, token *models.DeviceToken) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
	}).Create(token).Error
	return translate(err, nil)
}

// --- audit ---

func (s *gormStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error, nil)
}

// --- transactions ---

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
