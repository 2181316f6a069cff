package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"avrexpense/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active user with the given role, a unique phone
// number and every notification preference enabled.
func CreateTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	return CreateTestUserWith(t, db, &models.User{Role: role})
}

// CreateTestUserWith fills in missing name, phone and preferences on user and
// persists it as active. Use DeactivateTestUser for inactive users.
func CreateTestUserWith(t *testing.T, db *gorm.DB, user *models.User) *models.User {
	t.Helper()

	n := nextID()
	if user.Name == "" {
		user.Name = fmt.Sprintf("Test User %d", n)
	}
	if user.Phone == "" {
		user.Phone = fmt.Sprintf("+1555%07d", n)
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.NotificationPreferences == (models.NotificationPreferences{}) {
		user.NotificationPreferences = models.AllNotificationPreferences()
	}
	if user.AssignedProjects == nil {
		user.AssignedProjects = datatypes.JSONSlice[string]{}
	}
	user.IsActive = true

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// DeactivateTestUser flags a user inactive.
func DeactivateTestUser(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate test user: %v", err)
	}
	user.IsActive = false
}

// Budgets builds a department allocation map from whole-unit amounts.
func Budgets(pairs map[string]int64) models.DepartmentBudgets {
	out := make(models.DepartmentBudgets, len(pairs))
	for dept, amount := range pairs {
		out[dept] = decimal.NewFromInt(amount)
	}
	return out
}

// CreateTestProject creates a project with a Marketing allocation of 10000.
// Each opt may adjust the project before it is saved.
func CreateTestProject(t *testing.T, db *gorm.DB, opts ...func(*models.Project)) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:              fmt.Sprintf("Test Project %d", nextID()),
		DepartmentBudgets: datatypes.NewJSONType(Budgets(map[string]int64{"Marketing": 10000})),
		ApproverIDs:       datatypes.JSONSlice[string]{},
		ProductionHeadIDs: datatypes.JSONSlice[string]{},
		TeamMembers:       datatypes.JSONSlice[string]{},
	}
	for _, opt := range opts {
		opt(project)
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// WithBudgets replaces the project's department allocations.
func WithBudgets(budgets models.DepartmentBudgets) func(*models.Project) {
	return func(p *models.Project) { p.DepartmentBudgets = datatypes.NewJSONType(budgets) }
}

// WithApprovers sets the project's explicit approver ids.
func WithApprovers(ids ...string) func(*models.Project) {
	return func(p *models.Project) { p.ApproverIDs = ids }
}

// WithProductionHeads sets the project's explicit production head ids.
func WithProductionHeads(ids ...string) func(*models.Project) {
	return func(p *models.Project) { p.ProductionHeadIDs = ids }
}

// WithManager sets the project manager.
func WithManager(id string) func(*models.Project) {
	return func(p *models.Project) { p.ManagerID = id }
}

// WithTeamMembers sets the project's team member ids.
func WithTeamMembers(ids ...string) func(*models.Project) {
	return func(p *models.Project) { p.TeamMembers = ids }
}

// ReloadProject reads the current state of a project.
func ReloadProject(t *testing.T, db *gorm.DB, id string) *models.Project {
	t.Helper()

	var project models.Project
	if err := db.Where("id = ?", id).First(&project).Error; err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	return &project
}

// CreateTestExpense creates an expense with the given department, amount and status.
func CreateTestExpense(t *testing.T, db *gorm.DB, projectID, department, amount string, status models.ExpenseStatus) *models.Expense {
	t.Helper()

	submitter := fmt.Sprintf("submitter-%d", nextID())
	expense := &models.Expense{
		ProjectID:         projectID,
		Department:        department,
		Category:          "General",
		Description:       "Test expense",
		Amount:            decimal.RequireFromString(amount),
		Status:            status,
		SubmittedByUserID: submitter,
		SubmittedByName:   "Test Submitter",
		Date:              time.Now().UTC(),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestDelegation persists an active temporary approver for the project
// and mirrors it onto the project the same way the delegation service does:
// the approver joins the team and the project records their phone.
func CreateTestDelegation(t *testing.T, db *gorm.DB, project *models.Project, approver *models.User, expiring *time.Time) *models.TemporaryApprover {
	t.Helper()

	record := &models.TemporaryApprover{
		ProjectID:     project.ID,
		ApproverID:    approver.ID,
		ApproverName:  approver.Name,
		ApproverPhone: approver.Phone,
		StartDate:     time.Now().UTC().Add(-48 * time.Hour),
		ExpiringDate:  expiring,
		IsActive:      true,
		Status:        models.DelegationStatusActive,
		CreatedBy:     "fixture",
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create test delegation: %v", err)
	}

	phone := approver.Phone
	members := models.AddID(project.TeamMembers, approver.ID)
	err := db.Model(&models.Project{}).Where("id = ?", project.ID).Updates(map[string]any{
		"team_members":             datatypes.JSONSlice[string](members),
		"temporary_approver_phone": phone,
	}).Error
	if err != nil {
		t.Fatalf("failed to attach delegation to project: %v", err)
	}
	project.TeamMembers = members
	project.TemporaryApproverPhone = &phone
	return record
}

// CreateTestDeviceToken registers a push token for userID.
func CreateTestDeviceToken(t *testing.T, db *gorm.DB, userID string) *models.DeviceToken {
	t.Helper()

	token := &models.DeviceToken{
		UserID:   userID,
		Token:    fmt.Sprintf("device-token-%d", nextID()),
		Platform: "android",
	}
	if err := db.Create(token).Error; err != nil {
		t.Fatalf("failed to create test device token: %v", err)
	}
	return token
}

// Past returns a pointer to a time d before now.
func Past(d time.Duration) *time.Time {
	ts := time.Now().UTC().Add(-d)
	return &ts
}

// Future returns a pointer to a time d after now.
func Future(d time.Duration) *time.Time {
	ts := time.Now().UTC().Add(d)
	return &ts
}
