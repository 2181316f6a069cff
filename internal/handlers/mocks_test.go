package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/logger"
	"avrexpense/internal/models"
	"avrexpense/internal/pagination"
	"avrexpense/internal/services"
	"avrexpense/internal/validator"
)

const (
	projectID    = "0190a5b2-7c3d-7e4f-8a1b-000000000001"
	delegationID = "0190a5b2-7c3d-7e4f-8a1b-000000000002"
	expenseID    = "0190a5b2-7c3d-7e4f-8a1b-000000000003"
	actorID      = "0190a5b2-7c3d-7e4f-8a1b-000000000004"
	otherUserID  = "0190a5b2-7c3d-7e4f-8a1b-000000000005"
)

// --- mock services ---

type mockUsers struct {
	users map[string]*models.User
}

func (m *mockUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func usersWith(role models.UserRole) *mockUsers {
	return &mockUsers{users: map[string]*models.User{
		actorID: {Base: models.Base{ID: actorID}, Name: "Actor", Role: role, IsActive: true},
	}}
}

type mockAccess struct {
	allowed bool
}

func (m *mockAccess) IsUserAssignedToProject(_ context.Context, _ *models.User, _ string) bool {
	return m.allowed
}

type mockLedger struct {
	evaluateFn func(projectID, department string, amount decimal.Decimal) *services.BudgetValidationResult
	summaryFn  func(projectID string) (map[string]services.DepartmentSummary, error)
}

func (m *mockLedger) Evaluate(_ context.Context, projectID, department string, amount decimal.Decimal) *services.BudgetValidationResult {
	if m.evaluateFn != nil {
		return m.evaluateFn(projectID, department, amount)
	}
	return &services.BudgetValidationResult{Allowed: true}
}

func (m *mockLedger) Summary(_ context.Context, projectID string) (map[string]services.DepartmentSummary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(projectID)
	}
	return map[string]services.DepartmentSummary{}, nil
}

func (m *mockLedger) HasBudget(_ context.Context, _ string) bool { return true }

var _ services.BudgetLedgerServicer = (*mockLedger)(nil)

type mockResolver struct {
	mockAccess
	authorityForFn func(projectID string) (*services.Authority, error)
}

func (m *mockResolver) AuthorityFor(_ context.Context, projectID string) (*services.Authority, error) {
	if m.authorityForFn != nil {
		return m.authorityForFn(projectID)
	}
	return &services.Authority{Source: services.AuthoritySourceExplicit}, nil
}

var _ services.AuthorityResolverServicer = (*mockResolver)(nil)

type mockRouter struct {
	notifyAssignmentFn func(projectID, userID, roleLabel string) error
	listForUserFn      func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error)
	registerDeviceFn   func(userID, token, platform string) error
}

func (m *mockRouter) NotifySubmission(context.Context, string, string, string, decimal.Decimal, string) (int, error) {
	return 0, nil
}

func (m *mockRouter) NotifyDecision(context.Context, services.DecisionNotice) error { return nil }

func (m *mockRouter) NotifyAssignment(_ context.Context, projectID, userID, roleLabel string) error {
	if m.notifyAssignmentFn != nil {
		return m.notifyAssignmentFn(projectID, userID, roleLabel)
	}
	return nil
}

func (m *mockRouter) NotifyPendingApprovals(context.Context, string, int64) (int, error) {
	return 0, nil
}

func (m *mockRouter) NotifyDelegationExpired(context.Context, *models.TemporaryApprover) (int, error) {
	return 0, nil
}

func (m *mockRouter) NotifyByRoleFiltered(context.Context, models.UserRole, string, string, string, models.NotificationType) (int, error) {
	return 0, nil
}

func (m *mockRouter) ListForUser(_ context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Notification{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockRouter) RegisterDevice(_ context.Context, userID, token, platform string) error {
	if m.registerDeviceFn != nil {
		return m.registerDeviceFn(userID, token, platform)
	}
	return nil
}

var _ services.NotificationRouterServicer = (*mockRouter)(nil)

type mockDelegations struct {
	createFn func(projectID, createdBy string, in services.CreateDelegationInput) (*models.TemporaryApprover, error)
	updateFn func(projectID, delegationID, changedBy string, in services.UpdateDelegationInput) (*models.TemporaryApprover, error)
	removeFn func(projectID, delegationID, removedBy string) error
	listFn   func(projectID string) ([]models.TemporaryApprover, error)
}

func (m *mockDelegations) Create(_ context.Context, projectID, createdBy string, in services.CreateDelegationInput) (*models.TemporaryApprover, error) {
	if m.createFn != nil {
		return m.createFn(projectID, createdBy, in)
	}
	return &models.TemporaryApprover{}, nil
}

func (m *mockDelegations) Update(_ context.Context, projectID, delegationID, changedBy string, in services.UpdateDelegationInput) (*models.TemporaryApprover, error) {
	if m.updateFn != nil {
		return m.updateFn(projectID, delegationID, changedBy, in)
	}
	return &models.TemporaryApprover{}, nil
}

func (m *mockDelegations) Expire(context.Context, string, *models.TemporaryApprover) (bool, error) {
	return false, nil
}

func (m *mockDelegations) ExpireDue(context.Context, string) (int, error) { return 0, nil }

func (m *mockDelegations) Remove(_ context.Context, projectID, delegationID, removedBy string) error {
	if m.removeFn != nil {
		return m.removeFn(projectID, delegationID, removedBy)
	}
	return nil
}

func (m *mockDelegations) List(_ context.Context, projectID string) ([]models.TemporaryApprover, error) {
	if m.listFn != nil {
		return m.listFn(projectID)
	}
	return nil, nil
}

var _ services.DelegationServicer = (*mockDelegations)(nil)

type mockExpenses struct {
	submitFn func(submitter *models.User, in services.SubmitExpenseInput) (*models.Expense, error)
	decideFn func(reviewer *models.User, expenseID string, approved bool, comments string) (*models.Expense, error)
	listFn   func(projectID string, status *models.ExpenseStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	remindFn func(projectID string) (int, error)
}

func (m *mockExpenses) SubmitExpense(_ context.Context, submitter *models.User, in services.SubmitExpenseInput) (*models.Expense, error) {
	if m.submitFn != nil {
		return m.submitFn(submitter, in)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenses) DecideExpense(_ context.Context, reviewer *models.User, expenseID string, approved bool, comments string) (*models.Expense, error) {
	if m.decideFn != nil {
		return m.decideFn(reviewer, expenseID, approved, comments)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenses) ListProjectExpenses(_ context.Context, projectID string, status *models.ExpenseStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	if m.listFn != nil {
		return m.listFn(projectID, status, page)
	}
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenses) RemindPendingApprovals(_ context.Context, projectID string) (int, error) {
	if m.remindFn != nil {
		return m.remindFn(projectID)
	}
	return 0, nil
}

var _ services.ExpenseServicer = (*mockExpenses)(nil)

type mockSweeper struct {
	runFn    func(ctx context.Context) (*services.SweepResult, error)
	runNowFn func() error
	status   services.SweepStatus
}

func (m *mockSweeper) SweepProject(context.Context, string) (int, error) { return 0, nil }

func (m *mockSweeper) Run(ctx context.Context) (*services.SweepResult, error) {
	if m.runFn != nil {
		return m.runFn(ctx)
	}
	return &services.SweepResult{}, nil
}

func (m *mockSweeper) RunNow() error {
	if m.runNowFn != nil {
		return m.runNowFn()
	}
	return nil
}

func (m *mockSweeper) Start(time.Duration, time.Duration) error { return nil }

func (m *mockSweeper) IsScheduled() bool { return m.status.Scheduled }

func (m *mockSweeper) Status() services.SweepStatus { return m.status }

var _ services.ExpirySweeperServicer = (*mockSweeper)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
