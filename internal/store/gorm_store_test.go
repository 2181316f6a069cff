package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"avrexpense/internal/models"
	"avrexpense/internal/pagination"
	"avrexpense/internal/store"
	"avrexpense/internal/testutil"
)

func TestProjects(t *testing.T) {
	st, db := testutil.SetupTestStore(t)
	ctx := context.Background()

	project := &models.Project{
		Name:              "Feature Film",
		DepartmentBudgets: datatypes.NewJSONType(testutil.Budgets(map[string]int64{"Camera": 5000})),
		ApproverIDs:       datatypes.JSONSlice[string]{"a-1"},
		ProductionHeadIDs: datatypes.JSONSlice[string]{},
		TeamMembers:       datatypes.JSONSlice[string]{},
	}
	require.NoError(t, st.CreateProject(ctx, project))
	require.NotEmpty(t, project.ID)

	got, err := st.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Feature Film", got.Name)
	assert.True(t, got.Budgets()["Camera"].Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, []string{"a-1"}, []string(got.ApproverIDs))
	assert.Nil(t, got.TemporaryApproverPhone)

	locked, err := st.GetProjectForUpdate(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, locked.ID)

	phone := "+15550000001"
	require.NoError(t, st.UpdateProject(ctx, project.ID, map[string]any{
		"team_members":             datatypes.JSONSlice[string]{"t-1"},
		"temporary_approver_phone": phone,
	}))
	reloaded := testutil.ReloadProject(t, db, project.ID)
	assert.Equal(t, []string{"t-1"}, []string(reloaded.TeamMembers))
	require.NotNil(t, reloaded.TemporaryApproverPhone)
	assert.Equal(t, phone, *reloaded.TemporaryApproverPhone)

	require.NoError(t, st.UpdateProject(ctx, project.ID, map[string]any{"temporary_approver_phone": nil}))
	assert.Nil(t, testutil.ReloadProject(t, db, project.ID).TemporaryApproverPhone)

	testutil.AssertAppError(t, st.UpdateProject(ctx, "missing", map[string]any{"name": "x"}), "PROJECT_NOT_FOUND")
	require.NoError(t, st.UpdateProject(ctx, "missing", nil))

	_, err = st.GetProject(ctx, "missing")
	testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")
	_, err = st.GetProjectForUpdate(ctx, "missing")
	testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")

	testutil.CreateTestProject(t, db)
	projects, err := st.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestUpdateExpenseStatus_OnlyFromExpectedStatus(t *testing.T) {
	st, db := testutil.SetupTestStore(t)
	ctx := context.Background()
	project := testutil.CreateTestProject(t, db)
	expense := testutil.CreateTestExpense(t, db, project.ID, "Marketing", "12.34", models.ExpenseStatusPending)

	applied, err := st.UpdateExpenseStatus(ctx, expense.ID, models.ExpenseStatusPending, models.ExpenseStatusApproved, map[string]any{
		"reviewed_by": "r-1",
	})
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = st.UpdateExpenseStatus(ctx, expense.ID, models.ExpenseStatusPending, models.ExpenseStatusRejected, nil)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := st.GetExpense(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseStatusApproved, got.Status)
	assert.Equal(t, "r-1", got.ReviewedBy)
	assert.Equal(t, "12.34", got.Amount.StringFixed(2))

	_, err = st.GetExpense(ctx, "missing")
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
}

func TestExpenseQueries(t *testing.T) {
	st, db := testutil.SetupTestStore(t)
	ctx := context.Background()
	project := testutil.CreateTestProject(t, db)
	other := testutil.CreateTestProject(t, db)

	older := testutil.CreateTestExpense(t, db, project.ID, "Marketing", "1", models.ExpenseStatusPending)
	newer := testutil.CreateTestExpense(t, db, project.ID, "Marketing", "2", models.ExpenseStatusPending)
	require.NoError(t, db.Model(older).Update("date", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)).Error)
	require.NoError(t, db.Model(newer).Update("date", time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)).Error)
	testutil.CreateTestExpense(t, db, project.ID, "Marketing", "3", models.ExpenseStatusApproved)
	testutil.CreateTestExpense(t, db, other.ID, "Marketing", "4", models.ExpenseStatusPending)

	all, err := st.GetExpensesForProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := st.CountPendingExpenses(ctx, project.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pending)

	approved := models.ExpenseStatusApproved
	page, err := st.ListExpensesForProject(ctx, project.ID, &approved, pagination.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalItems)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "3", page.Data[0].Amount.String())

	pendingStatus := models.ExpenseStatusPending
	desc, err := st.ListExpensesForProject(ctx, project.ID, &pendingStatus, pagination.PageRequest{})
	require.NoError(t, err)
	require.Len(t, desc.Data, 2)
	assert.Equal(t, newer.ID, desc.Data[0].ID)

	asc, err := st.ListExpensesForProject(ctx, project.ID, &pendingStatus, pagination.PageRequest{Order: "asc"})
	require.NoError(t, err)
	require.Len(t, asc.Data, 2)
	assert.Equal(t, older.ID, asc.Data[0].ID)
}

func TestUsers(t *testing.T) {
	st, db := testutil.SetupTestStore(t)
	ctx := context.Background()

	user := &models.User{
		Name:                    "Avery",
		Phone:                   "+15551234567",
		Role:                    models.RoleUser,
		AssignedProjects:        datatypes.JSONSlice[string]{"p-1", "p-2"},
		NotificationPreferences: models.AllNotificationPreferences(),
		IsActive:                true,
	}
	require.NoError(t, st.CreateUser(ctx, user))
	testutil.CreateTestUser(t, db, models.RoleApprover)

	got, err := st.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1", "p-2"}, []string(got.AssignedProjects))
	assert.Equal(t, models.AllNotificationPreferences(), got.NotificationPreferences)

	users, err := st.GetUsersByRole(ctx, models.RoleUser)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user.ID, users[0].ID)

	everyone, err := st.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, everyone, 2)

	_, err = st.GetUserByID(ctx, "missing")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestTemporaryApprovers(t *testing.T) {
	st, db := testutil.SetupTestStore(t)
	ctx := context.Background()
	project := testutil.CreateTestProject(t, db)
	approver := testutil.CreateTestUser(t, db, models.RoleApprover)
	record := testutil.CreateTestDelegation(t, db, project, approver, testutil.Future(time.Hour))

	active, err := st.ListActiveTemporaryApprovers(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	applied, err := st.UpdateTemporaryApprover(ctx, record.ID, map[string]any{"expiring_date": nil})
	require.NoError(t, err)
	assert.True(t, applied)

	at := time.Now().UTC()
	applied, err = st.DeactivateTemporaryApprover(ctx, record.ID, models.SystemActor, at)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = st.DeactivateTemporaryApprover(ctx, record.ID, models.SystemActor, at)
	require.NoError(t, err)
	assert.False(t, applied, "the second deactivation must lose the compare-and-set")

	applied, err = st.UpdateTemporaryApprover(ctx, record.ID, map[string]any{"expiring_date": at})
	require.NoError(t, err)
	assert.False(t, applied, "expired delegations are terminal")

	got, err := st.GetTemporaryApprover(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, models.DelegationStatusExpired, got.Status)
	assert.Equal(t, models.SystemActor, got.ChangedBy)
	assert.Nil(t, got.ExpiringDate)

	active, err = st.ListActiveTemporaryApprovers(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	history, err := st.ListTemporaryApprovers(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = st.GetTemporaryApprover(ctx, "missing")
	testutil.AssertAppError(t, err, "DELEGATION_NOT_FOUND")
}

func TestNotificationsAndDevices(t *testing.T) {
	st, db := testutil.SetupTestStore(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, models.RoleUser)

	for i := 0; i < 3; i++ {
		id, err := st.CreateNotification(ctx, &models.Notification{
			RecipientID: user.ID,
			Title:       "t",
			Type:        models.NotificationProjectAssignment,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}
	page, err := st.ListNotificationsForUser(ctx, user.ID, pagination.PageRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalItems)
	assert.Len(t, page.Data, 1)

	other := testutil.CreateTestUser(t, db, models.RoleUser)
	require.NoError(t, st.RegisterDeviceToken(ctx, &models.DeviceToken{UserID: user.ID, Token: "tok-1", Platform: "ios"}))
	require.NoError(t, st.RegisterDeviceToken(ctx, &models.DeviceToken{UserID: other.ID, Token: "tok-1", Platform: "ios"}))

	tokens, err := st.GetDeviceTokens(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, tokens, "a re-registered token moves to its new owner")

	tokens, err = st.GetDeviceTokens(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1"}, tokens)

	require.NoError(t, st.CreateAuditLog(ctx, &models.AuditLog{ActorID: user.ID, Action: "X", ResourceType: "expense"}))
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	st, db := testutil.SetupTestStore(t)
	ctx := context.Background()
	project := testutil.CreateTestProject(t, db)

	boom := errors.New("boom")
	err := st.Transaction(ctx, func(tx store.Store) error {
		if err := tx.UpdateProject(ctx, project.ID, map[string]any{"name": "Renamed"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, project.Name, testutil.ReloadProject(t, db, project.ID).Name)

	err = st.Transaction(ctx, func(tx store.Store) error {
		return tx.UpdateProject(ctx, project.ID, map[string]any{"name": "Renamed"})
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", testutil.ReloadProject(t, db, project.ID).Name)
}

// newMockStore opens a postgres-dialect store over sqlmock.
func newMockStore(t *testing.T) (store.Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return store.NewGormStore(db), mock
}

func TestGormStore_DriverFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("driver_error_is_store_unavailable", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT \* FROM "projects"`).
			WillReturnError(errors.New("connection reset by peer"))

		_, err := st.GetProject(ctx, "p-1")
		testutil.AssertAppError(t, err, "STORE_UNAVAILABLE")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no_rows_is_not_found", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT \* FROM "projects"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

		_, err := st.GetProject(ctx, "p-1")
		testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("project_lock_query", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT \* FROM "projects" WHERE id = \$1 .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("p-1", "Locked"))

		project, err := st.GetProjectForUpdate(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, "Locked", project.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deactivate_lost_race", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE "temporary_approvers" SET .* WHERE id = \$\d+ AND is_active = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		applied, err := st.DeactivateTemporaryApprover(ctx, "d-1", models.SystemActor, time.Now())
		require.NoError(t, err)
		assert.False(t, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update_failure", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE "expenses"`).
			WillReturnError(errors.New("deadlock detected"))

		_, err := st.UpdateExpenseStatus(ctx, "e-1", models.ExpenseStatusPending, models.ExpenseStatusApproved, nil)
		testutil.AssertAppError(t, err, "STORE_UNAVAILABLE")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count_failure", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "expenses"`).
			WillReturnError(errors.New("timeout"))

		_, err := st.CountPendingExpenses(ctx, "p-1")
		testutil.AssertAppError(t, err, "STORE_UNAVAILABLE")
	})
}
