package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"avrexpense/internal/logger"
	"avrexpense/internal/push"
	"avrexpense/internal/store"
	"avrexpense/internal/testutil"
)

func init() {
	logger.Init("test")
}

// testEnv wires every service over one isolated database the way cmd/api does.
type testEnv struct {
	db          *gorm.DB
	store       store.Store
	pushes      *push.Recorder
	audit       AuditServicer
	ledger      BudgetLedgerServicer
	resolver    *AuthorityResolver
	router      NotificationRouterServicer
	delegations DelegationServicer
	sweeper     ExpirySweeperServicer
	expenses    ExpenseServicer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, db := testutil.SetupTestStore(t)
	env := &testEnv{db: db, store: st, pushes: &push.Recorder{}}
	env.audit = NewAuditService(st)
	env.ledger = NewBudgetLedger(st)
	env.resolver = NewAuthorityResolver(st)
	env.router = NewNotificationRouter(st, env.resolver, env.pushes)
	env.delegations = NewDelegationService(st, env.router, env.audit)
	env.sweeper = NewExpirySweeper(st, env.delegations, nil)
	env.resolver.AttachSweeper(env.sweeper)
	env.expenses = NewExpenseService(st, env.ledger, env.resolver, env.router, env.audit)
	return env
}

// notificationsFor counts stored notifications of type for recipientID.
func (e *testEnv) notificationsFor(t *testing.T, recipientID string, notificationType string) int64 {
	t.Helper()

	var count int64
	err := e.db.Table("notifications").
		Where("recipient_id = ? AND type = ?", recipientID, notificationType).
		Count(&count).Error
	if err != nil {
		t.Fatalf("counting notifications: %v", err)
	}
	return count
}

// waitFor polls cond until it holds or timeout passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", timeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
