package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/models"
	"avrexpense/internal/scheduler"
	"avrexpense/internal/store"
	"avrexpense/internal/testutil"
)

func TestSweep_ExpiresDueDelegation(t *testing.T) {
	env := newTestEnv(t)
	delegate := testutil.CreateTestUser(t, env.db, models.RoleApprover)
	project := testutil.CreateTestProject(t, env.db)

	record, err := env.delegations.Create(context.Background(), project.ID, "head", CreateDelegationInput{
		ApproverID:   delegate.ID,
		StartDate:    time.Now().Add(-time.Hour),
		ExpiringDate: testutil.Past(time.Second),
	})
	testutil.AssertNoError(t, err)

	result, err := env.sweeper.Run(context.Background())
	testutil.AssertNoError(t, err)
	if result.ProjectsChecked != 1 || result.TotalDeactivated != 1 || len(result.Errors) != 0 {
		t.Errorf("unexpected sweep result %+v", result)
	}

	stored, err := env.store.GetTemporaryApprover(context.Background(), record.ID)
	testutil.AssertNoError(t, err)
	if stored.IsActive || stored.Status != models.DelegationStatusExpired {
		t.Errorf("expected EXPIRED, got active=%v status=%s", stored.IsActive, stored.Status)
	}

	reloaded := testutil.ReloadProject(t, env.db, project.ID)
	if models.ContainsID(reloaded.TeamMembers, delegate.ID) {
		t.Error("expected delegate to leave the team")
	}
	if reloaded.TemporaryApproverPhone != nil {
		t.Errorf("expected delegation phone cleared, got %q", *reloaded.TemporaryApproverPhone)
	}

	status := env.sweeper.Status()
	if status.LastResult == nil || status.LastRunAt == nil {
		t.Fatal("expected status to record the finished sweep")
	}
	if status.LastResult.TotalDeactivated != 1 || status.LastError != "" {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestSweep_ConcurrentRunsApplyOnce(t *testing.T) {
	env := newTestEnv(t)
	head := testutil.CreateTestUser(t, env.db, models.RoleProductionHead)
	delegate := testutil.CreateTestUser(t, env.db, models.RoleApprover)
	project := testutil.CreateTestProject(t, env.db,
		testutil.WithProductionHeads(head.ID),
		testutil.WithTeamMembers("crew-1", "crew-2"),
	)
	testutil.CreateTestDelegation(t, env.db, project, delegate, testutil.Past(time.Minute))

	const runs = 2
	var wg sync.WaitGroup
	results := make([]*SweepResult, runs)
	errs := make([]error, runs)
	start := make(chan struct{})
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = env.sweeper.Run(context.Background())
		}(i)
	}
	close(start)
	wg.Wait()

	total := 0
	for i := 0; i < runs; i++ {
		testutil.AssertNoError(t, errs[i])
		if len(results[i].Errors) != 0 {
			t.Errorf("run %d reported errors %+v", i, results[i].Errors)
		}
		total += results[i].TotalDeactivated
	}
	if total != 1 {
		t.Errorf("expected exactly one run to perform the expiry, got %d", total)
	}

	reloaded := testutil.ReloadProject(t, env.db, project.ID)
	testutil.AssertIDs(t, reloaded.TeamMembers, "crew-1", "crew-2")

	if n := env.notificationsFor(t, delegate.ID, string(models.NotificationDelegationExpired)); n != 1 {
		t.Errorf("expected 1 delegate notification, got %d", n)
	}
	if n := env.notificationsFor(t, head.ID, string(models.NotificationDelegationExpired)); n != 1 {
		t.Errorf("expected 1 head notification, got %d", n)
	}

	var audits int64
	env.db.Table("audit_logs").Where("action = ?", AuditDelegationExpired).Count(&audits)
	if audits != 1 {
		t.Errorf("expected 1 audit entry, got %d", audits)
	}
}

func TestSweep_ConcurrentExpireCallsOnSameRecord(t *testing.T) {
	env := newTestEnv(t)
	delegate := testutil.CreateTestUser(t, env.db, models.RoleApprover)
	project := testutil.CreateTestProject(t, env.db)
	record := testutil.CreateTestDelegation(t, env.db, project, delegate, testutil.Past(time.Minute))

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	var errs []error
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshot := *record
			ok, err := env.delegations.Expire(context.Background(), project.ID, &snapshot)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				applied++
			}
		}()
	}
	wg.Wait()

	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if applied != 1 {
		t.Errorf("expected one caller to apply the expiry, got %d", applied)
	}
	if n := env.notificationsFor(t, delegate.ID, string(models.NotificationDelegationExpired)); n != 1 {
		t.Errorf("expected 1 notification, got %d", n)
	}
}

func TestSweep_OpenEndedNeverDue(t *testing.T) {
	env := newTestEnv(t)
	delegate := testutil.CreateTestUser(t, env.db, models.RoleApprover)
	project := testutil.CreateTestProject(t, env.db)
	record := testutil.CreateTestDelegation(t, env.db, project, delegate, nil)

	farFuture := time.Now().AddDate(50, 0, 0)
	if record.IsDue(farFuture) {
		t.Fatal("open-ended delegation must never be due")
	}

	result, err := env.sweeper.Run(context.Background())
	testutil.AssertNoError(t, err)
	if result.TotalDeactivated != 0 {
		t.Errorf("expected nothing deactivated, got %d", result.TotalDeactivated)
	}

	stored, err := env.store.GetTemporaryApprover(context.Background(), record.ID)
	testutil.AssertNoError(t, err)
	if !stored.IsActive {
		t.Error("expected open-ended delegation to stay active")
	}
}

func TestSweep_NotYetDueUntouched(t *testing.T) {
	env := newTestEnv(t)
	delegate := testutil.CreateTestUser(t, env.db, models.RoleApprover)
	project := testutil.CreateTestProject(t, env.db)
	testutil.CreateTestDelegation(t, env.db, project, delegate, testutil.Future(time.Hour))

	n, err := env.sweeper.SweepProject(context.Background(), project.ID)
	testutil.AssertNoError(t, err)
	if n != 0 {
		t.Errorf("expected nothing expired, got %d", n)
	}
}

// flakyDelegations fails ExpireDue for one project and delegates the rest.
type flakyDelegations struct {
	DelegationServicer
	failProject string
}

func (f *flakyDelegations) ExpireDue(ctx context.Context, projectID string) (int, error) {
	if projectID == f.failProject {
		return 0, apperrors.Wrap(apperrors.ErrStoreUnavailable, errors.New("deadline exceeded"))
	}
	return f.DelegationServicer.ExpireDue(ctx, projectID)
}

func TestSweep_ProjectErrorsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	delegateA := testutil.CreateTestUser(t, env.db, models.RoleApprover)
	delegateB := testutil.CreateTestUser(t, env.db, models.RoleApprover)
	broken := testutil.CreateTestProject(t, env.db)
	healthy := testutil.CreateTestProject(t, env.db)
	testutil.CreateTestDelegation(t, env.db, broken, delegateA, testutil.Past(time.Minute))
	record := testutil.CreateTestDelegation(t, env.db, healthy, delegateB, testutil.Past(time.Minute))

	sweeper := NewExpirySweeper(env.store, &flakyDelegations{DelegationServicer: env.delegations, failProject: broken.ID}, nil)
	result, err := sweeper.Run(context.Background())
	testutil.AssertNoError(t, err)

	if result.ProjectsChecked != 2 || result.TotalDeactivated != 1 {
		t.Errorf("expected 2 checked and 1 deactivated, got %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].ProjectID != broken.ID {
		t.Fatalf("expected one error for %s, got %+v", broken.ID, result.Errors)
	}

	stored, err := env.store.GetTemporaryApprover(context.Background(), record.ID)
	testutil.AssertNoError(t, err)
	if stored.IsActive {
		t.Error("expected the healthy project to still be swept")
	}
}

// unlistableStore cannot enumerate projects.
type unlistableStore struct {
	store.Store
}

func (unlistableStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, errors.New("connection refused"))
}

func TestSweep_EnumerationFailureIsFatal(t *testing.T) {
	sweeper := NewExpirySweeper(unlistableStore{}, nil, nil)

	result, err := sweeper.Run(context.Background())
	if err == nil {
		t.Fatal("expected enumeration failure to be returned")
	}
	if kind := apperrors.Kind(err); kind != apperrors.KindTransient {
		t.Errorf("expected transient error, got %v", kind)
	}
	if result.ProjectsChecked != 0 || result.TotalDeactivated != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if sweeper.Status().LastError == "" {
		t.Error("expected status to record the failure")
	}
}

func TestSweep_Scheduling(t *testing.T) {
	env := newTestEnv(t)
	delegate := testutil.CreateTestUser(t, env.db, models.RoleApprover)
	project := testutil.CreateTestProject(t, env.db)
	record := testutil.CreateTestDelegation(t, env.db, project, delegate, testutil.Past(time.Minute))

	sched := scheduler.New()
	defer sched.Stop()
	sweeper := NewExpirySweeper(env.store, env.delegations, sched)

	if sweeper.IsScheduled() {
		t.Fatal("expected no schedule before Start")
	}
	testutil.AssertNoError(t, sweeper.Start(6*time.Hour, time.Hour))
	if !sweeper.IsScheduled() {
		t.Fatal("expected schedule after Start")
	}

	// The periodic job runs once on start.
	waitFor(t, 2*time.Second, func() bool {
		stored, err := env.store.GetTemporaryApprover(context.Background(), record.ID)
		return err == nil && !stored.IsActive
	})

	testutil.AssertNoError(t, sweeper.RunNow())
	if !sweeper.IsScheduled() {
		t.Error("a one-off run must not replace the periodic schedule")
	}
}

func TestSweep_WithoutScheduler(t *testing.T) {
	env := newTestEnv(t)

	if env.sweeper.IsScheduled() {
		t.Error("expected no schedule without a scheduler")
	}
	if err := env.sweeper.RunNow(); err == nil {
		t.Error("expected RunNow to fail without a scheduler")
	}
	if err := env.sweeper.Start(time.Hour, 0); err == nil {
		t.Error("expected Start to fail without a scheduler")
	}
}
