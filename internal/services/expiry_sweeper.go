package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"avrexpense/internal/logger"
	"avrexpense/internal/scheduler"
	"avrexpense/internal/store"
)

// Scheduler job names used by the sweeper.
const (
	ExpirySweepJob    = "expiry-sweep"
	ExpirySweepNowJob = "expiry-sweep-now"
)

var errNoScheduler = errors.New("expiry sweeper has no scheduler")

// expirySweeper finds overdue delegations across all projects and expires them.
// Runs may overlap; each expiry is guarded by a compare-and-set so overlapping
// runs apply its side effects once.
type expirySweeper struct {
	store       store.Store
	delegations DelegationServicer
	scheduler   *scheduler.Scheduler
	logger      *zap.SugaredLogger

	mu      sync.Mutex
	last    *SweepResult
	lastErr error
	lastAt  time.Time
}

// NewExpirySweeper creates a new ExpirySweeperServicer. sched may be nil for
// one-shot use, in which case only Run and SweepProject are usable.
func NewExpirySweeper(st store.Store, delegations DelegationServicer, sched *scheduler.Scheduler) ExpirySweeperServicer {
	return &expirySweeper{
		store:       st,
		delegations: delegations,
		scheduler:   sched,
		logger:      logger.Named("expiry-sweeper"),
	}
}

// Run sweeps every project. Per-project failures are collected in the result
// and do not stop the sweep; only failing to list projects returns an error.
func (s *expirySweeper) Run(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	result := &SweepResult{}

	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		result.Duration = time.Since(start)
		s.logger.Errorw("Expiry sweep could not enumerate projects", "error", err)
		s.record(result, err, start)
		return result, err
	}

	for _, project := range projects {
		if ctx.Err() != nil {
			break
		}
		result.ProjectsChecked++

		n, err := s.SweepProject(ctx, project.ID)
		result.TotalDeactivated += n
		if err != nil {
			result.Errors = append(result.Errors, ProjectError{ProjectID: project.ID, Error: err.Error()})
		}
	}

	result.Duration = time.Since(start)
	s.logger.Infow("Expiry sweep finished",
		"projects_checked", result.ProjectsChecked,
		"total_deactivated", result.TotalDeactivated,
		"errors", len(result.Errors),
		"duration", result.Duration,
	)
	s.record(result, ctx.Err(), start)
	return result, ctx.Err()
}

func (s *expirySweeper) record(result *SweepResult, err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last, s.lastErr, s.lastAt = result, err, at
}

// Status reports the schedule and the most recent finished sweep.
func (s *expirySweeper) Status() SweepStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SweepStatus{Scheduled: s.IsScheduled(), LastResult: s.last}
	if s.last != nil {
		at := s.lastAt
		status.LastRunAt = &at
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

// SweepProject expires the overdue delegations of one project.
func (s *expirySweeper) SweepProject(ctx context.Context, projectID string) (int, error) {
	return s.delegations.ExpireDue(ctx, projectID)
}

// RunNow queues a sweep in the background independent of the periodic one.
func (s *expirySweeper) RunNow() error {
	if s.scheduler == nil {
		return errNoScheduler
	}
	return s.scheduler.ScheduleOnce(ExpirySweepNowJob, s.runJob)
}

// Start registers the periodic sweep. The first run happens immediately.
func (s *expirySweeper) Start(interval, jitter time.Duration) error {
	if s.scheduler == nil {
		return errNoScheduler
	}
	return s.scheduler.ScheduleEvery(ExpirySweepJob, interval, jitter, s.runJob)
}

// IsScheduled reports whether the periodic sweep is registered.
func (s *expirySweeper) IsScheduled() bool {
	return s.scheduler != nil && s.scheduler.IsScheduled(ExpirySweepJob)
}

func (s *expirySweeper) runJob(ctx context.Context) {
	// Errors are logged by Run; the next tick retries.
	_, _ = s.Run(ctx)
}
