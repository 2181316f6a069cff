package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"avrexpense/internal/logger"
	"avrexpense/internal/scheduler"
	"avrexpense/internal/store"
)

// PendingReminderJob is the scheduler name of the reminder job.
const PendingReminderJob = "pending-reminder"

// PendingReminder periodically reminds production heads of waiting expenses.
type PendingReminder struct {
	store    store.Store
	expenses ExpenseServicer
	logger   *zap.SugaredLogger
}

// NewPendingReminder creates a PendingReminder.
func NewPendingReminder(st store.Store, expenses ExpenseServicer) *PendingReminder {
	return &PendingReminder{
		store:    st,
		expenses: expenses,
		logger:   logger.Named("pending-reminder"),
	}
}

// Run sends reminders for every project with pending expenses. A failing
// project is recorded and skipped.
func (p *PendingReminder) Run(ctx context.Context) (*ReminderResult, error) {
	result := &ReminderResult{}

	projects, err := p.store.ListProjects(ctx)
	if err != nil {
		p.logger.Errorw("Pending reminder could not enumerate projects", "error", err)
		return result, err
	}

	for _, project := range projects {
		result.ProjectsChecked++
		n, err := p.expenses.RemindPendingApprovals(ctx, project.ID)
		if err != nil {
			result.Errors = append(result.Errors, ProjectError{ProjectID: project.ID, Error: err.Error()})
			continue
		}
		if n > 0 {
			result.ProjectsNotified++
		}
	}

	p.logger.Infow("Pending reminder finished",
		"projects_checked", result.ProjectsChecked,
		"projects_notified", result.ProjectsNotified,
		"errors", len(result.Errors),
	)
	return result, nil
}

// Start registers the reminder on sched.
func (p *PendingReminder) Start(sched *scheduler.Scheduler, interval time.Duration) error {
	return sched.ScheduleEvery(PendingReminderJob, interval, 0, func(ctx context.Context) {
		_, _ = p.Run(ctx)
	})
}
