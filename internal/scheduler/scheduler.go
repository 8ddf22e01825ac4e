package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"postcraft/internal/logging"
	"postcraft/internal/reporting"
)

// Scheduler runs jobs on cron schedules in a fixed location.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler whose job context inherits the values of ctx,
// such as its logger. Jobs are cancelled by Stop.
func New(ctx context.Context, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		ctx:    jobCtx,
		cancel: cancel,
	}
}

// Add registers job under the standard five-field spec. Job errors are
// reported and do not unschedule the job.
func (s *Scheduler) Add(name, spec string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := reporting.WithHub(s.ctx)
		ctx = reporting.AddTagsToContext(ctx, map[string]string{"job": name})
		defer reporting.RecoverAndReport(ctx)

		logging.FromContext(ctx).InfoContext(ctx, "Running scheduled job", "job", name)
		if err := job(ctx); err != nil {
			reporting.Report(ctx, fmt.Errorf("scheduled job %s: %w", name, err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logging.FromContext(s.ctx).InfoContext(s.ctx, "Scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish, then cancels their context.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cancel()
	logging.FromContext(s.ctx).InfoContext(s.ctx, "Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
