// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/linebook/internal/logger"
)

// DefaultAuditPruneSchedule runs the audit prune daily at 03:00.
const DefaultAuditPruneSchedule = "0 3 * * *"

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a standard five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime returns the first activation of schedule after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// PruneFunc deletes expired audit events and reports how many it removed.
type PruneFunc func(ctx context.Context) (int64, error)

// AuditPruneScheduler periodically deletes audit events past retention.
type AuditPruneScheduler struct {
	schedule string
	prune    PruneFunc
	log      *logger.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
	runCtx     context.Context
}

// NewAuditPruneScheduler creates a scheduler. An empty schedule selects
// DefaultAuditPruneSchedule.
func NewAuditPruneScheduler(schedule string, prune PruneFunc, log *logger.Logger) *AuditPruneScheduler {
	if schedule == "" {
		schedule = DefaultAuditPruneSchedule
	}
	return &AuditPruneScheduler{
		schedule: schedule,
		prune:    prune,
		log:      logger.OrNop(log).With("component", "audit_prune"),
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the prune job. It is a no-op when already running.
func (s *AuditPruneScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	s.runCtx, s.cancelFunc = context.WithCancel(ctx)
	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.RunNow(s.runCtx)
	})
	if err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule prune job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.schedule, time.Now())
	s.log.Info("scheduler started", "schedule", s.schedule, "next_run", next)
	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *AuditPruneScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cancelFunc()
	// Stop accepting new jobs and wait for running jobs to complete
	done := s.cron.Stop()
	<-done.Done()
	s.cron.Remove(s.entryID)

	s.isRunning = false
	s.cancelFunc = nil
	s.log.Info("scheduler stopped")
}

// IsRunning returns whether the scheduler is active
func (s *AuditPruneScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the job fires next, or nil when stopped.
func (s *AuditPruneScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	return &t
}

// RunNow prunes synchronously and returns the number of removed events.
func (s *AuditPruneScheduler) RunNow(ctx context.Context) int64 {
	start := time.Now()
	removed, err := s.prune(ctx)
	if err != nil {
		s.log.Warn("audit prune failed", "error", err)
		return 0
	}
	s.log.Info("audit prune finished", "removed", removed, "duration", time.Since(start).Round(time.Millisecond))
	return removed
}
