// Package scheduler runs backups on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/unowned-ai/moalif/pkg/backup"
	"github.com/unowned-ai/moalif/pkg/books"
)

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"

	DailySchedule  = "0 3 * * *"
	WeeklySchedule = "0 3 * * 0"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ScheduleFor turns a backup frequency into a cron expression. Anything other
// than daily or weekly must already be a five-field cron expression.
func ScheduleFor(frequency string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(frequency)) {
	case FrequencyDaily, "":
		return DailySchedule, nil
	case FrequencyWeekly:
		return WeeklySchedule, nil
	}
	if err := ValidateSchedule(frequency); err != nil {
		return "", err
	}
	return frequency, nil
}

func ValidateSchedule(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return nil
}

// NextRunAfter returns the first activation of expr after t.
func NextRunAfter(expr string, t time.Time) (time.Time, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return sched.Next(t), nil
}

// Backupper is the part of backup.Service the scheduler drives.
type Backupper interface {
	CreateBackup(ctx context.Context) (string, error)
}

// Status is the outcome of one backup run.
type Status struct {
	At   time.Time
	Path string
	Err  error
}

// OK reports whether the run left a backup on disk. A run whose only problem
// was that sharing is unavailable still counts.
func (s Status) OK() bool {
	return s.Err == nil || errors.Is(s.Err, backup.ErrBackupUnavailable)
}

type AutoBackupScheduler struct {
	backups  Backupper
	schedule string
	logger   *slog.Logger
	now      func() time.Time

	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.RWMutex
	running bool
	runCtx  context.Context
	cancel  context.CancelFunc
	last    Status
}

// NewAutoBackupScheduler validates frequency and prepares a stopped scheduler.
func NewAutoBackupScheduler(backups Backupper, frequency string, logger *slog.Logger) (*AutoBackupScheduler, error) {
	schedule, err := ScheduleFor(frequency)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoBackupScheduler{
		backups:  backups,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
		cron:     cron.New(cron.WithParser(parser)),
	}, nil
}

func (s *AutoBackupScheduler) Schedule() string {
	return s.schedule
}

// Start registers the backup job and starts the cron loop. Cancelling ctx
// stops the scheduler.
func (s *AutoBackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.mu.RLock()
		runCtx := s.runCtx
		s.mu.RUnlock()
		if runCtx == nil || runCtx.Err() != nil {
			return
		}
		s.RunNow(runCtx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	s.entryID = entryID
	s.runCtx, s.cancel = context.WithCancel(ctx)

	s.cron.Start()
	s.running = true

	next, _ := NextRunAfter(s.schedule, s.now())
	s.logger.Info("auto backup scheduler started", "schedule", s.schedule, "next_run", next)

	runCtx := s.runCtx
	go func() {
		<-runCtx.Done()
		s.Stop()
	}()
	return nil
}

// Stop removes the job and waits for a running backup to finish.
func (s *AutoBackupScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cron.Remove(s.entryID)
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	cancel()
	s.logger.Info("auto backup scheduler stopped")
}

// RunNow performs one backup synchronously and records its outcome.
func (s *AutoBackupScheduler) RunNow(ctx context.Context) Status {
	started := s.now()
	path, err := s.backups.CreateBackup(ctx)
	status := Status{At: started, Path: path, Err: err}

	switch {
	case err == nil:
		s.logger.Info("auto backup completed", "path", path, "duration", s.now().Sub(started).Round(time.Millisecond))
	case errors.Is(err, backup.ErrBackupUnavailable):
		s.logger.Warn("auto backup saved locally, sharing unavailable", "error", err)
	case errors.Is(err, books.ErrStorageCorrupt):
		s.logger.Error("auto backup skipped, stored books are corrupt; previous backup kept", "error", err)
	default:
		s.logger.Error("auto backup failed", "error", err)
	}

	s.mu.Lock()
	s.last = status
	s.mu.Unlock()
	return status
}

func (s *AutoBackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NextRun returns when the job fires next. ok is false while stopped.
func (s *AutoBackupScheduler) NextRun() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return time.Time{}, false
	}
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return time.Time{}, false
	}
	return entry.Next, true
}

// Last returns the outcome of the most recent run.
func (s *AutoBackupScheduler) Last() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
