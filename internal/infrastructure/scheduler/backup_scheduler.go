// Package scheduler runs the daily database backup.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopledger/backend/internal/application/backup"
	"go.uber.org/zap"
)

// tickInterval is how often the loop checks whether the backup is due
const tickInterval = time.Minute

// BackupRunner takes one backup
type BackupRunner interface {
	Run(ctx context.Context) (*backup.Result, error)
}

// BackupSchedulerConfig holds configuration for the daily backup
type BackupSchedulerConfig struct {
	Hour          int // 0-23, UTC
	Minute        int // 0-59
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultBackupSchedulerConfig runs at 02:00 UTC with two retries
func DefaultBackupSchedulerConfig() BackupSchedulerConfig {
	return BackupSchedulerConfig{
		Hour:          2,
		Minute:        0,
		JobTimeout:    10 * time.Minute,
		RetryAttempts: 2,
		RetryDelay:    time.Minute,
	}
}

// ParseCronSchedule reads the minute and hour of a "minute hour * * *"
// expression. Day, month and weekday fields are ignored.
func ParseCronSchedule(expr string) (hour, minute int, err error) {
	parts := strings.Fields(expr)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: %q needs minute and hour fields", ErrInvalidSchedule, expr)
	}

	minute, err = strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute must be 0-59, got %q", ErrInvalidSchedule, parts[0])
	}
	hour, err = strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour must be 0-23, got %q", ErrInvalidSchedule, parts[1])
	}
	return hour, minute, nil
}

// BackupScheduler triggers a backup once a day
type BackupScheduler struct {
	config BackupSchedulerConfig
	runner BackupRunner
	logger *zap.Logger
	now    func() time.Time
	tick   time.Duration

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  bool

	lastRunAt *time.Time
	nextRunAt time.Time
}

// BackupSchedulerOption is a functional option for BackupScheduler
type BackupSchedulerOption func(*BackupScheduler)

// WithClock sets the clock used to decide when the backup is due
func WithClock(now func() time.Time) BackupSchedulerOption {
	return func(s *BackupScheduler) {
		s.now = now
	}
}

// WithTickInterval overrides how often the schedule is checked
func WithTickInterval(d time.Duration) BackupSchedulerOption {
	return func(s *BackupScheduler) {
		if d > 0 {
			s.tick = d
		}
	}
}

// NewBackupScheduler creates a new BackupScheduler
func NewBackupScheduler(cfg BackupSchedulerConfig, runner BackupRunner, logger *zap.Logger, opts ...BackupSchedulerOption) *BackupScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &BackupScheduler{
		config: cfg,
		runner: runner,
		logger: logger,
		now:    time.Now,
		tick:   tickInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the schedule loop. Calling Start twice is a no-op.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.nextRunAt = s.nextRunAfter(s.now())

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Backup scheduler started",
		zap.Int("hour", s.config.Hour),
		zap.Int("minute", s.config.Minute),
		zap.Time("next_run_at", s.nextRunAt),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight backup up to ctx's deadline
func (s *BackupScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Backup scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Backup scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *BackupScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRunAt returns when the last scheduled backup finished, if any
func (s *BackupScheduler) LastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}

// NextRunAt returns when the next backup is due
func (s *BackupScheduler) NextRunAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}

func (s *BackupScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.due() {
				_ = s.RunNow(ctx)
			}
		}
	}
}

func (s *BackupScheduler) due() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.now().Before(s.nextRunAt)
}

// nextRunAfter returns the first scheduled time strictly after t, in UTC
func (s *BackupScheduler) nextRunAfter(t time.Time) time.Time {
	t = t.UTC()
	next := time.Date(t.Year(), t.Month(), t.Day(), s.config.Hour, s.config.Minute, 0, 0, time.UTC)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunNow takes a backup immediately, retrying failures, and reschedules the
// next run. Only one backup runs at a time.
func (s *BackupScheduler) RunNow(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.inFlight = true
	s.mu.Unlock()

	err := s.runWithRetry(ctx)

	s.mu.Lock()
	s.inFlight = false
	finished := s.now()
	s.lastRunAt = &finished
	s.nextRunAt = s.nextRunAfter(finished)
	s.mu.Unlock()
	return err
}

func (s *BackupScheduler) runWithRetry(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt <= s.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.RetryDelay):
			}
		}

		result, err := s.runOnce(ctx)
		if err == nil {
			s.logger.Info("Scheduled backup completed",
				zap.String("key", result.Key),
				zap.Int64("size", result.Size),
				zap.Int("attempt", attempt+1),
			)
			return nil
		}
		lastErr = err
		s.logger.Warn("Scheduled backup failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", s.config.RetryAttempts+1),
			zap.Error(err),
		)
	}
	s.logger.Error("Scheduled backup gave up", zap.Error(lastErr))
	return lastErr
}

func (s *BackupScheduler) runOnce(ctx context.Context) (*backup.Result, error) {
	if s.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
	}
	return s.runner.Run(ctx)
}
