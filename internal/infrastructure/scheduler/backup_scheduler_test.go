package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopledger/backend/internal/application/backup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingRunner struct {
	calls    atomic.Int32
	failures int32 // first n calls fail
	block    chan struct{}
}

func (r *countingRunner) Run(ctx context.Context) (*backup.Result, error) {
	n := r.calls.Add(1)
	if r.block != nil {
		<-r.block
	}
	if n <= r.failures {
		return nil, errors.New("upload failed")
	}
	return &backup.Result{Key: "backups/shop.db", Size: 1}, nil
}

type settableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *settableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *settableClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestParseCronSchedule(t *testing.T) {
	tests := []struct {
		name       string
		expr       string
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{name: "2am", expr: "0 2 * * *", wantHour: 2},
		{name: "3:30am", expr: "30 3 * * *", wantHour: 3, wantMinute: 30},
		{name: "midnight", expr: "0 0 * * *"},
		{name: "extra whitespace", expr: "  15   4   *   *   *  ", wantHour: 4, wantMinute: 15},
		{name: "empty", expr: "", wantErr: true},
		{name: "minute out of range", expr: "60 2 * * *", wantErr: true},
		{name: "hour out of range", expr: "0 24 * * *", wantErr: true},
		{name: "wildcard hour", expr: "0 * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseCronSchedule(tt.expr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSchedule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, hour)
			assert.Equal(t, tt.wantMinute, minute)
		})
	}
}

func TestBackupScheduler_NextRunAfter(t *testing.T) {
	s := NewBackupScheduler(BackupSchedulerConfig{Hour: 2, Minute: 30}, &countingRunner{}, nil)

	ist := time.FixedZone("IST", 5*3600+1800)

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{"earlier the same day", time.Date(2024, 6, 20, 1, 0, 0, 0, time.UTC), time.Date(2024, 6, 20, 2, 30, 0, 0, time.UTC)},
		{"exactly on schedule rolls over", time.Date(2024, 6, 20, 2, 30, 0, 0, time.UTC), time.Date(2024, 6, 21, 2, 30, 0, 0, time.UTC)},
		{"local time before the utc slot", time.Date(2024, 6, 20, 7, 0, 0, 0, ist), time.Date(2024, 6, 20, 2, 30, 0, 0, time.UTC)},
		{"local time after the utc slot", time.Date(2024, 6, 20, 9, 0, 0, 0, ist), time.Date(2024, 6, 21, 2, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.nextRunAfter(tt.from))
		})
	}
}

func TestBackupScheduler_RunNow(t *testing.T) {
	ctx := context.Background()

	t.Run("retries until success", func(t *testing.T) {
		runner := &countingRunner{failures: 2}
		s := NewBackupScheduler(BackupSchedulerConfig{RetryAttempts: 2, RetryDelay: time.Millisecond}, runner, zaptest.NewLogger(t))

		require.NoError(t, s.RunNow(ctx))
		assert.Equal(t, int32(3), runner.calls.Load())
		assert.NotNil(t, s.LastRunAt())
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		runner := &countingRunner{failures: 10}
		s := NewBackupScheduler(BackupSchedulerConfig{RetryAttempts: 1, RetryDelay: time.Millisecond}, runner, zaptest.NewLogger(t))

		assert.Error(t, s.RunNow(ctx))
		assert.Equal(t, int32(2), runner.calls.Load())
	})

	t.Run("one backup at a time", func(t *testing.T) {
		runner := &countingRunner{block: make(chan struct{})}
		s := NewBackupScheduler(BackupSchedulerConfig{}, runner, zaptest.NewLogger(t))

		done := make(chan error, 1)
		go func() { done <- s.RunNow(ctx) }()
		require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, time.Millisecond)

		assert.ErrorIs(t, s.RunNow(ctx), ErrAlreadyRunning)
		close(runner.block)
		assert.NoError(t, <-done)
	})
}

func TestBackupScheduler_Loop(t *testing.T) {
	clock := &settableClock{now: time.Date(2024, 6, 20, 1, 59, 0, 0, time.UTC)}
	runner := &countingRunner{}
	s := NewBackupScheduler(BackupSchedulerConfig{Hour: 2}, runner, zaptest.NewLogger(t),
		WithClock(clock.Now),
		WithTickInterval(5*time.Millisecond),
	)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.Equal(t, time.Date(2024, 6, 20, 2, 0, 0, 0, time.UTC), s.NextRunAt())

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, runner.calls.Load())

	clock.Set(time.Date(2024, 6, 20, 2, 0, 30, 0, time.UTC))
	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return s.NextRunAt().Equal(time.Date(2024, 6, 21, 2, 0, 0, 0, time.UTC))
	}, time.Second, 5*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), runner.calls.Load())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
}
