package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"dineswift-local/internal/domain"
	"dineswift-local/internal/scheduler"
	"dineswift-local/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSync struct {
	calls     []string
	reclaimed error
}

func (f *fakeSync) ProcessDueEntries(context.Context) (int, error) {
	f.calls = append(f.calls, "due")
	return 1, nil
}

func (f *fakeSync) ReclaimStuck(context.Context) (int64, error) {
	f.calls = append(f.calls, "reclaim")
	return 0, f.reclaimed
}

func (f *fakeSync) RetryEligibleFailures(context.Context) (int, error) {
	f.calls = append(f.calls, "retry")
	return 0, nil
}

func (f *fakeSync) ResolvePendingConflicts(context.Context) (int, error) {
	f.calls = append(f.calls, "conflicts")
	return 0, nil
}

type fakeHealth struct{ purged bool }

func (f *fakeHealth) CheckAll(context.Context) []domain.HealthCheck { return nil }

func (f *fakeHealth) PurgeActivity(context.Context) (int64, error) {
	f.purged = true
	return 3, nil
}

type fakeMenus struct{}

func (fakeMenus) SyncAllRestaurants(context.Context) ([]service.MenuSyncOutcome, error) {
	return nil, nil
}

func TestNodeJobs(t *testing.T) {
	tests := []struct {
		name     string
		drivers  scheduler.Drivers
		expected []string
	}{
		{
			name:     "all drivers",
			drivers:  scheduler.Drivers{Sync: &fakeSync{}, Menus: fakeMenus{}, Health: &fakeHealth{}},
			expected: []string{"sync", "sync_retry", "sync_conflicts", "menu_sync", "health", "activity_cleanup"},
		},
		{
			name:     "sync only",
			drivers:  scheduler.Drivers{Sync: &fakeSync{}},
			expected: []string{"sync", "sync_retry", "sync_conflicts"},
		},
		{name: "nothing configured"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			var names []string
			for _, job := range scheduler.NodeJobs(testCase.drivers, scheduler.DefaultIntervals()) {
				names = append(names, job.Name)
				assert.Positive(t, job.Interval)
			}
			assert.Equal(t, testCase.expected, names)
		})
	}
}

func TestDefaultIntervals(t *testing.T) {
	iv := scheduler.DefaultIntervals()
	assert.Equal(t, time.Minute, iv.Sync)
	assert.Equal(t, 2*time.Minute, iv.Retry)
	assert.Equal(t, 5*time.Minute, iv.Conflicts)
	assert.Equal(t, 10*time.Minute, iv.OTPCleanup)
	assert.Equal(t, 24*time.Hour, iv.Activity)
}

func TestScheduler_RunAll(t *testing.T) {
	sync := &fakeSync{reclaimed: errors.New("lock timeout")}
	health := &fakeHealth{}
	s := scheduler.New(quietLogger(), scheduler.NodeJobs(scheduler.Drivers{Sync: sync, Health: health}, scheduler.DefaultIntervals())...)

	err := s.RunAll(context.Background())

	assert.ErrorContains(t, err, "lock timeout")
	assert.Equal(t, []string{"reclaim", "due", "retry", "conflicts"}, sync.calls)
	assert.True(t, health.purged)
}

func TestScheduler_Start_TicksUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	s := scheduler.New(quietLogger())
	s.Add(scheduler.Job{Name: "tick", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
		if runs.Add(1) == 3 {
			cancel()
		}
		return errors.New("keeps going")
	}})
	s.Add(scheduler.Job{Name: "disabled"})

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("scheduler did not stop")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}
