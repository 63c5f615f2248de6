package scheduler

import (
	"context"
	"errors"
	"time"

	"dineswift-local/internal/domain"
	"dineswift-local/internal/service"
)

type Intervals struct {
	Sync       time.Duration
	Retry      time.Duration
	Conflicts  time.Duration
	Menu       time.Duration
	OTPCleanup time.Duration
	Payments   time.Duration
	Health     time.Duration
	Activity   time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		Sync:       60 * time.Second,
		Retry:      120 * time.Second,
		Conflicts:  300 * time.Second,
		Menu:       300 * time.Second,
		OTPCleanup: 600 * time.Second,
		Payments:   120 * time.Second,
		Health:     60 * time.Second,
		Activity:   24 * time.Hour,
	}
}

type SyncDriver interface {
	ProcessDueEntries(ctx context.Context) (int, error)
	ReclaimStuck(ctx context.Context) (int64, error)
	RetryEligibleFailures(ctx context.Context) (int, error)
	ResolvePendingConflicts(ctx context.Context) (int, error)
}

type MenuDriver interface {
	SyncAllRestaurants(ctx context.Context) ([]service.MenuSyncOutcome, error)
}

type OTPDriver interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

type PaymentDriver interface {
	MonitorPending(ctx context.Context) (int, error)
}

type HealthDriver interface {
	CheckAll(ctx context.Context) []domain.HealthCheck
	PurgeActivity(ctx context.Context) (int64, error)
}

// Drivers holds the services behind the periodic jobs. Nil drivers are left
// out of the schedule.
type Drivers struct {
	Sync     SyncDriver
	Menus    MenuDriver
	OTPs     OTPDriver
	Payments PaymentDriver
	Health   HealthDriver
}

// NodeJobs builds the node's job list. The sync job reclaims stuck entries
// before claiming new ones.
func NodeJobs(d Drivers, iv Intervals) []Job {
	var jobs []Job
	if d.Sync != nil {
		jobs = append(jobs,
			Job{Name: "sync", Interval: iv.Sync, Run: func(ctx context.Context) error {
				_, reclaimErr := d.Sync.ReclaimStuck(ctx)
				_, err := d.Sync.ProcessDueEntries(ctx)
				return errors.Join(reclaimErr, err)
			}},
			Job{Name: "sync_retry", Interval: iv.Retry, Run: func(ctx context.Context) error {
				_, err := d.Sync.RetryEligibleFailures(ctx)
				return err
			}},
			Job{Name: "sync_conflicts", Interval: iv.Conflicts, Run: func(ctx context.Context) error {
				_, err := d.Sync.ResolvePendingConflicts(ctx)
				return err
			}},
		)
	}
	if d.Menus != nil {
		jobs = append(jobs, Job{Name: "menu_sync", Interval: iv.Menu, Run: func(ctx context.Context) error {
			_, err := d.Menus.SyncAllRestaurants(ctx)
			return err
		}})
	}
	if d.OTPs != nil {
		jobs = append(jobs, Job{Name: "otp_cleanup", Interval: iv.OTPCleanup, Run: func(ctx context.Context) error {
			_, err := d.OTPs.CleanupExpired(ctx)
			return err
		}})
	}
	if d.Payments != nil {
		jobs = append(jobs, Job{Name: "payment_monitor", Interval: iv.Payments, Run: func(ctx context.Context) error {
			_, err := d.Payments.MonitorPending(ctx)
			return err
		}})
	}
	if d.Health != nil {
		jobs = append(jobs,
			Job{Name: "health", Interval: iv.Health, Run: func(ctx context.Context) error {
				d.Health.CheckAll(ctx)
				return nil
			}},
			Job{Name: "activity_cleanup", Interval: iv.Activity, Run: func(ctx context.Context) error {
				_, err := d.Health.PurgeActivity(ctx)
				return err
			}},
		)
	}
	return jobs
}

var (
	_ SyncDriver    = (*service.SyncManager)(nil)
	_ MenuDriver    = (*service.MenuService)(nil)
	_ OTPDriver     = (*service.OTPService)(nil)
	_ PaymentDriver = (*service.PaymentService)(nil)
	_ HealthDriver  = (*service.HealthService)(nil)
)
