package service

import (
	"context"
	"log/slog"
	"time"

	"dineswift-local/internal/domain"
)

const (
	DefaultActivityRetention = 30 * 24 * time.Hour
	healthProbeTimeout       = 5 * time.Second
)

// HealthService probes the node's dependencies and keeps the last result of
// each in the health_checks table.
type HealthService struct {
	repo   MaintenanceRepository
	probes map[domain.Component]Pinger
	logger *slog.Logger

	Retention time.Duration
	Now       func() time.Time
}

func NewHealthService(repo MaintenanceRepository, probes map[domain.Component]Pinger, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		repo:      repo,
		probes:    probes,
		logger:    logger.With("module", "health"),
		Retention: DefaultActivityRetention,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *HealthService) probe(ctx context.Context, component domain.Component, pinger Pinger) domain.HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	start := time.Now()
	err := pinger.Ping(ctx)
	elapsed := time.Since(start).Milliseconds()

	check := domain.HealthCheck{
		Component:      component,
		IsHealthy:      err == nil,
		ResponseTimeMs: &elapsed,
		LastCheck:      s.Now(),
	}
	if err != nil {
		check.ErrorMessage = err.Error()
	}
	return check
}

// CheckAll probes every component and persists each result. A component that
// cannot be persisted is still returned.
func (s *HealthService) CheckAll(ctx context.Context) []domain.HealthCheck {
	checks := make([]domain.HealthCheck, 0, len(s.probes))
	for _, component := range []domain.Component{domain.ComponentDatabase, domain.ComponentRedis, domain.ComponentRemote} {
		pinger, ok := s.probes[component]
		if !ok || pinger == nil {
			continue
		}
		check := s.probe(ctx, component, pinger)
		if !check.IsHealthy {
			s.logger.Warn("component_unhealthy", "component", component, "error", check.ErrorMessage)
		}
		if err := s.repo.SaveHealthCheck(ctx, &check); err != nil {
			s.logger.Warn("health_check_not_saved", "component", component, "error", err)
		}
		checks = append(checks, check)
	}
	return checks
}

func (s *HealthService) LastChecks(ctx context.Context) ([]domain.HealthCheck, error) {
	return s.repo.ListHealthChecks(ctx)
}

// PurgeActivity deletes activity rows older than Retention.
func (s *HealthService) PurgeActivity(ctx context.Context) (int64, error) {
	n, err := s.repo.PurgeActivity(ctx, s.Now().Add(-s.Retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("activity_purged", "deleted", n)
	}
	return n, nil
}
