package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
)

const DefaultRemoteTimeout = 10 * time.Second

type MenuVersion struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Version      int       `json:"version"`
	Checksum     string    `json:"checksum"`
	LastSynced   time.Time `json:"last_synced"`
}

type MenuSyncOutcome struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Changed      bool      `json:"changed"`
	Error        string    `json:"error,omitempty"`
}

// MenuService mirrors remote menus into versioned local snapshots with a
// Redis layer in front. Redis is best effort: its failures only cost a
// database read.
type MenuService struct {
	repo     MenuRepository
	cache    MenuCache
	remote   RemoteStore
	activity ActivityLogger
	logger   *slog.Logger

	Timeout time.Duration
	Now     func() time.Time
}

func NewMenuService(repo MenuRepository, cache MenuCache, remote RemoteStore, activity ActivityLogger, logger *slog.Logger) *MenuService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuService{
		repo:     repo,
		cache:    cache,
		remote:   remote,
		activity: activity,
		logger:   logger.With("module", "menu"),
		Timeout:  DefaultRemoteTimeout,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MenuService) Get(ctx context.Context, restaurantID uuid.UUID) (*domain.MenuSnapshot, error) {
	if s.cache != nil {
		snapshot, hit, err := s.cache.Get(ctx, restaurantID)
		if err != nil {
			s.logger.Warn("menu_cache_read_failed", "restaurant_id", restaurantID, "error", err)
		} else if hit {
			return snapshot, nil
		}
	}

	snapshot, err := s.repo.GetActiveSnapshot(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshot); err != nil {
			s.logger.Warn("menu_cache_write_failed", "restaurant_id", restaurantID, "error", err)
		}
	}
	return snapshot, nil
}

// Sync pulls the remote menu and stores it as a new version when its
// checksum differs from the active one.
func (s *MenuService) Sync(ctx context.Context, restaurantID uuid.UUID) (bool, error) {
	restaurant, err := s.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return false, err
	}
	ref := restaurant.RemoteRef
	if ref == "" {
		ref = restaurant.ID.String()
	}

	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	payload, err := s.remote.GetMenu(callCtx, ref)
	cancel()
	if err != nil {
		s.logger.Error("menu_sync_failed", "restaurant_id", restaurantID, "error", err)
		recordActivity(ctx, s.activity, s.logger, &restaurantID, domain.LevelError, "menu", "menu_sync_failed", map[string]any{"error": err.Error()})
		return false, fmt.Errorf("fetch remote menu: %w", err)
	}

	snapshot, changed, err := s.repo.PutIfChanged(ctx, restaurantID, payload, s.Now())
	if domain.IsIntegrity(err) {
		// A concurrent sync took the version number; retry against its result.
		snapshot, changed, err = s.repo.PutIfChanged(ctx, restaurantID, payload, s.Now())
	}
	if err != nil {
		return false, fmt.Errorf("store menu snapshot: %w", err)
	}

	if changed {
		if err := s.Invalidate(ctx, restaurantID); err != nil {
			s.logger.Warn("menu_cache_invalidate_failed", "restaurant_id", restaurantID, "error", err)
		}
	}
	s.logger.Info("menu_synced", "restaurant_id", restaurantID, "version", snapshot.Version, "changed", changed)
	recordActivity(ctx, s.activity, s.logger, &restaurantID, domain.LevelInfo, "menu", "menu_synced", map[string]any{
		"version":  snapshot.Version,
		"checksum": snapshot.Checksum,
		"changed":  changed,
	})
	return changed, nil
}

// Invalidate drops only the Redis copy.
func (s *MenuService) Invalidate(ctx context.Context, restaurantID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, restaurantID)
}

func (s *MenuService) GetMenuVersion(ctx context.Context, restaurantID uuid.UUID) (*MenuVersion, error) {
	snapshot, err := s.repo.GetActiveSnapshot(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return &MenuVersion{
		RestaurantID: restaurantID,
		Version:      snapshot.Version,
		Checksum:     snapshot.Checksum,
		LastSynced:   snapshot.LastSynced,
	}, nil
}

// SyncAllRestaurants syncs every active restaurant. One failure does not
// stop the others.
func (s *MenuService) SyncAllRestaurants(ctx context.Context) ([]MenuSyncOutcome, error) {
	restaurants, err := s.repo.ListActiveRestaurants(ctx)
	if err != nil {
		return nil, err
	}
	outcomes := make([]MenuSyncOutcome, 0, len(restaurants))
	for _, restaurant := range restaurants {
		if ctx.Err() != nil {
			return outcomes, ctx.Err()
		}
		changed, err := s.Sync(ctx, restaurant.ID)
		outcome := MenuSyncOutcome{RestaurantID: restaurant.ID, Changed: changed}
		if err != nil {
			outcome.Error = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

var _ MenuServiceInterface = (*MenuService)(nil)
