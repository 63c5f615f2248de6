package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"dineswift-local/internal/checksum"
	"dineswift-local/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var errNoRemoteID = errors.New("order has no remote id yet")

type SyncConfig struct {
	Workers           int
	BatchSize         int
	ConflictBatch     int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	RemoteTimeout     time.Duration
	ProcessingTimeout time.Duration
	// TaxRate prices merged orders of restaurants without their own rate.
	TaxRate decimal.Decimal
}

func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		Workers:           4,
		BatchSize:         50,
		ConflictBatch:     20,
		BaseDelay:         60 * time.Second,
		MaxDelay:          time.Hour,
		RemoteTimeout:     DefaultRemoteTimeout,
		ProcessingTimeout: 10 * time.Minute,
		TaxRate:           DefaultTaxRate,
	}
}

type MenuSyncer interface {
	Sync(ctx context.Context, restaurantID uuid.UUID) (bool, error)
}

// SyncManager drains the sync queue against the remote store. Workers share
// nothing but the queue table; ownership of an entry is the processing
// status won by the claim.
type SyncManager struct {
	queue     SyncRepository
	orders    OrderSyncRepository
	remote    RemoteStore
	menus     MenuSyncer
	activity  ActivityLogger
	publisher EventPublisher
	logger    *slog.Logger

	Config SyncConfig
	Now    func() time.Time
}

func NewSyncManager(queue SyncRepository, orders OrderSyncRepository, remote RemoteStore, menus MenuSyncer, activity ActivityLogger, publisher EventPublisher, logger *slog.Logger) *SyncManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncManager{
		queue:     queue,
		orders:    orders,
		remote:    remote,
		menus:     menus,
		activity:  activity,
		publisher: publisher,
		logger:    logger.With("module", "sync"),
		Config:    DefaultSyncConfig(),
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue stores entry. A duplicate idempotency key means the work is already
// queued; the existing entry is returned.
func (m *SyncManager) Enqueue(ctx context.Context, entry *domain.SyncEntry) (*domain.SyncEntry, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.Now()
	}
	err := m.queue.Enqueue(ctx, entry)
	if domain.IsIntegrity(err) {
		return m.queue.GetEntryByIdempotencyKey(ctx, entry.IdempotencyKey)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Backoff is min(2^retries * base, max).
func (m *SyncManager) Backoff(retries int) time.Duration {
	if retries >= 30 {
		return m.Config.MaxDelay
	}
	delay := time.Duration(1<<uint(retries)) * m.Config.BaseDelay
	if delay <= 0 || delay > m.Config.MaxDelay {
		return m.Config.MaxDelay
	}
	return delay
}

func (m *SyncManager) ProcessDueEntries(ctx context.Context) (int, error) {
	entries, err := m.queue.ClaimDue(ctx, m.Now(), m.Config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim due entries: %w", err)
	}
	return m.processBatch(ctx, entries), nil
}

// RetryEligibleFailures reprocesses failed entries whose backoff elapsed.
// Exhausted entries are only counted and reported.
func (m *SyncManager) RetryEligibleFailures(ctx context.Context) (int, error) {
	entries, err := m.queue.ClaimRetryable(ctx, m.Now(), m.Config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim retryable entries: %w", err)
	}
	done := m.processBatch(ctx, entries)

	exhausted, err := m.queue.CountExhausted(ctx)
	if err != nil {
		m.logger.Warn("count_exhausted_failed", "error", err)
	} else if exhausted > 0 {
		m.logger.Warn("sync_entries_exhausted", "count", exhausted)
	}
	return done, nil
}

func (m *SyncManager) processBatch(ctx context.Context, entries []domain.SyncEntry) int {
	if len(entries) == 0 {
		return 0
	}
	workers := m.Config.Workers
	if workers < 1 {
		workers = 1
	}

	var succeeded atomic.Int64
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range entries {
		entry := &entries[i]
		g.Go(func() error {
			if m.ProcessEntry(ctx, entry) {
				succeeded.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	m.logger.Info("sync_batch_processed", "claimed", len(entries), "succeeded", succeeded.Load())
	return int(succeeded.Load())
}

// ProcessEntry runs one claimed entry against the remote store and settles
// its queue status. It reports whether the entry completed.
func (m *SyncManager) ProcessEntry(ctx context.Context, entry *domain.SyncEntry) bool {
	var (
		remoteID string
		err      error
	)
	switch entry.Kind {
	case domain.KindCreateOrder:
		remoteID, err = m.pushCreate(ctx, entry)
	case domain.KindUpdateOrder:
		err = m.pushUpdate(ctx, entry)
	case domain.KindMenuUpdate:
		err = m.pullMenu(ctx, entry)
	default:
		err = fmt.Errorf("unknown sync kind %q", entry.Kind)
	}
	return m.settle(ctx, entry, remoteID, err)
}

func (m *SyncManager) restaurantRef(ctx context.Context, restaurantID uuid.UUID) (string, error) {
	restaurant, err := m.orders.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return "", err
	}
	return remoteRef(restaurant), nil
}

func remoteRef(restaurant *domain.Restaurant) string {
	if restaurant.RemoteRef != "" {
		return restaurant.RemoteRef
	}
	return restaurant.ID.String()
}

func (m *SyncManager) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.Config.RemoteTimeout)
}

func (m *SyncManager) pushCreate(ctx context.Context, entry *domain.SyncEntry) (string, error) {
	payload, err := entry.CreateOrder()
	if err != nil {
		return "", err
	}
	order, err := m.orders.GetOrder(ctx, payload.OrderID)
	if err != nil {
		return "", err
	}
	ref, err := m.restaurantRef(ctx, order.RestaurantID)
	if err != nil {
		return "", err
	}

	callCtx, cancel := m.bounded(ctx)
	remoteID, err := m.remote.UpsertOrder(callCtx, domain.NewRemoteOrder(order, ref), entry.IdempotencyKey)
	cancel()
	if err != nil {
		return "", err
	}

	if err := m.orders.MarkOrderSynced(ctx, order.ID, remoteID, order.UpdatedAt); err != nil {
		return "", fmt.Errorf("mark order %s synced: %w", order.ID, err)
	}
	order.RemoteID = remoteID
	order.SyncStatus = domain.SyncSynced
	publishOrderEvent(ctx, m.publisher, m.logger, domain.EventOrderSynced, order, m.Now())
	return remoteID, nil
}

func (m *SyncManager) pushUpdate(ctx context.Context, entry *domain.SyncEntry) error {
	payload, err := entry.UpdateOrder()
	if err != nil {
		return err
	}
	order, err := m.orders.GetOrder(ctx, payload.OrderID)
	if err != nil {
		return err
	}
	if order.RemoteID == "" {
		return errNoRemoteID
	}
	ref, err := m.restaurantRef(ctx, order.RestaurantID)
	if err != nil {
		return err
	}
	local := domain.NewRemoteOrder(order, ref)

	callCtx, cancel := m.bounded(ctx)
	defer cancel()

	current, err := m.remote.GetOrder(callCtx, order.RemoteID)
	if err != nil {
		if domain.IsNotFound(err) {
			return &domain.TerminalRemoteError{Op: "get_order", Err: err}
		}
		return err
	}
	if order.LastSyncedAt != nil && current.UpdatedAt.After(*order.LastSyncedAt) {
		return &domain.ConflictError{OrderID: order.ID.String(), Local: &local, Remote: current}
	}

	err = m.remote.UpdateOrder(callCtx, order.RemoteID, domain.OrderDelta{
		Status:      order.Status,
		Items:       order.Items,
		SyncVersion: order.SyncVersion,
		UpdatedAt:   order.UpdatedAt,
	})
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		conflict.OrderID = order.ID.String()
		if conflict.Local == nil {
			conflict.Local = &local
		}
		return conflict
	}
	if err != nil {
		return err
	}

	if err := m.orders.MarkOrderSynced(ctx, order.ID, "", order.UpdatedAt); err != nil {
		return fmt.Errorf("mark order %s synced: %w", order.ID, err)
	}
	order.SyncStatus = domain.SyncSynced
	publishOrderEvent(ctx, m.publisher, m.logger, domain.EventOrderSynced, order, m.Now())
	return nil
}

func (m *SyncManager) pullMenu(ctx context.Context, entry *domain.SyncEntry) error {
	payload, err := entry.MenuUpdate()
	if err != nil {
		return err
	}
	if m.menus == nil {
		return errors.New("menu sync is not configured")
	}
	_, err = m.menus.Sync(ctx, payload.RestaurantID)
	return err
}

func (m *SyncManager) settle(ctx context.Context, entry *domain.SyncEntry, remoteID string, err error) bool {
	if err == nil {
		if err := m.queue.CompleteEntry(ctx, entry.ID, remoteID); err != nil {
			m.logger.Error("sync_complete_failed", "entry_id", entry.ID, "error", err)
			return false
		}
		m.logger.Info("sync_completed", "entry_id", entry.ID, "kind", entry.Kind)
		recordActivity(ctx, m.activity, m.logger, &entry.RestaurantID, domain.LevelInfo, "sync", "sync_completed", map[string]any{
			"entry_id":  entry.ID,
			"sync_type": entry.Kind,
			"remote_id": remoteID,
		})
		return true
	}

	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict) && conflict.Local != nil && conflict.Remote != nil:
		m.markConflict(ctx, entry, conflict)
	case domain.IsTerminal(err), domain.IsNotFound(err):
		m.cancel(ctx, entry, err)
	default:
		m.MarkRetry(ctx, entry, err)
	}
	return false
}

func (m *SyncManager) cancel(ctx context.Context, entry *domain.SyncEntry, cause error) {
	if err := m.queue.CancelEntry(ctx, entry.ID, cause.Error()); err != nil {
		m.logger.Error("sync_cancel_failed", "entry_id", entry.ID, "error", err)
		return
	}
	entry.Status = domain.EntryCancelled
	m.logger.Warn("sync_cancelled", "entry_id", entry.ID, "kind", entry.Kind, "error", cause)
	recordActivity(ctx, m.activity, m.logger, &entry.RestaurantID, domain.LevelWarning, "sync", "sync_cancelled", map[string]any{
		"entry_id":  entry.ID,
		"sync_type": entry.Kind,
		"error":     cause.Error(),
	})
}

func (m *SyncManager) markConflict(ctx context.Context, entry *domain.SyncEntry, conflict *domain.ConflictError) {
	data := &domain.ConflictData{Local: *conflict.Local, Remote: *conflict.Remote, DetectedAt: m.Now()}
	if err := m.queue.MarkConflict(ctx, entry.ID, data, conflict.Error()); err != nil {
		m.logger.Error("sync_mark_conflict_failed", "entry_id", entry.ID, "error", err)
		return
	}
	entry.Status = domain.EntryConflict
	entry.Conflict = data

	if orderID, ok := entry.OrderID(); ok {
		if err := m.orders.MarkOrderConflict(ctx, orderID); err != nil {
			m.logger.Warn("order_mark_conflict_failed", "order_id", orderID, "error", err)
		}
		if order, err := m.orders.GetOrder(ctx, orderID); err == nil {
			publishOrderEvent(ctx, m.publisher, m.logger, domain.EventOrderConflict, order, m.Now())
		}
	}
	m.logger.Warn("sync_conflict", "entry_id", entry.ID, "order_id", conflict.OrderID)
	recordActivity(ctx, m.activity, m.logger, &entry.RestaurantID, domain.LevelWarning, "sync", "sync_conflict", map[string]any{
		"entry_id": entry.ID,
		"order_id": conflict.OrderID,
	})
}

// MarkRetry records a failed attempt. Once the retry budget is spent the
// entry stays failed and next_retry is no longer advanced.
func (m *SyncManager) MarkRetry(ctx context.Context, entry *domain.SyncEntry, cause error) {
	now := m.Now()
	entry.RetryCount++
	entry.LastRetry = &now
	entry.ErrorMessage = cause.Error()
	entry.Status = domain.EntryFailed
	if entry.RetryCount < entry.MaxRetries {
		next := now.Add(m.Backoff(entry.RetryCount))
		entry.NextRetry = &next
	}

	if err := m.queue.SaveRetry(ctx, entry); err != nil {
		m.logger.Error("sync_save_retry_failed", "entry_id", entry.ID, "error", err)
		return
	}
	if orderID, ok := entry.OrderID(); ok {
		if err := m.orders.RecordSyncFailure(ctx, orderID, entry.ErrorMessage, now); err != nil {
			m.logger.Warn("order_sync_failure_not_recorded", "order_id", orderID, "error", err)
		}
	}

	level := domain.LevelWarning
	if !entry.CanRetry() {
		level = domain.LevelError
	}
	m.logger.Warn("sync_failed", "entry_id", entry.ID, "kind", entry.Kind, "retry_count", entry.RetryCount, "error", cause)
	recordActivity(ctx, m.activity, m.logger, &entry.RestaurantID, level, "sync", "sync_failed", map[string]any{
		"entry_id":    entry.ID,
		"sync_type":   entry.Kind,
		"retry_count": entry.RetryCount,
		"error":       entry.ErrorMessage,
	})
}

func (m *SyncManager) ResolvePendingConflicts(ctx context.Context) (int, error) {
	entries, err := m.queue.ClaimConflicts(ctx, m.Now(), m.Config.ConflictBatch)
	if err != nil {
		return 0, fmt.Errorf("claim conflicts: %w", err)
	}
	resolved := 0
	for i := range entries {
		if err := m.ResolveConflict(ctx, &entries[i]); err != nil {
			m.logger.Warn("conflict_resolution_failed", "entry_id", entries[i].ID, "error", err)
			continue
		}
		resolved++
	}
	return resolved, nil
}

// ResolveConflict merges a claimed conflict entry. On failure the entry goes
// back to conflict for the next pass.
func (m *SyncManager) ResolveConflict(ctx context.Context, entry *domain.SyncEntry) error {
	if entry.Conflict == nil {
		// Nothing to merge; let the normal push path detect it again.
		m.MarkRetry(ctx, entry, errors.New("conflict entry without conflict data"))
		return nil
	}
	err := m.resolve(ctx, entry)
	if err == nil {
		return nil
	}
	if restoreErr := m.queue.MarkConflict(ctx, entry.ID, entry.Conflict, err.Error()); restoreErr != nil {
		m.logger.Error("sync_mark_conflict_failed", "entry_id", entry.ID, "error", restoreErr)
	}
	return err
}

func (m *SyncManager) resolve(ctx context.Context, entry *domain.SyncEntry) error {
	orderID, ok := entry.OrderID()
	if !ok {
		return fmt.Errorf("entry %s does not reference an order", entry.ID)
	}
	order, err := m.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	restaurant, err := m.orders.GetRestaurant(ctx, order.RestaurantID)
	if err != nil {
		return err
	}
	rate := m.Config.TaxRate
	if restaurant.TaxRate != nil {
		rate = *restaurant.TaxRate
	}

	remote := entry.Conflict.Remote
	res := MergeOrders(domain.NewRemoteOrder(order, remoteRef(restaurant)), remote)
	merged := res.Merged
	totals := RecomputeTotals(merged.Items, rate)

	sameItems, err := checksum.Equal(merged.Items, remote.Items)
	if err != nil {
		return err
	}
	needsPush := res.LocalWins || !sameItems || merged.Status != remote.Status

	now := m.Now()
	baseline := remote.UpdatedAt
	resolved := *order
	resolved.Items = merged.Items
	resolved.Subtotal = totals.Subtotal
	resolved.TaxAmount = totals.Tax
	resolved.TotalAmount = totals.Total
	resolved.Status = merged.Status
	resolved.SpecialInstructions = merged.SpecialInstructions
	resolved.SyncVersion = merged.SyncVersion
	resolved.UpdatedAt = merged.UpdatedAt
	resolved.LastSyncedAt = &baseline
	if resolved.RemoteID == "" {
		resolved.RemoteID = remote.ID
	}
	resolved.SyncStatus = domain.SyncSynced
	if needsPush {
		resolved.SyncStatus = domain.SyncPending
	}

	if err := m.orders.ApplyResolvedOrder(ctx, &resolved, !res.LocalWins); err != nil {
		return fmt.Errorf("apply resolved order %s: %w", order.ID, err)
	}

	if needsPush {
		push, err := domain.NewUpdateOrderEntry(&resolved, order.Status, "conflict force push", now)
		if err != nil {
			return err
		}
		push.IdempotencyKey = "force-push:" + entry.ID.String()
		push.Priority = 1
		push.CreatedAt = now
		if _, err := m.Enqueue(ctx, push); err != nil {
			return fmt.Errorf("enqueue force push: %w", err)
		}
	}

	if err := m.queue.CompleteEntry(ctx, entry.ID, resolved.RemoteID); err != nil {
		return err
	}

	winner := domain.ActorRemote
	if res.LocalWins {
		winner = domain.ActorLocal
	}
	m.logger.Info("conflict_resolved", "entry_id", entry.ID, "order_id", order.ID, "winner", winner, "force_push", needsPush)
	recordActivity(ctx, m.activity, m.logger, &entry.RestaurantID, domain.LevelInfo, "sync", "conflict_resolved", map[string]any{
		"entry_id":     entry.ID,
		"order_id":     order.ID,
		"winner":       winner,
		"status_kept":  res.StatusKept,
		"sync_version": resolved.SyncVersion,
	})
	return nil
}

// ReclaimStuck releases entries held in processing past the timeout.
func (m *SyncManager) ReclaimStuck(ctx context.Context) (int64, error) {
	n, err := m.queue.ReclaimStuck(ctx, m.Now().Add(-m.Config.ProcessingTimeout))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.logger.Warn("sync_entries_reclaimed", "count", n)
	}
	return n, nil
}

func (m *SyncManager) Stats(ctx context.Context) (map[domain.EntryStatus]int, error) {
	return m.queue.QueueStats(ctx)
}

const DefaultQueueListLimit = 50

// ListQueue returns queued entries in processing order. An empty status lists
// pending entries.
func (m *SyncManager) ListQueue(ctx context.Context, status domain.EntryStatus, limit int) ([]domain.SyncEntry, error) {
	if status == "" {
		status = domain.EntryPending
	}
	if limit <= 0 {
		limit = DefaultQueueListLimit
	}
	return m.queue.ListEntries(ctx, status, limit)
}

type RetryReport struct {
	Requeued  int64 `json:"requeued"`
	Succeeded int   `json:"succeeded"`
}

// RetryFailed is the manual recovery path: exhausted entries get a fresh
// retry budget and everything due is processed immediately.
func (m *SyncManager) RetryFailed(ctx context.Context) (*RetryReport, error) {
	requeued, err := m.queue.RequeueExhausted(ctx, m.Now())
	if err != nil {
		return nil, fmt.Errorf("requeue exhausted entries: %w", err)
	}
	if requeued > 0 {
		m.logger.Info("sync_entries_requeued", "count", requeued)
	}
	succeeded, err := m.ProcessDueEntries(ctx)
	if err != nil {
		return nil, err
	}
	return &RetryReport{Requeued: requeued, Succeeded: succeeded}, nil
}

// ForceSync drains due entries without waiting for the scheduler. Given a
// restaurant it first queues a menu refresh for it.
func (m *SyncManager) ForceSync(ctx context.Context, restaurantID uuid.UUID) (int, error) {
	if restaurantID != uuid.Nil {
		if _, err := m.orders.GetRestaurant(ctx, restaurantID); err != nil {
			return 0, err
		}
		entry, err := domain.NewMenuUpdateEntry(restaurantID)
		if err != nil {
			return 0, err
		}
		if _, err := m.Enqueue(ctx, entry); err != nil {
			return 0, fmt.Errorf("queue menu refresh: %w", err)
		}
		m.logger.Info("menu_refresh_queued", "restaurant_id", restaurantID, "entry_id", entry.ID)
	}
	return m.ProcessDueEntries(ctx)
}

var (
	_ SyncServiceInterface = (*SyncManager)(nil)
	_ MenuSyncer           = (*MenuService)(nil)
)
