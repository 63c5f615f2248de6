package service

import (
	"time"

	"dineswift-local/internal/domain"
)

// Resolution is the outcome of merging the local and remote copies of an
// order.
type Resolution struct {
	Merged    domain.RemoteOrder
	LocalWins bool
	// StatusKept is set when the remote status is not reachable from the
	// local one and the local status was carried into the merge.
	StatusKept bool
}

// MergeOrders applies last-write-wins on updated_at, with ties going to the
// local copy. Items are merged per item id with the same rule. The merged
// sync version is one past the larger input.
func MergeOrders(local, remote domain.RemoteOrder) Resolution {
	localWins := !remote.UpdatedAt.After(local.UpdatedAt)

	merged := remote
	if localWins {
		merged = local
	}
	if merged.ID == "" {
		merged.ID = remote.ID
	}
	merged.Items = MergeItems(local.Items, remote.Items)
	merged.SyncVersion = max(local.SyncVersion, remote.SyncVersion) + 1
	merged.UpdatedAt = latest(local.UpdatedAt, remote.UpdatedAt)

	res := Resolution{Merged: merged, LocalWins: localWins}
	if !localWins && remote.Status != local.Status && !local.Status.CanTransition(remote.Status) {
		res.Merged.Status = local.Status
		res.StatusKept = true
	}
	return res
}

// MergeItems keeps, per item id, whichever version carries the later
// updated_at. An item without a timestamp loses to one that has it; when
// neither has one the local item is kept. Local ordering comes first and
// remote-only items are appended.
func MergeItems(local, remote []domain.OrderItem) []domain.OrderItem {
	remoteByID := make(map[string]domain.OrderItem, len(remote))
	for _, item := range remote {
		remoteByID[item.ID] = item
	}

	merged := make([]domain.OrderItem, 0, len(local)+len(remote))
	seen := make(map[string]bool, len(local))
	for _, item := range local {
		seen[item.ID] = true
		other, ok := remoteByID[item.ID]
		if ok && newer(other.UpdatedAt, item.UpdatedAt) {
			merged = append(merged, other)
			continue
		}
		merged = append(merged, item)
	}
	for _, item := range remote {
		if !seen[item.ID] {
			merged = append(merged, item)
		}
	}
	return merged
}

func newer(candidate, current *time.Time) bool {
	if candidate == nil {
		return false
	}
	if current == nil {
		return true
	}
	return candidate.After(*current)
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
