package service_test

import (
	"testing"
	"time"

	"dineswift-local/internal/domain"
	"dineswift-local/internal/service"

	"github.com/stretchr/testify/assert"
)

func at(minutes int) *time.Time {
	t := fixedNow.Add(time.Duration(minutes) * time.Minute)
	return &t
}

func TestMergeItems(t *testing.T) {
	tests := []struct {
		name     string
		local    []domain.OrderItem
		remote   []domain.OrderItem
		expected []domain.OrderItem
	}{
		{
			name:     "later remote edit wins per item",
			local:    []domain.OrderItem{{ID: "a", Quantity: 1, UpdatedAt: at(1)}, {ID: "b", Quantity: 1, UpdatedAt: at(5)}},
			remote:   []domain.OrderItem{{ID: "a", Quantity: 3, UpdatedAt: at(2)}, {ID: "b", Quantity: 9, UpdatedAt: at(4)}},
			expected: []domain.OrderItem{{ID: "a", Quantity: 3, UpdatedAt: at(2)}, {ID: "b", Quantity: 1, UpdatedAt: at(5)}},
		},
		{
			name:     "no timestamps keeps local",
			local:    []domain.OrderItem{{ID: "a", Quantity: 1}},
			remote:   []domain.OrderItem{{ID: "a", Quantity: 2}},
			expected: []domain.OrderItem{{ID: "a", Quantity: 1}},
		},
		{
			name:     "timestamped remote beats untimestamped local",
			local:    []domain.OrderItem{{ID: "a", Quantity: 1}},
			remote:   []domain.OrderItem{{ID: "a", Quantity: 2, UpdatedAt: at(0)}},
			expected: []domain.OrderItem{{ID: "a", Quantity: 2, UpdatedAt: at(0)}},
		},
		{
			name:     "equal timestamps keep local",
			local:    []domain.OrderItem{{ID: "a", Quantity: 1, UpdatedAt: at(3)}},
			remote:   []domain.OrderItem{{ID: "a", Quantity: 2, UpdatedAt: at(3)}},
			expected: []domain.OrderItem{{ID: "a", Quantity: 1, UpdatedAt: at(3)}},
		},
		{
			name:     "items on one side are kept",
			local:    []domain.OrderItem{{ID: "a", Quantity: 1}},
			remote:   []domain.OrderItem{{ID: "c", Quantity: 4}},
			expected: []domain.OrderItem{{ID: "a", Quantity: 1}, {ID: "c", Quantity: 4}},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, service.MergeItems(testCase.local, testCase.remote))
		})
	}
}

func TestMergeOrders(t *testing.T) {
	base := domain.RemoteOrder{LocalOrderID: "PIZ-20261016093000-0001", Status: domain.StatusPending}

	tests := []struct {
		name           string
		local          domain.RemoteOrder
		remote         domain.RemoteOrder
		localWins      bool
		expectedStatus domain.OrderStatus
		statusKept     bool
		version        int64
	}{
		{
			name:           "newer remote wins",
			local:          withOrder(base, domain.StatusPending, 0, 2),
			remote:         withOrder(base, domain.StatusConfirmed, 5, 3),
			expectedStatus: domain.StatusConfirmed,
			version:        4,
		},
		{
			name:           "newer local wins",
			local:          withOrder(base, domain.StatusPreparing, 10, 6),
			remote:         withOrder(base, domain.StatusConfirmed, 5, 3),
			localWins:      true,
			expectedStatus: domain.StatusPreparing,
			version:        7,
		},
		{
			name:           "tie goes to local",
			local:          withOrder(base, domain.StatusConfirmed, 5, 1),
			remote:         withOrder(base, domain.StatusCancelled, 5, 1),
			localWins:      true,
			expectedStatus: domain.StatusConfirmed,
			version:        2,
		},
		{
			name:           "unreachable remote status is not applied",
			local:          withOrder(base, domain.StatusCompleted, 0, 5),
			remote:         withOrder(base, domain.StatusPreparing, 5, 4),
			expectedStatus: domain.StatusCompleted,
			statusKept:     true,
			version:        6,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			res := service.MergeOrders(testCase.local, testCase.remote)
			assert.Equal(t, testCase.localWins, res.LocalWins)
			assert.Equal(t, testCase.expectedStatus, res.Merged.Status)
			assert.Equal(t, testCase.statusKept, res.StatusKept)
			assert.Equal(t, testCase.version, res.Merged.SyncVersion)
			assert.Equal(t, "remote-1", res.Merged.ID)
		})
	}
}

func withOrder(o domain.RemoteOrder, status domain.OrderStatus, minutes int, version int64) domain.RemoteOrder {
	o.ID = "remote-1"
	o.Status = status
	o.UpdatedAt = *at(minutes)
	o.SyncVersion = version
	return o
}
