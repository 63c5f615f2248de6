package storage_test

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"dineswift-local/internal/domain"
	"dineswift-local/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryCols = []string{
	"id", "restaurant_id", "sync_type", "status", "priority", "payload", "idempotency_key",
	"remote_id", "retry_count", "max_retries", "last_retry", "next_retry", "error_message",
	"conflict_data", "claimed_at", "created_at", "updated_at",
}

func entryRow(id uuid.UUID, priority int, created time.Time, conflict []byte) []driver.Value {
	return []driver.Value{
		id.String(), uuid.NewString(), "create_order", "processing", priority,
		[]byte(`{"order_id":"` + uuid.NewString() + `","local_order_id":"PIZ-1"}`), id.String(),
		"", 0, 5, nil, nil, "",
		conflict, created, created, created,
	}
}

func newRepo(t *testing.T) (*storage.PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.NewPostgresRepository(db), mock
}

func TestClaimDue_ReturnsEntriesInPriorityOrder(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	urgent, older, newer := uuid.New(), uuid.New(), uuid.New()
	rows := sqlmock.NewRows(entryCols).
		AddRow(entryRow(newer, 5, now.Add(-time.Minute), nil)...).
		AddRow(entryRow(older, 5, now.Add(-time.Hour), nil)...).
		AddRow(entryRow(urgent, 1, now, nil)...)

	mock.ExpectQuery("UPDATE sync_queue").
		WithArgs(now, 10).
		WillReturnRows(rows)

	entries, err := repo.ClaimDue(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []uuid.UUID{urgent, older, newer}, []uuid.UUID{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Equal(t, domain.EntryProcessing, entries[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimConflicts_DecodesConflictData(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()

	mock.ExpectQuery("UPDATE sync_queue").
		WithArgs(now, 20).
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow(entryRow(id, 5, now, []byte(`{"local_version":{"local_order_id":"PIZ-1","status":"ready"},"remote_version":{"local_order_id":"PIZ-1","status":"preparing"}}`))...))

	entries, err := repo.ClaimConflicts(context.Background(), now, 20)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Conflict)
	assert.Equal(t, domain.StatusReady, entries[0].Conflict.Local.Status)
	assert.Equal(t, domain.StatusPreparing, entries[0].Conflict.Remote.Status)
}

func TestClaim_OnlyOneWorkerWins(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()
	id := uuid.New()

	mock.ExpectExec("UPDATE sync_queue").
		WithArgs(now, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE sync_queue").
		WithArgs(now, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := repo.Claim(context.Background(), id, now)
	require.NoError(t, err)
	second, err := repo.Claim(context.Background(), id, now)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueue(t *testing.T) {
	tests := []struct {
		name      string
		execErr   error
		wantIsDup bool
	}{
		{name: "inserted"},
		{name: "duplicate idempotency key", execErr: uniqueViolation("sync_queue_idempotency_key_key"), wantIsDup: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo, mock := newRepo(t)
			entry := &domain.SyncEntry{RestaurantID: uuid.New(), Kind: domain.KindMenuUpdate, Payload: []byte(`{}`), IdempotencyKey: "k1"}

			exp := mock.ExpectExec("INSERT INTO sync_queue")
			if testCase.execErr != nil {
				exp.WillReturnError(testCase.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.Enqueue(context.Background(), entry)
			if testCase.wantIsDup {
				assert.True(t, domain.IsIntegrity(err))
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, entry.ID)
			assert.Equal(t, domain.DefaultPriority, entry.Priority)
			assert.Equal(t, domain.DefaultMaxRetries, entry.MaxRetries)
			assert.Equal(t, domain.EntryPending, entry.Status)
		})
	}
}

func TestSaveRetry_TruncatesError(t *testing.T) {
	repo, mock := newRepo(t)
	next := time.Now().UTC().Add(time.Minute)
	entry := &domain.SyncEntry{
		ID:           uuid.New(),
		Status:       domain.EntryFailed,
		RetryCount:   1,
		LastRetry:    &next,
		NextRetry:    &next,
		ErrorMessage: string(make([]byte, 1500)),
	}

	mock.ExpectExec("UPDATE sync_queue").
		WithArgs(entry.ID, "failed", 1, next, next, string(make([]byte, domain.MaxErrorLength))).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveRetry(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReclaimStuck(t *testing.T) {
	repo, mock := newRepo(t)
	cutoff := time.Now().UTC().Add(-10 * time.Minute)

	mock.ExpectExec("UPDATE sync_queue").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ReclaimStuck(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestGetEntry_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM sync_queue").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(entryCols))

	_, err := repo.GetEntry(context.Background(), id)
	assert.True(t, domain.IsNotFound(err))
}

func TestListEntries(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery("WHERE status = \\$1 ORDER BY priority, created_at LIMIT \\$2").
		WithArgs(domain.EntryFailed, 50).
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow(entryRow(second, 5, now, nil)...).
			AddRow(entryRow(first, 2, now, nil)...))

	entries, err := repo.ListEntries(context.Background(), domain.EntryFailed, 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequeueExhausted(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec("SET status = 'pending', retry_count = 0, next_retry = NULL").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.RequeueExhausted(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
