package storage_test

import (
	"context"
	"testing"
	"time"

	"dineswift-local/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogActivity_DefaultsDetails(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("INSERT INTO activity_logs").
		WithArgs(sqlmock.AnyArg(), nil, sqlmock.AnyArg(), "sync", "order_synced", []byte("{}"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &domain.ActivityLog{Module: "sync", Action: "order_synced"}
	require.NoError(t, repo.LogActivity(context.Background(), entry))

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeActivity(t *testing.T) {
	repo, mock := newRepo(t)
	before := time.Now().UTC().AddDate(0, 0, -30)

	mock.ExpectExec("DELETE FROM activity_logs").WithArgs(before).WillReturnResult(sqlmock.NewResult(0, 12))

	removed, err := repo.PurgeActivity(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(12), removed)
}

func TestListHealthChecks(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM health_checks").
		WillReturnRows(sqlmock.NewRows([]string{"component", "is_healthy", "response_time_ms", "error_message", "last_check"}).
			AddRow("DATABASE", true, 3, "", now).
			AddRow("REMOTE", false, nil, "dial tcp: connection refused", now))

	checks, err := repo.ListHealthChecks(context.Background())
	require.NoError(t, err)

	require.Len(t, checks, 2)
	assert.Equal(t, domain.ComponentDatabase, checks[0].Component)
	require.NotNil(t, checks[0].ResponseTimeMs)
	assert.Equal(t, int64(3), *checks[0].ResponseTimeMs)
	assert.False(t, checks[1].IsHealthy)
	assert.Nil(t, checks[1].ResponseTimeMs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
