package remote_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"dineswift-local/internal/domain"
	"dineswift-local/internal/remote"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dest {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

// fakeDB answers queries from canned rows in call order.
type fakeDB struct {
	rows    []fakeRow
	tag     pgconn.CommandTag
	execErr error
	pingErr error
	args    [][]any
}

func (db *fakeDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	db.args = append(db.args, args)
	return db.tag, db.execErr
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	db.args = append(db.args, args)
	row := db.rows[0]
	db.rows = db.rows[1:]
	return row
}

func (db *fakeDB) Ping(context.Context) error { return db.pingErr }

var updatedAt = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func remoteOrderRow(status string) fakeRow {
	return fakeRow{values: []any{
		"remote-1", "PIZ-20261016093000-0001", "rest-42", "T4", "",
		[]byte(`[{"id":"margherita","name":"Margherita","price":"10","quantity":2}]`),
		"20.00", "1.60", "21.60", status, "",
		int64(3), updatedAt.Add(-time.Hour), updatedAt,
	}}
}

func TestPostgresStore_UpsertOrder(t *testing.T) {
	order := domain.RemoteOrder{
		LocalOrderID:  "PIZ-20261016093000-0001",
		RestaurantRef: "rest-42",
		Status:        domain.StatusPending,
		Subtotal:      mustDecimal("20.00"),
		TaxAmount:     mustDecimal("1.60"),
		TotalAmount:   mustDecimal("21.60"),
		SyncVersion:   1,
	}

	tests := []struct {
		name      string
		row       fakeRow
		expected  string
		terminal  bool
		transient bool
	}{
		{name: "created", row: fakeRow{values: []any{"remote-1"}}, expected: "remote-1"},
		{name: "constraint violation", row: fakeRow{err: &pgconn.PgError{Code: "23502"}}, terminal: true},
		{name: "bad input", row: fakeRow{err: &pgconn.PgError{Code: "22P02"}}, terminal: true},
		{name: "serialization failure", row: fakeRow{err: &pgconn.PgError{Code: "40001"}}, transient: true},
		{name: "timeout", row: fakeRow{err: context.DeadlineExceeded}, transient: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			db := &fakeDB{rows: []fakeRow{testCase.row}}
			store := remote.NewPostgresStore(db, time.Second)

			id, err := store.UpsertOrder(context.Background(), order, "PIZ-20261016093000-0001")

			var transient *domain.TransientRemoteError
			switch {
			case testCase.terminal:
				assert.True(t, domain.IsTerminal(err))
			case testCase.transient:
				assert.True(t, errors.As(err, &transient))
			default:
				require.NoError(t, err)
				assert.Equal(t, testCase.expected, id)
				require.Len(t, db.args, 1)
				assert.Equal(t, "PIZ-20261016093000-0001", db.args[0][1])
				assert.Equal(t, "21.60", db.args[0][9])
			}
		})
	}
}

func TestPostgresStore_UpdateOrder(t *testing.T) {
	delta := domain.OrderDelta{Status: domain.StatusConfirmed, SyncVersion: 2, UpdatedAt: updatedAt.Add(-time.Minute)}

	tests := []struct {
		name   string
		tag    string
		rows   []fakeRow
		assert func(*testing.T, error)
	}{
		{
			name: "applied",
			tag:  "UPDATE 1",
			assert: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "remote is newer",
			tag:  "UPDATE 0",
			rows: []fakeRow{remoteOrderRow("preparing")},
			assert: func(t *testing.T, err error) {
				var conflict *domain.ConflictError
				require.True(t, errors.As(err, &conflict))
				require.NotNil(t, conflict.Remote)
				assert.Nil(t, conflict.Local)
				assert.Equal(t, domain.StatusPreparing, conflict.Remote.Status)
				assert.Equal(t, updatedAt, conflict.Remote.UpdatedAt)
			},
		},
		{
			name: "remote order missing",
			tag:  "UPDATE 0",
			rows: []fakeRow{{err: pgx.ErrNoRows}},
			assert: func(t *testing.T, err error) {
				assert.True(t, domain.IsTerminal(err))
				assert.True(t, domain.IsNotFound(err))
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			db := &fakeDB{tag: pgconn.NewCommandTag(testCase.tag), rows: testCase.rows}
			store := remote.NewPostgresStore(db, time.Second)

			testCase.assert(t, store.UpdateOrder(context.Background(), "remote-1", delta))
		})
	}
}

func TestPostgresStore_UpdateOrder_StatusOnly(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("UPDATE 1")}
	store := remote.NewPostgresStore(db, 0)

	err := store.UpdateOrder(context.Background(), "remote-1", domain.OrderDelta{Status: domain.StatusReady, SyncVersion: 4, UpdatedAt: updatedAt})

	require.NoError(t, err)
	require.Len(t, db.args, 1)
	assert.Equal(t, "ready", db.args[0][1])
	assert.Nil(t, db.args[0][2])
}

func TestPostgresStore_GetOrder(t *testing.T) {
	db := &fakeDB{rows: []fakeRow{remoteOrderRow("confirmed")}}
	store := remote.NewPostgresStore(db, time.Second)

	order, err := store.GetOrder(context.Background(), "remote-1")

	require.NoError(t, err)
	assert.Equal(t, "remote-1", order.ID)
	assert.Equal(t, domain.StatusConfirmed, order.Status)
	assert.True(t, order.TotalAmount.Equal(mustDecimal("21.60")))
	assert.True(t, order.TaxAmount.Equal(mustDecimal("1.60")))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "margherita", order.Items[0].ID)
	assert.Equal(t, int64(3), order.SyncVersion)
}

func TestPostgresStore_GetMenu_NotFound(t *testing.T) {
	db := &fakeDB{rows: []fakeRow{{err: pgx.ErrNoRows}}}
	store := remote.NewPostgresStore(db, time.Second)

	_, err := store.GetMenu(context.Background(), "rest-42")

	assert.True(t, domain.IsNotFound(err))
}

func TestPostgresStore_Ping(t *testing.T) {
	store := remote.NewPostgresStore(&fakeDB{pingErr: errors.New("dial tcp 10.0.0.5:5432: i/o timeout")}, time.Second)

	err := store.Ping(context.Background())

	var transient *domain.TransientRemoteError
	assert.True(t, errors.As(err, &transient))
}
