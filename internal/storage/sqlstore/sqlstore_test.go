package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Handler {
	t.Helper()

	handler, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = handler.Close() })

	return handler
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	handler := openMemory(t)

	require.NoError(t, handler.Migrate(context.Background()))
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	handler := openMemory(t)

	insert := func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users(uuid, created_at_ms) VALUES (?, ?)`, "u-1", 1)
		return err
	}

	errBoom := errors.New("boom")
	err := handler.WithTx(ctx, func(tx *sql.Tx) error {
		if err := insert(tx); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	var count int
	require.NoError(t, handler.Conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 0, count)

	require.NoError(t, handler.WithTx(ctx, insert))
	require.NoError(t, handler.Conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestNullableUnixMilli(t *testing.T) {
	assert.Nil(t, NullableUnixMilli(sql.NullInt64{}))

	got := NullableUnixMilli(sql.NullInt64{Int64: 1700000000000, Valid: true})
	require.NotNil(t, got)
	assert.Equal(t, int64(1700000000000), got.UnixMilli())
}
