// Package sqlstore opens the game database and applies its schema.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Handler struct {
	Conn   *sql.DB
	Driver string
}

func New(conn *sql.DB, driver string) *Handler {
	return &Handler{Conn: conn, Driver: driver}
}

// Open connects to driver/dsn, verifies the connection and migrates the schema.
func Open(ctx context.Context, driver, dsn string) (*Handler, error) {
	const op = "storage.sqlstore.Open"

	var (
		conn *sql.DB
		err  error
	)

	switch driver {
	case DriverMySQL:
		conn, err = openMySQL(dsn)
	case DriverSQLite:
		conn, err = openSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("%s: unsupported driver %q", op, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	handler := New(conn, driver)

	if err = handler.Migrate(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return handler, nil
}

func openMySQL(dsn string) (*sql.DB, error) {
	conn, err := sql.Open(DriverMySQL, dsn)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)

	return conn, nil
}

func openSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}

	if dsn != ":memory:" {
		if parent := filepath.Dir(dsn); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	conn, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}

	// One connection serialises writers and keeps :memory: databases alive.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err = conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()

			return nil, err
		}
	}

	return conn, nil
}

func (handler *Handler) Close() error {
	if handler == nil || handler.Conn == nil {
		return nil
	}

	return handler.Conn.Close()
}

// WithTx runs fn inside a transaction, committing on nil and rolling back otherwise.
func (handler *Handler) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	const op = "storage.sqlstore.WithTx"

	tx, err := handler.Conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (handler *Handler) Migrate(ctx context.Context) error {
	const op = "storage.sqlstore.Migrate"

	statements := sqliteSchema
	if handler.Driver == DriverMySQL {
		statements = mysqlSchema
	}

	for _, stmt := range statements {
		if _, err := handler.Conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// UnixMilli converts a stored millisecond timestamp back to time.Time.
func UnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func NullableUnixMilli(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}

	t := UnixMilli(ms.Int64)

	return &t
}
