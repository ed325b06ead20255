package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-resume-saas/internal/shared/config"
)

type nopDriver struct{}

func (d nopDriver) Open(name string) (driver.Conn, error) {
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                                   { return nil }
func (nopStmt) NumInput() int                                  { return -1 }
func (nopStmt) Exec(args []driver.Value) (driver.Result, error) { return nopResult{}, nil }
func (nopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopResult struct{}

func (nopResult) LastInsertId() (int64, error) { return 0, nil }
func (nopResult) RowsAffected() (int64, error) { return 0, nil }

type nopRows struct{}

func (nopRows) Columns() []string              { return []string{} }
func (nopRows) Close() error                   { return nil }
func (nopRows) Next(dest []driver.Value) error { return driver.ErrBadConn }

var registerTestDriverOnce sync.Once

func ensureTestDriverRegistered() {
	registerTestDriverOnce.Do(func() {
		sql.Register("dbtest", nopDriver{})
	})
}

func withTestDriver(t *testing.T) func() {
	t.Helper()
	ensureTestDriverRegistered()
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.Open("dbtest", dsn)
	}
	return func() {
		openDB = prev
	}
}

func TestWithPoolOverridesNonZeroFields(t *testing.T) {
	opts := DefaultServerOptions().WithPool(config.DBPool{
		MaxOpenConns:    7,
		ConnMaxLifetime: 20 * time.Minute,
		PingTimeout:     time.Second,
	})
	if opts.MaxOpenConns != 7 || opts.MaxIdleConns != 5 {
		t.Fatalf("unexpected conns open=%d idle=%d", opts.MaxOpenConns, opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime != 20*time.Minute || opts.ConnMaxIdleTime != 2*time.Minute {
		t.Fatalf("unexpected lifetimes %s %s", opts.ConnMaxLifetime, opts.ConnMaxIdleTime)
	}
	if opts.PingTimeout != time.Second {
		t.Fatalf("expected PingTimeout=1s, got %s", opts.PingTimeout)
	}
}

func TestWithPoolCapsIdleAtOpen(t *testing.T) {
	opts := DefaultMigrateOptions().WithPool(config.DBPool{MaxIdleConns: 4})
	if opts.MaxIdleConns != 1 {
		t.Fatalf("expected idle capped at 1, got %d", opts.MaxIdleConns)
	}
}

func TestConnectAppliesPool(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	opts := DefaultServerOptions().WithPool(config.DBPool{MaxOpenConns: 3})
	opts.Name = "dbtest"
	db, err := Connect(context.Background(), "ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 3 {
		t.Fatalf("expected MaxOpenConnections=3, got %d", got)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); !errors.Is(err, ErrNoDatabaseURL) {
		t.Fatalf("expected ErrNoDatabaseURL, got %v", err)
	}
}

func TestConnectWrapsOpenError(t *testing.T) {
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return nil, driver.ErrBadConn
	}
	defer func() {
		openDB = prev
	}()

	_, err := Connect(context.Background(), "postgres://x", DefaultMigrateOptions())
	if !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}

func TestMigrateNilDatabaseIsNoop(t *testing.T) {
	if err := Migrate(context.Background(), nil, "up"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
