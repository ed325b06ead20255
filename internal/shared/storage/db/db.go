package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"ai-resume-saas/internal/shared/config"
	"ai-resume-saas/internal/shared/metrics"
	"ai-resume-saas/internal/shared/telemetry"
)

// ErrNoDatabaseURL is returned when Postgres is selected without DATABASE_URL.
var ErrNoDatabaseURL = errors.New("DATABASE_URL is empty")

// Options controls the pool and the startup ping.
type Options struct {
	// Name labels pool metrics and logs.
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var openDB = sql.Open

// DefaultServerOptions sizes the pool for the API: analyses are read-mostly
// and bounded by the per-identity limiter, so a small pool is enough.
func DefaultServerOptions() Options {
	return Options{
		Name:            "resumes",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// DefaultMigrateOptions uses a single connection for goose.
func DefaultMigrateOptions() Options {
	return Options{
		Name:            "migrate",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     10 * time.Second,
	}
}

// WithPool applies the non-zero overrides from configuration.
func (o Options) WithPool(pool config.DBPool) Options {
	if pool.MaxOpenConns > 0 {
		o.MaxOpenConns = pool.MaxOpenConns
	}
	if pool.MaxIdleConns > 0 {
		o.MaxIdleConns = pool.MaxIdleConns
	}
	if pool.ConnMaxLifetime > 0 {
		o.ConnMaxLifetime = pool.ConnMaxLifetime
	}
	if pool.ConnMaxIdleTime > 0 {
		o.ConnMaxIdleTime = pool.ConnMaxIdleTime
	}
	if pool.PingTimeout > 0 {
		o.PingTimeout = pool.PingTimeout
	}
	if o.MaxIdleConns > o.MaxOpenConns && o.MaxOpenConns > 0 {
		o.MaxIdleConns = o.MaxOpenConns
	}
	return o
}

// Connect opens a pgx-backed *sql.DB, verifies it and exports pool stats.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNoDatabaseURL
	}

	database, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	database.SetMaxOpenConns(opts.MaxOpenConns)
	database.SetMaxIdleConns(opts.MaxIdleConns)
	database.SetConnMaxLifetime(opts.ConnMaxLifetime)
	database.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = "default"
	}
	metrics.RegisterDBStats(database, name)
	telemetry.Info("db.connected", map[string]any{
		"pool":     name,
		"max_open": opts.MaxOpenConns,
		"max_idle": opts.MaxIdleConns,
	})
	return database, nil
}
