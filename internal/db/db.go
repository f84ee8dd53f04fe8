// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/toeirei/ledgerbase/internal/db"

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

var engines = map[string]*engine{
	"sqlite":   sqliteEngine,
	"postgres": postgresEngine,
	"mysql":    mysqlEngine,
}

// Option configures a Conn.
type Option func(*Conn)

// WithRetry sets how often RetryConnection dials and how long it waits
// between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Conn) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// SupportedTypes lists the accepted database types.
func SupportedTypes() []string { return []string{"sqlite", "postgres", "mysql"} }

func engineFor(dbType string) (*engine, error) {
	eng, ok := engines[dbType]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: '%s'", dbType)
	}
	return eng, nil
}

// Open dials dbType at dsn, applies pool settings and verifies the
// connection.
func Open(ctx context.Context, dbType, dsn string, opts ...Option) (*Conn, error) {
	eng, err := engineFor(dbType)
	if err != nil {
		return nil, err
	}
	open := func(ctx context.Context) (*sql.DB, error) {
		start := time.Now()
		sqlDB, err := sqlOpenFunc(eng.driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		configurePool(sqlDB, dbType, dsn)
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to connect to %s: %w", dbType, err)
		}
		dbLogf("opened %s driver in %s", eng.driver, time.Since(start))
		return sqlDB, nil
	}
	sqlDB, err := open(ctx)
	if err != nil {
		return nil, err
	}
	c := newConn(sqlDB, eng, opts)
	c.reopen = open
	return c, nil
}

// NewConn wraps an already opened *sql.DB. Reconnecting only pings the
// existing pool.
func NewConn(sqlDB *sql.DB, dbType string, opts ...Option) (*Conn, error) {
	eng, err := engineFor(dbType)
	if err != nil {
		return nil, err
	}
	return newConn(sqlDB, eng, opts), nil
}

func newConn(sqlDB *sql.DB, eng *engine, opts []Option) *Conn {
	c := &Conn{
		eng:           eng,
		sqlDB:         sqlDB,
		bun:           createBunDB(sqlDB, eng.name),
		retryAttempts: 3,
		retryDelay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// configurePool applies pool defaults, overridable via environment
// variables for CI or production tuning.
func configurePool(sqlDB *sql.DB, dbType, dsn string) {
	const (
		defaultMaxOpenConns    = 25
		defaultMaxIdleConns    = 25
		defaultConnMaxLifetime = 5 * time.Minute
		defaultConnMaxIdle     = 60 * time.Second
	)

	maxOpen := envInt("LEDGERBASE_DB_MAX_OPEN_CONNS", defaultMaxOpenConns)
	maxIdle := envInt("LEDGERBASE_DB_MAX_IDLE_CONNS", defaultMaxIdleConns)
	connMax := defaultConnMaxLifetime
	if n := envInt("LEDGERBASE_DB_CONN_MAX_LIFETIME_SECONDS", -1); n >= 0 {
		connMax = time.Duration(n) * time.Second
	}
	connIdle := defaultConnMaxIdle
	if n := envInt("LEDGERBASE_DB_CONN_MAX_IDLE_SECONDS", -1); n >= 0 {
		connIdle = time.Duration(n) * time.Second
	}

	// For in-memory SQLite databases, force a single open connection so
	// schema changes are visible to every statement.
	if dbType == "sqlite" && isSQLiteMemory(dsn) {
		maxOpen = 1
		maxIdle = 1
		// The database vanishes with its last connection.
		connMax = 0
		connIdle = 0
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(connMax)
	sqlDB.SetConnMaxIdleTime(connIdle)
	dbLogf("pool for %s: max open=%d, idle=%d, maxLifetime=%s", dbType, maxOpen, maxIdle, connMax)
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and dbType.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}
