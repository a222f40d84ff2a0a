// Package db provides SQLite connectivity helpers and migration support for
// the engine's metastore: teams, audit log, credentials, and API keys.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"
)

// PoolMode selects write-safety and pool sizing for a SQLite pool.
type PoolMode string

const (
	// PoolWrite serializes writers: MaxOpenConns=1 with _txlock=immediate.
	PoolWrite PoolMode = "write"
	// PoolRead sizes a read-only pool (default 4 connections).
	PoolRead PoolMode = "read"
)

// Hardened DSN parameters applied to every pool.
const (
	busyTimeoutMs = "5000"
	synchronous   = "NORMAL"
	journalMode   = "WAL"
)

// Open opens a *sql.DB pool for the given SQLite file path. Both modes set
// WAL journaling, busy_timeout=5000ms, synchronous=NORMAL, and
// foreign_keys=on; the write mode additionally takes the write lock at
// transaction begin so writers queue instead of failing under contention.
func Open(path string, mode PoolMode, maxOpen int) (*sql.DB, error) {
	if mode != PoolRead && mode != PoolWrite {
		return nil, fmt.Errorf("invalid SQLite pool mode %q", mode)
	}

	pool, err := sql.Open("sqlite3", dsn(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite (%s): %w", mode, err)
	}

	switch mode {
	case PoolWrite:
		pool.SetMaxOpenConns(1)
		pool.SetMaxIdleConns(1)
	case PoolRead:
		if maxOpen <= 0 {
			maxOpen = 4
		}
		pool.SetMaxOpenConns(maxOpen)
		pool.SetMaxIdleConns(maxOpen)
	}
	pool.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping sqlite (%s): %w", mode, err)
	}

	return pool, nil
}

// OpenPair opens the write pool and a read pool for the same SQLite file.
// This is how the server configures SQLite for concurrent HTTP access.
func OpenPair(path string, readMaxOpen int) (writeDB, readDB *sql.DB, err error) {
	writeDB, err = Open(path, PoolWrite, 0)
	if err != nil {
		return nil, nil, err
	}

	readDB, err = Open(path, PoolRead, readMaxOpen)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}

	return writeDB, readDB, nil
}

func dsn(path string, mode PoolMode) string {
	params := url.Values{}
	params.Set("_journal_mode", journalMode)
	params.Set("_busy_timeout", busyTimeoutMs)
	params.Set("_synchronous", synchronous)
	params.Set("_foreign_keys", "on")
	if mode == PoolWrite {
		params.Set("_txlock", "immediate")
	}
	return path + "?" + params.Encode()
}
