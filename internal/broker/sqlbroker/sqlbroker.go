// Package sqlbroker is the bundled reference broker.Client: a local
// SQLite database for the queue and result KV store, migrated with
// golang-migrate the same way internal/db applies the radar schema.
// It gives the worker something real to run against in tests and
// single-node deployments without requiring an external broker.
package sqlbroker

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/lidarforest/processing/internal/broker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// pollInterval bounds how often Pop retries the underlying SELECT
// while waiting for an item to appear; it is the SQLite polling
// substitute for a server-side blocking pop.
const pollInterval = 100 * time.Millisecond

// Broker is a broker.Client backed by a SQLite database file.
type Broker struct {
	db *sql.DB
}

var _ broker.Client = (*Broker)(nil)

// Open creates (or reuses) the SQLite database at path, applies
// pragmas tuned for a single-writer queue, and runs the queue/KV
// schema migrations to the latest version.
func Open(path string) (*Broker, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlbroker: open %s: %w", path, err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	b := &Broker{db: db}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("sqlbroker: pragma %q: %w", p, err)
		}
	}
	return nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) { log.Printf("[sqlbroker migrate] "+format, v...) }
func (migrateLogger) Verbose() bool                          { return false }

func (b *Broker) migrate() error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("sqlbroker: migrations subtree: %w", err)
	}
	sourceDriver, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("sqlbroker: iofs source: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(b.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlbroker: sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("sqlbroker: migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sqlbroker: migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (b *Broker) Close() error {
	return b.db.Close()
}

// Push inserts value onto queue, ordered by priority (higher first)
// then insertion order within a priority tier.
func (b *Broker) Push(ctx context.Context, queue string, value []byte, priority int) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO queue_items (queue_name, payload, priority, enqueued_at) VALUES (?, ?, ?, ?)`,
		queue, value, priority, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("%w: push: %v", broker.ErrUnavailable, err)
	}
	return nil
}

// Pop polls the queue table for up to timeout, returning the
// highest-priority, oldest matching row and deleting it atomically so
// no two callers can pop the same item.
func (b *Broker) Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		payload, ok, err := b.popOnce(ctx, queue)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return payload, true, nil
		}
		if time.Now().After(deadline) {
			return nil, false, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (b *Broker) popOnce(ctx context.Context, queue string) ([]byte, bool, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: pop: %v", broker.ErrUnavailable, err)
	}
	defer tx.Rollback()

	var id int64
	var payload []byte
	row := tx.QueryRowContext(ctx,
		`SELECT id, payload FROM queue_items WHERE queue_name = ? ORDER BY priority DESC, id ASC LIMIT 1`,
		queue)
	if err := row.Scan(&id, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: pop: %v", broker.ErrUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM queue_items WHERE id = ?`, id); err != nil {
		return nil, false, fmt.Errorf("%w: pop delete: %v", broker.ErrUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("%w: pop commit: %v", broker.ErrUnavailable, err)
	}
	return payload, true, nil
}

// Set upserts key with value and an absolute expiry ttl from now.
func (b *Broker) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).Unix()
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("%w: set: %v", broker.ErrUnavailable, err)
	}
	return nil
}

// Get returns the value for key, or ok=false if absent or past its TTL.
// An expired row is opportunistically deleted.
func (b *Broker) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64
	row := b.db.QueryRowContext(ctx, `SELECT value, expires_at FROM kv_store WHERE key = ?`, key)
	if err := row.Scan(&value, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: get: %v", broker.ErrUnavailable, err)
	}
	if time.Now().Unix() > expiresAt {
		_, _ = b.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key)
		return nil, false, nil
	}
	return value, true, nil
}
