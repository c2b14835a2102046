// Package archive mirrors completed job results past their broker TTL
// into Postgres for long-term audit/history. The broker remains the
// system of record for "is this job done yet"; this is a write-behind
// convenience that a deployment may opt out of entirely.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lidarforest/processing/internal/jobs"
)

// Config holds the PostgreSQL connection settings for the archive.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string // disable, require, verify-ca, verify-full; default disable.
}

// Archive wraps a PostgreSQL connection pool used to store completed
// JobResults.
type Archive struct {
	pool *pgxpool.Pool
}

// Open opens a connection pool to PostgreSQL and verifies connectivity.
func Open(ctx context.Context, cfg Config) (*Archive, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, url.QueryEscape(cfg.Password), cfg.Host, cfg.Port, cfg.Database, sslMode)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("archive: parse config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("archive: ping: %w", err)
	}
	return &Archive{pool: pool}, nil
}

// Close releases the connection pool.
func (a *Archive) Close() {
	a.pool.Close()
}

// CreateSchema creates the job_results table if it does not exist.
func (a *Archive) CreateSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS job_results (
		job_id      TEXT PRIMARY KEY,
		job_type    TEXT NOT NULL,
		status      TEXT NOT NULL,
		payload     JSONB,
		error_code  TEXT,
		error_message TEXT,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_job_results_type ON job_results(job_type);
	CREATE INDEX IF NOT EXISTS idx_job_results_archived ON job_results(archived_at);
	`
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("archive: create schema: %w", err)
	}
	return nil
}

// Store upserts a terminal JobResult into the archive.
func (a *Archive) Store(ctx context.Context, result jobs.Result) error {
	payloadJSON, err := json.Marshal(result.Payload)
	if err != nil {
		return fmt.Errorf("archive: marshal payload: %w", err)
	}

	var errCode, errMessage *string
	if result.Error != nil {
		errCode, errMessage = &result.Error.Code, &result.Error.Message
	}

	_, err = a.pool.Exec(ctx, `
		INSERT INTO job_results (job_id, job_type, status, payload, error_code, error_message, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (job_id) DO UPDATE SET
			status = EXCLUDED.status,
			payload = EXCLUDED.payload,
			error_code = EXCLUDED.error_code,
			error_message = EXCLUDED.error_message,
			finished_at = EXCLUDED.finished_at,
			archived_at = NOW()
	`, result.JobID, string(result.Type), string(result.Status), payloadJSON, errCode, errMessage, result.StartedAt, result.FinishedAt)
	if err != nil {
		return fmt.Errorf("archive: store %s: %w", result.JobID, err)
	}
	return nil
}

// Get retrieves an archived JobResult by job id, or (nil, nil) if absent.
func (a *Archive) Get(ctx context.Context, jobID string) (*jobs.Result, error) {
	var r jobs.Result
	var jobType, status string
	var payloadJSON []byte
	var errCode, errMessage *string
	var finishedAt *time.Time

	err := a.pool.QueryRow(ctx, `
		SELECT job_id, job_type, status, payload, error_code, error_message, started_at, finished_at
		FROM job_results WHERE job_id = $1
	`, jobID).Scan(&r.JobID, &jobType, &status, &payloadJSON, &errCode, &errMessage, &r.StartedAt, &finishedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("archive: get %s: %w", jobID, err)
	}

	r.Type = jobs.Type(jobType)
	r.Status = jobs.Status(status)
	if finishedAt != nil {
		r.FinishedAt = *finishedAt
	}
	if len(payloadJSON) > 0 {
		_ = json.Unmarshal(payloadJSON, &r.Payload)
	}
	if errCode != nil {
		r.Error = &jobs.JobError{Code: *errCode, Message: derefString(errMessage)}
	}
	return &r, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
