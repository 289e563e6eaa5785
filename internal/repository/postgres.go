// Package repository persists decoded samples in Postgres.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cortexa-systems/cortexa-ingest/internal/models"
)

// ErrEmptyBatch signals that a write was requested with no samples. The
// store is not touched in that case; callers short-circuit on it rather
// than treating it as a failed write.
var ErrEmptyBatch = errors.New("empty sample batch")

var sampleColumns = []string{
	"time", "session_id", "user_id", "device_id",
	"channel_name", "value", "device_timestamp_us",
}

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository opens a connection pool and verifies it with a
// ping. The pool is shared process-wide; individual writes check
// connections out and return them per call.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() { r.pool.Close() }

// Ping reports whether the database is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// InsertSamples appends all samples in one COPY operation. The write is
// atomic: either every sample becomes visible or none does. The pooled
// connection is released on every exit path.
func (r *PostgresRepository) InsertSamples(ctx context.Context, samples []models.Sample) (int, error) {
	if len(samples) == 0 {
		return 0, ErrEmptyBatch
	}

	rows := make([][]any, len(samples))
	for i, s := range samples {
		rows[i] = []any{
			s.Time, s.SessionID, s.UserID, s.DeviceID,
			s.ChannelName, s.Value, int64(s.DeviceTimestampUS),
		}
	}

	copied, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"raw_eeg"},
		sampleColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk insert samples: %w", err)
	}
	return int(copied), nil
}
