package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cortexa-systems/cortexa-ingest/internal/models"
)

// setupTestDatabase starts a PostgreSQL testcontainer with the raw_eeg
// schema applied.
func setupTestDatabase(t *testing.T) (*PostgresRepository, func()) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("eeg_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	if err := runMigrations(connStr); err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	repo, err := NewPostgresRepository(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create repository: %v", err)
	}

	cleanup := func() {
		repo.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return repo, cleanup
}

func runMigrations(connStr string) error {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	migrationPath := filepath.Join("..", "..", "migrations", "000001_create_raw_eeg.up.sql")
	migrationSQL, err := os.ReadFile(migrationPath)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	if _, err := db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	return nil
}

func makeSamples(n int, received time.Time) []models.Sample {
	channels := []string{"Fp1", "Fp2", "F7", "F8", "T7", "T8", "P7", "P8"}
	samples := make([]models.Sample, n)
	for i := range samples {
		samples[i] = models.Sample{
			Time:              received,
			SessionID:         "session-1",
			UserID:            "user-1",
			DeviceID:          "device-1",
			ChannelName:       channels[i%len(channels)],
			Value:             float64(i),
			DeviceTimestampUS: uint32(i * 4000),
		}
	}
	return samples
}

func TestInsertSamples(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	repo, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	received := time.Now().UTC().Truncate(time.Microsecond)

	n, err := repo.InsertSamples(ctx, makeSamples(16, received))
	if err != nil {
		t.Fatalf("InsertSamples() error = %v", err)
	}
	if n != 16 {
		t.Errorf("InsertSamples() = %d, want 16", n)
	}

	// Read the rows back through the same pool
	var count int
	err = repo.pool.QueryRow(ctx,
		`SELECT count(*) FROM raw_eeg WHERE session_id = $1`, "session-1").Scan(&count)
	if err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 16 {
		t.Errorf("stored rows = %d, want 16", count)
	}

	var channel string
	var value float64
	var deviceTS int64
	err = repo.pool.QueryRow(ctx,
		`SELECT channel_name, value, device_timestamp_us
		 FROM raw_eeg
		 WHERE session_id = $1 AND value = 9`, "session-1").
		Scan(&channel, &value, &deviceTS)
	if err != nil {
		t.Fatalf("row query: %v", err)
	}
	if channel != "Fp2" {
		t.Errorf("channel = %q, want Fp2", channel)
	}
	if deviceTS != 36000 {
		t.Errorf("device_timestamp_us = %d, want 36000", deviceTS)
	}
}

func TestInsertSamplesEmptyBatch(t *testing.T) {
	repo := &PostgresRepository{}
	_, err := repo.InsertSamples(context.Background(), nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("InsertSamples(nil) error = %v, want ErrEmptyBatch", err)
	}
}
