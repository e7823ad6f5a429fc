// internal/database/database.go

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"LearnLoopAPI/internal/config"

	_ "github.com/lib/pq"
)

type Database struct {
	DB  *sql.DB
	cfg *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*Database, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		DB:  db,
		cfg: cfg,
	}, nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

func (d *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := d.DB.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Migrate creates the tables the store needs. Idempotent; runs at startup.
func (d *Database) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS telemetry (
			id uuid PRIMARY KEY,
			timestamp timestamptz NOT NULL,
			source text NOT NULL,
			type text NOT NULL,
			payload jsonb,
			received_at timestamptz NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id uuid PRIMARY KEY,
			event_id text NOT NULL,
			label text NOT NULL,
			reviewer text,
			notes text,
			created_at timestamptz NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			id uuid PRIMARY KEY,
			event_id text NOT NULL,
			metric text NOT NULL,
			value double precision NOT NULL,
			severity text NOT NULL,
			created_at timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_metric_created ON scores (metric, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS eval_configs (
			metric text PRIMARY KEY,
			comparison text NOT NULL,
			warn double precision NOT NULL,
			crit double precision NOT NULL,
			window_seconds int NOT NULL,
			enabled boolean NOT NULL,
			updated_at timestamptz NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
