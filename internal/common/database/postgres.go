// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"roi-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// schemaStatements create the tables written by the record-calculation worker.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS roi_calculations (
		id                   UUID PRIMARY KEY,
		request_id           TEXT NOT NULL UNIQUE,
		lead_email           TEXT,
		industry             TEXT NOT NULL,
		investment           NUMERIC(12, 2) NOT NULL,
		selected_solutions   JSONB NOT NULL,
		five_year_roi        NUMERIC(14, 2) NOT NULL,
		annual_return        NUMERIC(14, 2) NOT NULL,
		time_savings_percent NUMERIC(5, 2) NOT NULL,
		payback_months       INTEGER NOT NULL,
		roi_multiplier       NUMERIC(6, 2) NOT NULL,
		result               JSONB NOT NULL,
		created_at           TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS roi_calculations_industry_idx ON roi_calculations (industry)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id            BIGSERIAL PRIMARY KEY,
		event_type    TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id   TEXT NOT NULL,
		details       JSONB,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
}

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a PostgreSQL pool. The connection is verified lazily;
// call Ping to fail fast.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Migrate creates the calculation tables when they are missing.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
