package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-predictor/internal/config"
)

// schema is applied idempotently at startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS match_history (
		match_id    TEXT PRIMARY KEY,
		home_team   TEXT NOT NULL,
		away_team   TEXT NOT NULL,
		home_score  INTEGER,
		away_score  INTEGER,
		sport       TEXT NOT NULL,
		league      TEXT NOT NULL DEFAULT '',
		started_at  TIMESTAMPTZ,
		status      TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id           UUID PRIMARY KEY,
		match_id     TEXT NOT NULL,
		home_team    TEXT NOT NULL,
		away_team    TEXT NOT NULL,
		league       TEXT NOT NULL DEFAULT '',
		outcome      SMALLINT NOT NULL,
		label        TEXT NOT NULL,
		price        DOUBLE PRECISION NOT NULL,
		probability  DOUBLE PRECISION NOT NULL,
		overround    DOUBLE PRECISION NOT NULL,
		starts_at    TIMESTAMPTZ,
		predicted_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_match_id ON predictions (match_id, predicted_at DESC)`,
}

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"host":     cfg.Database.Host,
			"database": cfg.Database.Name,
		}).Info("Database initialized")
	}
	return db, nil
}

// EnsureSchema creates missing tables and indexes
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
