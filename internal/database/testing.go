package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/match-predictor/internal/config"
)

// SetupTestDB connects to the database named by MATCH_PREDICTOR_TEST_CONFIG and
// skips the test when it is unset or unreachable.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv("MATCH_PREDICTOR_TEST_CONFIG")
	if path == "" {
		t.Skip("Integration test - set MATCH_PREDICTOR_TEST_CONFIG to run")
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}
