package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/match-predictor/internal/config"
)

func TestConnString(t *testing.T) {
	cs := ConnString(&config.DatabaseConfig{
		Host: "db", Port: 5433, User: "u", Password: "p@ss word", Name: "n", SSLMode: "disable",
	})
	assert.Equal(t, "postgres://u:p%40ss%20word@db:5433/n?sslmode=disable", cs)
}

func TestNewDBUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewDB(ctx, &config.DatabaseConfig{
		Host: "127.0.0.1", Port: 1, User: "u", Name: "n", SSLMode: "disable",
		MaxConnections: 2, MaxIdleConnections: 1,
	})
	assert.Error(t, err)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureSchema(ctx, db))
	require.NoError(t, EnsureSchema(ctx, db))
	assert.NoError(t, db.HealthCheck(ctx))
}
