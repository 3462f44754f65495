package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/match-predictor/internal/models"
)

// MatchHistoryRepository defines the interface for archived match access
type MatchHistoryRepository interface {
	// ExistingIDs returns the subset of ids already archived
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
	// InsertBatch archives matches, skipping ids already stored, and returns how many were written
	InsertBatch(ctx context.Context, matches []*models.FinishedMatch) (int, error)
	GetByID(ctx context.Context, matchID string) (*models.FinishedMatch, error)
	GetRecent(ctx context.Context, limit int) ([]*models.FinishedMatch, error)
	GetByTeam(ctx context.Context, team string, limit int) ([]*models.FinishedMatch, error)
}

// PredictionRepository defines the interface for issued prediction access
type PredictionRepository interface {
	Insert(ctx context.Context, prediction *models.StoredPrediction) error
	InsertBatch(ctx context.Context, predictions []*models.StoredPrediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StoredPrediction, error)
	GetByMatchID(ctx context.Context, matchID string) ([]*models.StoredPrediction, error)
	// LatestByMatchIDs returns the newest stored prediction for each of the given matches
	LatestByMatchIDs(ctx context.Context, matchIDs []string) (map[string]*models.StoredPrediction, error)
	GetRecent(ctx context.Context, limit int) ([]*models.StoredPrediction, error)
}
