// Package repository persists archived matches and issued predictions in PostgreSQL.
package repository

import (
	"fmt"

	"github.com/yourusername/match-predictor/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	MatchHistory MatchHistoryRepository
	Prediction   PredictionRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		MatchHistory: NewPostgresMatchHistoryRepository(db),
		Prediction:   NewPostgresPredictionRepository(db),
	}, nil
}
