package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/match-predictor/internal/database"
	"github.com/yourusername/match-predictor/internal/models"
)

const matchHistoryColumns = `match_id, home_team, away_team, home_score, away_score, sport, league, started_at, status, created_at`

// PostgresMatchHistoryRepository implements MatchHistoryRepository for PostgreSQL
type PostgresMatchHistoryRepository struct {
	db *database.DB
}

// NewPostgresMatchHistoryRepository creates a new match history repository
func NewPostgresMatchHistoryRepository(db *database.DB) MatchHistoryRepository {
	return &PostgresMatchHistoryRepository{db: db}
}

// ExistingIDs returns the subset of ids already archived
func (r *PostgresMatchHistoryRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	rows, err := r.db.Query(ctx, `SELECT match_id FROM match_history WHERE match_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing match ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan match id: %w", err)
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// InsertBatch archives matches in one round trip; duplicates are ignored
func (r *PostgresMatchHistoryRepository) InsertBatch(ctx context.Context, matches []*models.FinishedMatch) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO match_history (match_id, home_team, away_team, home_score, away_score, sport, league, started_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (match_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, m := range matches {
		if err := m.Validate(); err != nil {
			return 0, fmt.Errorf("match %q: %w", m.MatchID, err)
		}
		batch.Queue(query, m.MatchID, m.HomeTeam, m.AwayTeam, m.HomeScore, m.AwayScore,
			m.Sport, m.League, m.StartedAt, m.Status)
	}

	inserted := 0
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range matches {
			tag, err := results.Exec()
			if err != nil {
				return err
			}
			inserted += int(tag.RowsAffected())
		}
		return results.Close()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to batch insert match history: %w", err)
	}
	return inserted, nil
}

// GetByID retrieves an archived match
func (r *PostgresMatchHistoryRepository) GetByID(ctx context.Context, matchID string) (*models.FinishedMatch, error) {
	query := `SELECT ` + matchHistoryColumns + ` FROM match_history WHERE match_id = $1`

	m, err := scanMatch(r.db.QueryRow(ctx, query, matchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// GetRecent returns the most recently archived matches
func (r *PostgresMatchHistoryRepository) GetRecent(ctx context.Context, limit int) ([]*models.FinishedMatch, error) {
	query := `
		SELECT ` + matchHistoryColumns + `
		FROM match_history
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.queryMatches(ctx, query, limit)
}

// GetByTeam returns a team's archived matches, most recent first
func (r *PostgresMatchHistoryRepository) GetByTeam(ctx context.Context, team string, limit int) ([]*models.FinishedMatch, error) {
	query := `
		SELECT ` + matchHistoryColumns + `
		FROM match_history
		WHERE home_team = $1 OR away_team = $1
		ORDER BY started_at DESC NULLS LAST
		LIMIT $2
	`
	return r.queryMatches(ctx, query, team, limit)
}

func (r *PostgresMatchHistoryRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.FinishedMatch, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query match history: %w", err)
	}
	defer rows.Close()

	var matches []*models.FinishedMatch
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func scanMatch(row pgx.Row) (*models.FinishedMatch, error) {
	m := &models.FinishedMatch{}
	err := row.Scan(
		&m.MatchID, &m.HomeTeam, &m.AwayTeam, &m.HomeScore, &m.AwayScore,
		&m.Sport, &m.League, &m.StartedAt, &m.Status, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}
