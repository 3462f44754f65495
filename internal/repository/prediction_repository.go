package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/match-predictor/internal/database"
	"github.com/yourusername/match-predictor/internal/models"
)

var predictionColumns = []string{
	"id", "match_id", "home_team", "away_team", "league", "outcome",
	"label", "price", "probability", "overround", "starts_at", "predicted_at",
}

const predictionSelect = `
	SELECT id, match_id, home_team, away_team, league, outcome,
	       label, price, probability, overround, starts_at, predicted_at
	FROM predictions
`

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

func predictionValues(p *models.StoredPrediction) []interface{} {
	var startsAt interface{}
	if !p.StartsAt.IsZero() {
		startsAt = p.StartsAt
	}
	return []interface{}{
		p.ID, p.MatchID, p.HomeTeam, p.AwayTeam, p.League, int16(p.Outcome),
		p.Label, p.Price, p.Probability, p.Overround, startsAt, p.PredictedAt,
	}
}

// Insert stores a single prediction
func (r *PostgresPredictionRepository) Insert(ctx context.Context, prediction *models.StoredPrediction) error {
	if prediction.ID == uuid.Nil {
		prediction.ID = uuid.New()
	}

	query := `
		INSERT INTO predictions (id, match_id, home_team, away_team, league, outcome,
			label, price, probability, overround, starts_at, predicted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := r.db.Exec(ctx, query, predictionValues(prediction)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("prediction %s: %w", prediction.ID, models.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// InsertBatch stores predictions using COPY
func (r *PostgresPredictionRepository) InsertBatch(ctx context.Context, predictions []*models.StoredPrediction) error {
	if len(predictions) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(predictions))
	for i, p := range predictions {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		rows[i] = predictionValues(p)
	}

	count, err := r.db.CopyFrom(ctx, pgx.Identifier{"predictions"}, predictionColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to batch insert predictions: %w", err)
	}
	if count != int64(len(predictions)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(predictions))
	}
	return nil
}

// GetByID retrieves a prediction by id
func (r *PostgresPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredPrediction, error) {
	p, err := scanPrediction(r.db.QueryRow(ctx, predictionSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// GetByMatchID returns every prediction issued for a match, newest first
func (r *PostgresPredictionRepository) GetByMatchID(ctx context.Context, matchID string) ([]*models.StoredPrediction, error) {
	return r.queryPredictions(ctx, predictionSelect+` WHERE match_id = $1 ORDER BY predicted_at DESC`, matchID)
}

// LatestByMatchIDs returns the newest prediction per match, keyed by match id
func (r *PostgresPredictionRepository) LatestByMatchIDs(ctx context.Context, matchIDs []string) (map[string]*models.StoredPrediction, error) {
	latest := make(map[string]*models.StoredPrediction, len(matchIDs))
	if len(matchIDs) == 0 {
		return latest, nil
	}

	query := `
		SELECT DISTINCT ON (match_id)
		       id, match_id, home_team, away_team, league, outcome,
		       label, price, probability, overround, starts_at, predicted_at
		FROM predictions
		WHERE match_id = ANY($1)
		ORDER BY match_id, predicted_at DESC
	`
	predictions, err := r.queryPredictions(ctx, query, matchIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range predictions {
		latest[p.MatchID] = p
	}
	return latest, nil
}

// GetRecent returns the latest predictions
func (r *PostgresPredictionRepository) GetRecent(ctx context.Context, limit int) ([]*models.StoredPrediction, error) {
	return r.queryPredictions(ctx, predictionSelect+` ORDER BY predicted_at DESC LIMIT $1`, limit)
}

func (r *PostgresPredictionRepository) queryPredictions(ctx context.Context, query string, args ...interface{}) ([]*models.StoredPrediction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.StoredPrediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

func scanPrediction(row pgx.Row) (*models.StoredPrediction, error) {
	p := &models.StoredPrediction{}
	var outcome int16
	var startsAt *time.Time
	err := row.Scan(
		&p.ID, &p.MatchID, &p.HomeTeam, &p.AwayTeam, &p.League, &outcome,
		&p.Label, &p.Price, &p.Probability, &p.Overround, &startsAt, &p.PredictedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Outcome = models.Outcome(outcome)
	if startsAt != nil {
		p.StartsAt = *startsAt
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
