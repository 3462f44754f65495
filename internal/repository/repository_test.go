package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/match-predictor/internal/database"
	"github.com/yourusername/match-predictor/internal/models"
)

func intPtr(v int) *int { return &v }

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestMatchHistoryRepositoryBatch(t *testing.T) {
	db := database.SetupTestDB(t)
	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	prefix := uuid.NewString()[:8]
	started := time.Now().UTC().Truncate(time.Second)
	matches := []*models.FinishedMatch{
		{MatchID: prefix + "-1", HomeTeam: "ASEC", AwayTeam: "Africa", HomeScore: intPtr(2), AwayScore: intPtr(0),
			Sport: models.SportFootball, League: "Ligue 1", StartedAt: &started, Status: "Terminé"},
		{MatchID: prefix + "-2", HomeTeam: "Stella", AwayTeam: "ASEC", Sport: models.SportUnknown},
	}

	inserted, err := repos.MatchHistory.InsertBatch(ctx, matches)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	inserted, err = repos.MatchHistory.InsertBatch(ctx, matches)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	existing, err := repos.MatchHistory.ExistingIDs(ctx, []string{prefix + "-1", prefix + "-3"})
	require.NoError(t, err)
	assert.True(t, existing[prefix+"-1"])
	assert.False(t, existing[prefix+"-3"])

	got, err := repos.MatchHistory.GetByID(ctx, prefix+"-1")
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeHome, got.Winner())

	_, err = repos.MatchHistory.GetByID(ctx, prefix+"-missing")
	assert.ErrorIs(t, err, models.ErrMatchNotFound)

	byTeam, err := repos.MatchHistory.GetByTeam(ctx, "ASEC", 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(byTeam), 2)
}

func TestMatchHistoryRepositoryRejectsInvalidMatch(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := NewPostgresMatchHistoryRepository(db)

	_, err := repo.InsertBatch(context.Background(), []*models.FinishedMatch{{MatchID: "x"}})
	assert.ErrorIs(t, err, models.ErrInvalidMatch)
}

func TestPredictionRepository(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := NewPostgresPredictionRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	matchID := uuid.NewString()
	p := &models.StoredPrediction{
		MatchID: matchID, HomeTeam: "Lyon", AwayTeam: "Nice", League: "Ligue 1",
		Outcome: models.OutcomeHome, Label: "Win Lyon", Price: 2.0, Probability: 0.4828, Overround: 0.0357,
		PredictedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, repo.Insert(ctx, p))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.ErrorIs(t, repo.Insert(ctx, p), models.ErrDuplicateKey)

	require.NoError(t, repo.InsertBatch(ctx, []*models.StoredPrediction{{
		MatchID: matchID, HomeTeam: "Lyon", AwayTeam: "Nice", Outcome: models.OutcomeDraw,
		Label: "Draw", Price: 3.5, Probability: 0.27, PredictedAt: time.Now().UTC(),
	}}))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeHome, got.Outcome)
	assert.True(t, got.StartsAt.IsZero())

	all, err := repo.GetByMatchID(ctx, matchID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	latest, err := repo.LatestByMatchIDs(ctx, []string{matchID, uuid.NewString()})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, models.OutcomeDraw, latest[matchID].Outcome)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
