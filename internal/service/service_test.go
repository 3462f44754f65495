package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/match-predictor/internal/datasource"
	"github.com/yourusername/match-predictor/internal/engine"
	"github.com/yourusername/match-predictor/internal/feed"
	"github.com/yourusername/match-predictor/internal/models"
)

// MockFeedSource mocks the live feed
type MockFeedSource struct {
	mock.Mock
}

func (m *MockFeedSource) FetchMatches(ctx context.Context, q datasource.Query) ([]feed.RawMatch, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]feed.RawMatch), args.Error(1)
}

func (m *MockFeedSource) Name() string {
	return "mock"
}

// MockPredictionRepository mocks prediction persistence
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) Insert(ctx context.Context, p *models.StoredPrediction) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPredictionRepository) InsertBatch(ctx context.Context, ps []*models.StoredPrediction) error {
	return m.Called(ctx, ps).Error(0)
}

func (m *MockPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredPrediction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredPrediction), args.Error(1)
}

func (m *MockPredictionRepository) GetByMatchID(ctx context.Context, matchID string) ([]*models.StoredPrediction, error) {
	args := m.Called(ctx, matchID)
	return args.Get(0).([]*models.StoredPrediction), args.Error(1)
}

func (m *MockPredictionRepository) LatestByMatchIDs(ctx context.Context, ids []string) (map[string]*models.StoredPrediction, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*models.StoredPrediction), args.Error(1)
}

func (m *MockPredictionRepository) GetRecent(ctx context.Context, limit int) ([]*models.StoredPrediction, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.StoredPrediction), args.Error(1)
}

// MockMatchHistoryRepository mocks match archiving
type MockMatchHistoryRepository struct {
	mock.Mock
}

func (m *MockMatchHistoryRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockMatchHistoryRepository) InsertBatch(ctx context.Context, matches []*models.FinishedMatch) (int, error) {
	args := m.Called(ctx, matches)
	return args.Int(0), args.Error(1)
}

func (m *MockMatchHistoryRepository) GetByID(ctx context.Context, matchID string) (*models.FinishedMatch, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinishedMatch), args.Error(1)
}

func (m *MockMatchHistoryRepository) GetRecent(ctx context.Context, limit int) ([]*models.FinishedMatch, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.FinishedMatch), args.Error(1)
}

func (m *MockMatchHistoryRepository) GetByTeam(ctx context.Context, team string, limit int) ([]*models.FinishedMatch, error) {
	args := m.Called(ctx, team, limit)
	return args.Get(0).([]*models.FinishedMatch), args.Error(1)
}

const livePayload = `[
	{"I": 10, "O1": "ASEC", "O2": "Africa Sports", "LE": "Ligue 1", "CN": "Côte d'Ivoire", "CE": "Ivory Coast", "S": 1700000000,
	 "E": [{"G": 1, "T": 1, "C": 2.0}, {"G": 1, "T": 2, "C": 3.5}, {"G": 1, "T": 3, "C": 4.0}],
	 "AE": [{"G": 17, "ME": [{"T": 9, "P": 2.5, "C": 1.8}]}]},
	{"I": 11, "O1": "Stella", "O2": "SOA", "CN": "Côte d'Ivoire",
	 "E": [{"G": 1, "T": 1, "C": 3.8}, {"G": 1, "T": 2, "C": 2.9}, {"G": 1, "T": 3, "C": 2.4}]},
	{"I": 12, "O1": "Hafia", "O2": "Horoya", "CN": "Guinée",
	 "E": [{"G": 1, "T": 1, "C": 2.0}]},
	{"I": 13, "O1": "Racing", "O2": "Williamsville", "CN": "Côte d'Ivoire"}
]`

func liveMatches(t *testing.T) []feed.RawMatch {
	t.Helper()
	var matches []feed.RawMatch
	require.NoError(t, json.Unmarshal([]byte(livePayload), &matches))
	return matches
}

func newPredictionService(source *MockFeedSource, repo *MockPredictionRepository) *PredictionService {
	cfg := PredictionConfig{DefaultCountryCode: 225, DefaultCount: 50, Workers: 2}
	if repo == nil {
		return NewPredictionService(source, engine.New(), nil, cfg, nil)
	}
	return NewPredictionService(source, engine.New(), repo, cfg, nil)
}

func TestPredictRequiresCountry(t *testing.T) {
	source := &MockFeedSource{}
	_, err := newPredictionService(source, nil).Predict(context.Background(), Request{Country: "  "})

	assert.ErrorIs(t, err, ErrCountryRequired)
	source.AssertNotCalled(t, "FetchMatches", mock.Anything, mock.Anything)
}

func TestPredictInvalidBand(t *testing.T) {
	source := &MockFeedSource{}
	band := models.Band{MinPrice: 3, MaxPrice: 1}

	_, err := newPredictionService(source, nil).Predict(context.Background(), Request{Country: "ivoire", Band: &band})
	assert.ErrorIs(t, err, models.ErrInvalidBand)
}

func TestPredictFiltersCountryAndRendersVerdicts(t *testing.T) {
	source := &MockFeedSource{}
	source.On("FetchMatches", mock.Anything, datasource.Query{CountryCode: 225, Count: 50}).Return(liveMatches(t), nil)

	results, err := newPredictionService(source, nil).Predict(context.Background(), Request{Country: "Ivoire"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "10", results[0].MatchID)
	assert.Equal(t, "Probable win: ASEC", results[0].Verdict)
	assert.Equal(t, "Ligue 1", results[0].League)
	require.NotNil(t, results[0].StartTime)
	require.NotNil(t, results[0].Bundle.AlternativeBest)
	assert.Equal(t, "Over 2.5 goals", results[0].Bundle.AlternativeBest.Winner.Label)

	assert.Equal(t, "Probable win: SOA", results[1].Verdict)
	assert.Equal(t, "Prediction unavailable", results[2].Verdict)
	source.AssertExpectations(t)
}

func TestPredictUsesRequestQuery(t *testing.T) {
	source := &MockFeedSource{}
	source.On("FetchMatches", mock.Anything, datasource.Query{CountryCode: 96, Count: 10}).Return([]feed.RawMatch{}, nil)

	results, err := newPredictionService(source, nil).Predict(context.Background(), Request{Country: "x", CountryCode: 96, Count: 10})
	require.NoError(t, err)
	assert.Empty(t, results)
	source.AssertExpectations(t)
}

func TestPredictFeedFailure(t *testing.T) {
	source := &MockFeedSource{}
	feedErr := datasource.NewDataSourceError("live_feed", datasource.ErrCodeServerError, "down", nil)
	source.On("FetchMatches", mock.Anything, mock.Anything).Return(nil, feedErr)

	_, err := newPredictionService(source, nil).Predict(context.Background(), Request{Country: "ivoire"})
	require.Error(t, err)

	var dsErr datasource.DataSourceError
	assert.True(t, errors.As(err, &dsErr))
}

func TestPredictStoresFullTimePredictions(t *testing.T) {
	source := &MockFeedSource{}
	source.On("FetchMatches", mock.Anything, mock.Anything).Return(liveMatches(t), nil)

	repo := &MockPredictionRepository{}
	repo.On("LatestByMatchIDs", mock.Anything, []string{"10", "11"}).
		Return(map[string]*models.StoredPrediction{}, nil).Once()
	repo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(ps []*models.StoredPrediction) bool {
		return len(ps) == 2 && ps[0].MatchID == "10" && ps[0].Outcome == models.OutcomeHome && ps[0].ID != uuid.Nil
	})).Return(nil).Once()

	_, err := newPredictionService(source, repo).Predict(context.Background(), Request{Country: "ivoire"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPredictSkipsUnchangedPredictions(t *testing.T) {
	source := &MockFeedSource{}
	source.On("FetchMatches", mock.Anything, mock.Anything).Return(liveMatches(t), nil)

	// match 10 is unchanged, match 11 moved price since the last refresh
	repo := &MockPredictionRepository{}
	repo.On("LatestByMatchIDs", mock.Anything, []string{"10", "11"}).Return(map[string]*models.StoredPrediction{
		"10": {MatchID: "10", Outcome: models.OutcomeHome, Price: 2.0},
		"11": {MatchID: "11", Outcome: models.OutcomeAway, Price: 2.6},
	}, nil)
	repo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(ps []*models.StoredPrediction) bool {
		return len(ps) == 1 && ps[0].MatchID == "11" && ps[0].Price == 2.4
	})).Return(nil).Once()

	svc := newPredictionService(source, repo)
	_, err := svc.Predict(context.Background(), Request{Country: "ivoire"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPredictRefreshWithoutChangesStoresNothing(t *testing.T) {
	source := &MockFeedSource{}
	source.On("FetchMatches", mock.Anything, mock.Anything).Return(liveMatches(t), nil)

	repo := &MockPredictionRepository{}
	repo.On("LatestByMatchIDs", mock.Anything, mock.Anything).Return(map[string]*models.StoredPrediction{
		"10": {MatchID: "10", Outcome: models.OutcomeHome, Price: 2.0},
		"11": {MatchID: "11", Outcome: models.OutcomeAway, Price: 2.4},
	}, nil)

	svc := newPredictionService(source, repo)
	for i := 0; i < 3; i++ {
		_, err := svc.Predict(context.Background(), Request{Country: "ivoire"})
		require.NoError(t, err)
	}
	repo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestPredictStoresAllWhenLatestLookupFails(t *testing.T) {
	source := &MockFeedSource{}
	source.On("FetchMatches", mock.Anything, mock.Anything).Return(liveMatches(t), nil)

	repo := &MockPredictionRepository{}
	repo.On("LatestByMatchIDs", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	repo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(ps []*models.StoredPrediction) bool {
		return len(ps) == 2
	})).Return(nil).Once()

	_, err := newPredictionService(source, repo).Predict(context.Background(), Request{Country: "ivoire"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPredictLogsCacheHits(t *testing.T) {
	source := &MockFeedSource{}
	source.On("FetchMatches", mock.Anything, mock.Anything).Return(liveMatches(t), nil).Once()

	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := PredictionConfig{DefaultCountryCode: 225, DefaultCount: 50, Workers: 2}
	cached := datasource.NewCachedFeedSource(source, time.Minute, nil)
	svc := NewPredictionService(cached, engine.New(), nil, cfg, log)

	for i := 0; i < 2; i++ {
		_, err := svc.Predict(context.Background(), Request{Country: "ivoire"})
		require.NoError(t, err)
	}

	var hits []bool
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var entry map[string]interface{}
		require.NoError(t, dec.Decode(&entry))
		if entry["msg"] == "Feed fetched" {
			hits = append(hits, entry["cached"].(bool))
		}
	}
	assert.Equal(t, []bool{false, true}, hits)
	source.AssertExpectations(t)
}

func TestPredictStorageFailureIsNotFatal(t *testing.T) {
	source := &MockFeedSource{}
	source.On("FetchMatches", mock.Anything, mock.Anything).Return(liveMatches(t), nil)
	repo := &MockPredictionRepository{}
	repo.On("LatestByMatchIDs", mock.Anything, mock.Anything).Return(map[string]*models.StoredPrediction{}, nil)
	repo.On("InsertBatch", mock.Anything, mock.Anything).Return(errors.New("db down"))

	results, err := newPredictionService(source, repo).Predict(context.Background(), Request{Country: "ivoire"})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestMatchOptions(t *testing.T) {
	source := &MockFeedSource{}
	source.On("FetchMatches", mock.Anything, mock.Anything).Return(liveMatches(t), nil)
	svc := newPredictionService(source, nil)

	options, err := svc.MatchOptions(context.Background(), Request{}, "10")
	require.NoError(t, err)
	require.Len(t, options, 4)
	assert.Equal(t, "Win ASEC", options[0].Label)
	assert.Equal(t, "Over 2.5 goals", options[3].Label)

	_, err = svc.MatchOptions(context.Background(), Request{}, "999")
	assert.ErrorIs(t, err, models.ErrMatchNotFound)
}

func TestVerdict(t *testing.T) {
	closed := func(o models.Outcome) *models.PredictionBundle {
		return &models.PredictionBundle{FullTime: &models.ClosedMarketPrediction{
			Winner: models.PredictionCandidate{Outcome: o},
		}}
	}

	assert.Equal(t, "Probable win: A", Verdict("A", "B", closed(models.OutcomeHome)))
	assert.Equal(t, "Probable win: B", Verdict("A", "B", closed(models.OutcomeAway)))
	assert.Equal(t, "Probable draw", Verdict("A", "B", closed(models.OutcomeDraw)))
	assert.Equal(t, "Prediction unavailable", Verdict("A", "B", &models.PredictionBundle{}))
	assert.Equal(t, "Prediction unavailable", Verdict("A", "B", nil))
}

func TestNewStoredPrediction(t *testing.T) {
	start := time.Unix(1700000000, 0).UTC()
	now := time.Now().UTC()
	p := NewStoredPrediction(MatchPrediction{
		MatchID: "1", HomeTeam: "A", AwayTeam: "B", League: "L", StartTime: &start,
		Bundle: &models.PredictionBundle{FullTime: &models.ClosedMarketPrediction{
			Winner:    models.PredictionCandidate{Outcome: models.OutcomeDraw, Label: "Draw", Price: 3.1, ImpliedProbability: 0.31},
			Overround: 0.05,
		}},
	}, now)

	assert.Equal(t, models.OutcomeDraw, p.Outcome)
	assert.Equal(t, start, p.StartsAt)
	assert.Equal(t, now, p.PredictedAt)
	assert.True(t, p.MeetsThreshold(0.3))
}

const finishedPayload = `[
	{"I": 1, "O1": "ASEC", "O2": "SOA", "LE": "Football. Ligue 1", "TN": "Terminé", "S": 1700000000, "SC": {"FS": {"S1": 2, "S2": 1}}},
	{"I": 2, "O1": "Nadal", "O2": "Federer", "LE": "Tennis ATP", "TN": "Fin du match"},
	{"I": 3, "O1": "A", "O2": "B", "LE": "Basketball NBA", "TN": "2nd half"},
	{"I": 4, "O1": "C", "O2": "D", "LE": "Cricket", "TN": "finished", "SC": {"FS": {"S1": "–"}}},
	{"I": 1, "O1": "ASEC", "O2": "SOA", "TN": "Terminé"}
]`

func finishedMatches(t *testing.T) []feed.RawMatch {
	t.Helper()
	var matches []feed.RawMatch
	require.NoError(t, json.Unmarshal([]byte(finishedPayload), &matches))
	return matches
}

func TestArchiveFinished(t *testing.T) {
	source := &MockFeedSource{}
	q := datasource.Query{CountryCode: 96, Count: 50}
	source.On("FetchMatches", mock.Anything, q).Return(finishedMatches(t), nil)

	history := &MockMatchHistoryRepository{}
	history.On("ExistingIDs", mock.Anything, []string{"1", "2", "4"}).Return(map[string]bool{"2": true}, nil)
	history.On("InsertBatch", mock.Anything, mock.MatchedBy(func(ms []*models.FinishedMatch) bool {
		if len(ms) != 2 {
			return false
		}
		first, second := ms[0], ms[1]
		return first.MatchID == "1" && first.Sport == models.SportFootball &&
			*first.HomeScore == 2 && *first.AwayScore == 1 &&
			second.MatchID == "4" && second.Sport == models.SportUnknown && second.HomeScore == nil
	})).Return(2, nil)

	archived, err := NewHistoryService(source, history, nil).ArchiveFinished(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, archived)
	history.AssertExpectations(t)
}

func TestArchiveFinishedNothingFinished(t *testing.T) {
	source := &MockFeedSource{}
	source.On("FetchMatches", mock.Anything, mock.Anything).Return(liveMatches(t), nil)
	history := &MockMatchHistoryRepository{}

	archived, err := NewHistoryService(source, history, nil).ArchiveFinished(context.Background(), datasource.Query{})
	require.NoError(t, err)
	assert.Zero(t, archived)
	history.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestArchiveFinishedErrors(t *testing.T) {
	source := &MockFeedSource{}
	source.On("FetchMatches", mock.Anything, mock.Anything).Return(nil, errors.New("offline")).Once()
	history := &MockMatchHistoryRepository{}
	svc := NewHistoryService(source, history, nil)

	_, err := svc.ArchiveFinished(context.Background(), datasource.Query{})
	assert.Error(t, err)

	source.On("FetchMatches", mock.Anything, mock.Anything).Return(finishedMatches(t), nil)
	history.On("ExistingIDs", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	_, err = svc.ArchiveFinished(context.Background(), datasource.Query{})
	assert.Error(t, err)
}

func TestToFinishedMatchLeagueFallback(t *testing.T) {
	var matches []feed.RawMatch
	require.NoError(t, json.Unmarshal([]byte(`[
		{"I": 5, "O1": "A", "O2": "B", "L": "Football. Ligue 2", "TN": "Terminé"},
		{"I": 6, "O1": "C", "O2": "D", "L": "Ligue 2", "LE": "Football. League Two", "TN": "Terminé"}
	]`), &matches))

	first := ToFinishedMatch(matches[0])
	assert.Equal(t, "Football. Ligue 2", first.League)
	assert.Equal(t, models.SportFootball, first.Sport)
	assert.Equal(t, "Football. League Two", ToFinishedMatch(matches[1]).League)
}

func TestDetectSport(t *testing.T) {
	assert.Equal(t, models.SportFootball, DetectSport("FOOTBALL. Premier League"))
	assert.Equal(t, models.SportBasketball, DetectSport("Basketball. NBA"))
	assert.Equal(t, models.SportTennis, DetectSport("Tennis. WTA"))
	assert.Equal(t, models.SportUnknown, DetectSport("Hockey"))
}
