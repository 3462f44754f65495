// Package service orchestrates feed fetching, match evaluation and persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-predictor/internal/datasource"
	"github.com/yourusername/match-predictor/internal/engine"
	"github.com/yourusername/match-predictor/internal/feed"
	"github.com/yourusername/match-predictor/internal/logger"
	"github.com/yourusername/match-predictor/internal/metrics"
	"github.com/yourusername/match-predictor/internal/models"
	"github.com/yourusername/match-predictor/internal/repository"
)

// ErrCountryRequired is returned when a prediction request names no country
var ErrCountryRequired = errors.New("country is required")

const (
	verdictDraw        = "Probable draw"
	verdictUnavailable = "Prediction unavailable"
)

// Request selects which live matches to predict
type Request struct {
	Country     string
	CountryCode int
	Count       int
	Band        *models.Band
}

// MatchPrediction is the prediction for one live match
type MatchPrediction struct {
	MatchID   string                   `json:"match_id"`
	League    string                   `json:"league"`
	HomeTeam  string                   `json:"home_team"`
	AwayTeam  string                   `json:"away_team"`
	StartTime *time.Time               `json:"start_time"`
	Verdict   string                   `json:"verdict"`
	Bundle    *models.PredictionBundle `json:"bundle"`
}

// PredictionConfig holds request defaults
type PredictionConfig struct {
	DefaultCountryCode int
	DefaultCount       int
	Workers            int
}

// PredictionService turns live feed matches into predictions
type PredictionService struct {
	source      datasource.FeedSource
	engine      *engine.Engine
	predictions repository.PredictionRepository
	cfg         PredictionConfig
	logger      *logger.PredictionLogger
	audit       *logger.AuditLogger
}

// NewPredictionService creates a prediction service. predictions may be nil to
// disable persistence.
func NewPredictionService(
	source datasource.FeedSource,
	eng *engine.Engine,
	predictions repository.PredictionRepository,
	cfg PredictionConfig,
	log *logrus.Logger,
) *PredictionService {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &PredictionService{
		source:      source,
		engine:      eng,
		predictions: predictions,
		cfg:         cfg,
		logger:      logger.NewPredictionLogger(log),
		audit:       logger.NewAuditLogger(log),
	}
}

// Predict fetches the live feed, keeps the requested country's matches and
// evaluates each of them.
func (s *PredictionService) Predict(ctx context.Context, req Request) ([]MatchPrediction, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictionRun(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(req.Country) == "" {
		return nil, ErrCountryRequired
	}
	band := s.engine.Band()
	if req.Band != nil {
		band = *req.Band
	}
	if err := band.Validate(); err != nil {
		return nil, err
	}

	matches, err := s.fetchCountry(ctx, req)
	if err != nil {
		return nil, err
	}

	bundles, err := s.engine.DecideAll(ctx, matches, band, s.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate matches: %w", err)
	}

	results := make([]MatchPrediction, len(matches))
	predicted := 0
	for i, m := range matches {
		bundle := bundles[i]
		metrics.RecordBundle(bundle)
		s.logger.LogBundle(m.ID(), m.HomeTeam(), m.AwayTeam(), bundle)
		if bundle.HasFullTime() {
			predicted++
		}

		results[i] = MatchPrediction{
			MatchID:   m.ID(),
			League:    m.League(),
			HomeTeam:  m.HomeTeam(),
			AwayTeam:  m.AwayTeam(),
			StartTime: m.StartTime(),
			Verdict:   Verdict(m.HomeTeam(), m.AwayTeam(), bundle),
			Bundle:    bundle,
		}
	}

	s.store(ctx, results)
	s.logger.LogPredictionRun(req.Country, len(matches), predicted, time.Since(start))
	return results, nil
}

// MatchOptions returns every labeled quote of one live match
func (s *PredictionService) MatchOptions(ctx context.Context, req Request, matchID string) ([]models.LabeledQuote, error) {
	matches, err := s.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if m.ID() != matchID {
			continue
		}
		bundle, err := s.engine.Decide(m)
		if err != nil {
			return nil, err
		}
		return bundle.Options, nil
	}
	return nil, models.ErrMatchNotFound
}

func (s *PredictionService) query(req Request) datasource.Query {
	q := datasource.Query{CountryCode: req.CountryCode, Count: req.Count}
	if q.CountryCode <= 0 {
		q.CountryCode = s.cfg.DefaultCountryCode
	}
	if q.Count <= 0 {
		q.Count = s.cfg.DefaultCount
	}
	return q
}

func (s *PredictionService) fetch(ctx context.Context, req Request) ([]feed.RawMatch, error) {
	q := s.query(req)
	start := time.Now()

	var (
		matches []feed.RawMatch
		cached  bool
		err     error
	)
	if cs, ok := s.source.(datasource.CacheAwareSource); ok {
		matches, cached, err = cs.FetchMatchesCached(ctx, q)
	} else {
		matches, err = s.source.FetchMatches(ctx, q)
	}
	if err != nil {
		s.logger.LogFeedError(q.CountryCode, err)
		return nil, fmt.Errorf("failed to fetch live feed: %w", err)
	}
	s.logger.LogFeedFetch(q.CountryCode, q.Count, len(matches), cached, time.Since(start))
	return matches, nil
}

func (s *PredictionService) fetchCountry(ctx context.Context, req Request) ([]feed.RawMatch, error) {
	matches, err := s.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	filtered := matches[:0:0]
	for _, m := range matches {
		if m.MatchesCountry(req.Country) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// store persists issued full-time predictions; failures are logged, not returned
func (s *PredictionService) store(ctx context.Context, results []MatchPrediction) {
	if s.predictions == nil {
		return
	}

	now := time.Now().UTC()
	var batch []*models.StoredPrediction
	for _, r := range results {
		if !r.Bundle.HasFullTime() {
			continue
		}
		batch = append(batch, NewStoredPrediction(r, now))
	}
	batch = s.dropUnchanged(ctx, batch)
	if len(batch) == 0 {
		return
	}

	if err := s.predictions.InsertBatch(ctx, batch); err != nil {
		s.logger.WithError(err).Error("Failed to store predictions")
		return
	}
	for _, p := range batch {
		s.audit.LogPredictionStored(p)
	}
}

// dropUnchanged removes predictions whose outcome and price match the newest stored row for the match
func (s *PredictionService) dropUnchanged(ctx context.Context, batch []*models.StoredPrediction) []*models.StoredPrediction {
	if len(batch) == 0 {
		return batch
	}
	ids := make([]string, len(batch))
	for i, p := range batch {
		ids[i] = p.MatchID
	}
	latest, err := s.predictions.LatestByMatchIDs(ctx, ids)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load latest predictions, storing all")
		return batch
	}

	fresh := batch[:0:0]
	for _, p := range batch {
		if prev, ok := latest[p.MatchID]; ok && prev.Outcome == p.Outcome && prev.Price == p.Price {
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh
}

// NewStoredPrediction converts a full-time prediction to its persisted form
func NewStoredPrediction(r MatchPrediction, predictedAt time.Time) *models.StoredPrediction {
	winner := r.Bundle.FullTime.Winner
	p := &models.StoredPrediction{
		ID:          uuid.New(),
		MatchID:     r.MatchID,
		HomeTeam:    r.HomeTeam,
		AwayTeam:    r.AwayTeam,
		League:      r.League,
		Outcome:     winner.Outcome,
		Label:       winner.Label,
		Price:       winner.Price,
		Probability: winner.ImpliedProbability,
		Overround:   r.Bundle.FullTime.Overround,
		PredictedAt: predictedAt,
	}
	if r.StartTime != nil {
		p.StartsAt = *r.StartTime
	}
	return p
}

// Verdict renders the full-time prediction as a sentence
func Verdict(home, away string, bundle *models.PredictionBundle) string {
	if !bundle.HasFullTime() {
		return verdictUnavailable
	}
	switch bundle.FullTime.Winner.Outcome {
	case models.OutcomeHome:
		return "Probable win: " + home
	case models.OutcomeAway:
		return "Probable win: " + away
	case models.OutcomeDraw:
		return verdictDraw
	default:
		return verdictUnavailable
	}
}
