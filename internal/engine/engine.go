// Package engine turns one match's raw feed payload into a prediction bundle.
package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/match-predictor/internal/classifier"
	"github.com/yourusername/match-predictor/internal/feed"
	"github.com/yourusername/match-predictor/internal/models"
	"github.com/yourusername/match-predictor/internal/probability"
	"github.com/yourusername/match-predictor/internal/selector"
)

const defaultWorkers = 4

// Engine evaluates matches. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	classifier *classifier.Classifier
	band       models.Band
}

// Option configures an Engine.
type Option func(*Engine)

// WithBand sets the default price band used for alternative markets.
func WithBand(band models.Band) Option {
	return func(e *Engine) {
		e.band = band
	}
}

// WithTable replaces the classification table.
func WithTable(table classifier.Table) Option {
	return func(e *Engine) {
		e.classifier = classifier.New(table)
	}
}

// New creates an engine with the default table and band unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		classifier: classifier.Default(),
		band:       models.DefaultBand(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Band returns the engine's default band.
func (e *Engine) Band() models.Band {
	return e.band
}

// Decide evaluates a match with the engine's default band.
func (e *Engine) Decide(m feed.RawMatch) (*models.PredictionBundle, error) {
	return e.DecideWithBand(m, e.band)
}

// DecideWithBand evaluates a match using the given band for alternative
// markets. Dirty feed data never fails; only an invalid band is an error.
func (e *Engine) DecideWithBand(m feed.RawMatch, band models.Band) (*models.PredictionBundle, error) {
	if err := band.Validate(); err != nil {
		return nil, err
	}

	quotes := feed.Normalize(m)
	labeled := e.classifier.ClassifyAll(quotes, m.HomeTeam(), m.AwayTeam())

	var fullTime, halfTime, rest []models.LabeledQuote
	for _, lq := range labeled {
		switch lq.Group {
		case models.GroupFullTimeResult:
			fullTime = append(fullTime, lq)
		case models.GroupHalfTimeResult:
			halfTime = append(halfTime, lq)
		default:
			rest = append(rest, lq)
		}
	}

	bundle := &models.PredictionBundle{
		FullTime: e.closedMarket(fullTime),
		HalfTime: e.closedMarket(halfTime),
		Options:  labeled,
	}
	if bundle.FullTime != nil {
		bundle.AllFullTimeProbabilities = bundle.FullTime.Ranked
	}

	alternative, err := selector.SelectBanded(rawCandidates(rest), band)
	if err != nil {
		return nil, err
	}
	bundle.AlternativeBest = alternative

	return bundle, nil
}

// closedMarket keeps the first quote per 1X2 side, de-vigs the set and picks
// the winner. Quotes without a 1X2 side stay out of the closed set.
func (e *Engine) closedMarket(quotes []models.LabeledQuote) *models.ClosedMarketPrediction {
	seen := make(map[models.Outcome]bool, 3)
	var members []models.LabeledQuote
	var outcomes []models.Outcome
	for _, lq := range quotes {
		o := e.classifier.Outcome(lq.Quote)
		if o == models.OutcomeNone || seen[o] {
			continue
		}
		seen[o] = true
		members = append(members, lq)
		outcomes = append(outcomes, o)
	}
	if len(members) == 0 {
		return nil
	}

	prices := make([]float64, len(members))
	for i, lq := range members {
		prices[i] = lq.Price
	}
	probs, overround := probability.NormalizeClosed(prices)
	if probs == nil {
		return nil
	}

	cands := make([]models.PredictionCandidate, len(members))
	for i, lq := range members {
		cands[i] = models.PredictionCandidate{
			Family:             lq.Family,
			Label:              lq.Label,
			Price:              lq.Price,
			ImpliedProbability: probs[i],
			Normalized:         true,
			Outcome:            outcomes[i],
			Quote:              lq.Quote,
		}
	}
	return selector.SelectClosed(cands, overround)
}

func rawCandidates(quotes []models.LabeledQuote) []models.PredictionCandidate {
	cands := make([]models.PredictionCandidate, 0, len(quotes))
	for _, lq := range quotes {
		cands = append(cands, models.PredictionCandidate{
			Family:             lq.Family,
			Label:              lq.Label,
			Price:              lq.Price,
			ImpliedProbability: probability.Implied(lq.Price),
			Quote:              lq.Quote,
		})
	}
	return cands
}

// DecideAll evaluates matches concurrently with at most workers in flight and
// returns bundles in input order. It stops early on context cancellation or an
// invalid band.
func (e *Engine) DecideAll(ctx context.Context, matches []feed.RawMatch, band models.Band, workers int) ([]*models.PredictionBundle, error) {
	if err := band.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make([]*models.PredictionBundle, len(matches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range matches {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			bundle, err := e.DecideWithBand(matches[i], band)
			if err != nil {
				return err
			}
			results[i] = bundle
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
