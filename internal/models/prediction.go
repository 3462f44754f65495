package models

import (
	"time"

	"github.com/google/uuid"
)

// PredictionCandidate is a classified quote with its implied probability attached.
// Normalized is true when the probability was de-vigged within a closed market;
// raw 1/price values from standalone quotes must not be summed across quotes.
type PredictionCandidate struct {
	Family             BetFamily `json:"family"`
	Label              string    `json:"label"`
	Price              float64   `json:"price"`
	ImpliedProbability float64   `json:"implied_probability"`
	Normalized         bool      `json:"normalized"`
	Outcome            Outcome   `json:"outcome,omitempty"`
	Quote              Quote     `json:"quote"`
}

// ClosedMarketPrediction is the best outcome of a 1X2 market together with
// every competing outcome ranked by normalized probability.
type ClosedMarketPrediction struct {
	Winner    PredictionCandidate   `json:"winner"`
	Ranked    []PredictionCandidate `json:"ranked"`
	Overround float64               `json:"overround"`
}

// AlternativePrediction is the most likely non-1X2 quote inside a price band.
type AlternativePrediction struct {
	Winner    PredictionCandidate   `json:"winner"`
	Survivors []PredictionCandidate `json:"survivors"`
}

// PredictionBundle is everything the engine derives for one match.
// Nil sub-predictions mean the market was absent from the feed.
type PredictionBundle struct {
	FullTime                 *ClosedMarketPrediction `json:"full_time"`
	HalfTime                 *ClosedMarketPrediction `json:"half_time"`
	AlternativeBest          *AlternativePrediction  `json:"alternative_best"`
	AllFullTimeProbabilities []PredictionCandidate   `json:"all_full_time_probabilities"`
	Options                  []LabeledQuote          `json:"options"`
}

// HasFullTime reports whether a full-time prediction is available.
func (b *PredictionBundle) HasFullTime() bool {
	return b != nil && b.FullTime != nil
}

// StoredPrediction is the persisted form of an issued full-time prediction.
type StoredPrediction struct {
	ID          uuid.UUID `db:"id" json:"id"`
	MatchID     string    `db:"match_id" json:"match_id"`
	HomeTeam    string    `db:"home_team" json:"home_team"`
	AwayTeam    string    `db:"away_team" json:"away_team"`
	League      string    `db:"league" json:"league"`
	Outcome     Outcome   `db:"outcome" json:"outcome"`
	Label       string    `db:"label" json:"label"`
	Price       float64   `db:"price" json:"price"`
	Probability float64   `db:"probability" json:"probability"`
	Overround   float64   `db:"overround" json:"overround"`
	StartsAt    time.Time `db:"starts_at" json:"starts_at"`
	PredictedAt time.Time `db:"predicted_at" json:"predicted_at"`
}

// MeetsThreshold checks if the predicted probability reaches the given threshold.
func (p *StoredPrediction) MeetsThreshold(threshold float64) bool {
	return p.Probability >= threshold
}
