// Package selector picks the most likely prediction out of a set of candidates.
package selector

import (
	"math"
	"sort"

	"github.com/yourusername/match-predictor/internal/models"
	"github.com/yourusername/match-predictor/internal/probability"
)

// Tolerance under which two probabilities are considered equal.
const Tolerance = 1e-9

// SelectClosed picks the candidate with the highest normalized probability in
// a closed market. Ties within Tolerance go to Home, then Draw, then Away.
// Ranked lists every candidate from most to least likely. An empty market
// yields nil, the explicit "no prediction" value.
func SelectClosed(cands []models.PredictionCandidate, overround float64) *models.ClosedMarketPrediction {
	if len(cands) == 0 {
		return nil
	}

	ranked := make([]models.PredictionCandidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranksBefore(ranked[i], ranked[j])
	})

	winner := cands[0]
	for _, c := range cands[1:] {
		if ranksBefore(c, winner) {
			winner = c
		}
	}

	return &models.ClosedMarketPrediction{
		Winner:    winner,
		Ranked:    ranked,
		Overround: overround,
	}
}

func ranksBefore(a, b models.PredictionCandidate) bool {
	if math.Abs(a.ImpliedProbability-b.ImpliedProbability) > Tolerance {
		return a.ImpliedProbability > b.ImpliedProbability
	}
	return a.Outcome.Rank() < b.Outcome.Rank()
}

// SelectBanded keeps candidates whose price lies inside the band and whose raw
// implied probability reaches the band's floor, then picks the lowest price.
// Equal prices keep the earliest candidate. A band that cannot come from valid
// input is an error; no survivor is a nil result, not an error.
func SelectBanded(cands []models.PredictionCandidate, band models.Band) (*models.AlternativePrediction, error) {
	if err := band.Validate(); err != nil {
		return nil, err
	}

	var survivors []models.PredictionCandidate
	for _, c := range cands {
		if !band.Contains(c.Price) {
			continue
		}
		if probability.Implied(c.Price) < band.ProbabilityFloor {
			continue
		}
		survivors = append(survivors, c)
	}
	if len(survivors) == 0 {
		return nil, nil
	}

	winner := survivors[0]
	for _, c := range survivors[1:] {
		if c.Price < winner.Price {
			winner = c
		}
	}

	return &models.AlternativePrediction{
		Winner:    winner,
		Survivors: survivors,
	}, nil
}
