package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yourusername/match-predictor/internal/models"
)

// Prediction-specific metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of match predictions by market and outcome",
	}, []string{"market", "outcome"})

	AlternativeOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alternative_outcomes_total",
		Help:      "Banded alternative selections by family, or none",
	}, []string{"family"})

	PredictionProbability = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_probability",
		Help:      "Normalized probability of the winning 1X2 outcome",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	}, []string{"market"})

	MarketOverround = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "market_overround",
		Help:      "Bookmaker overround of full-time 1X2 markets",
		Buckets:   []float64{0, 0.02, 0.04, 0.06, 0.08, 0.1, 0.15, 0.2, 0.3},
	})
)

// RecordBundle records the selections of one prediction bundle.
func RecordBundle(bundle *models.PredictionBundle) {
	if bundle == nil {
		return
	}
	recordClosed("full_time", bundle.FullTime)
	recordClosed("half_time", bundle.HalfTime)
	if bundle.FullTime != nil {
		MarketOverround.Observe(bundle.FullTime.Overround)
	}

	family := "none"
	if bundle.AlternativeBest != nil {
		family = bundle.AlternativeBest.Winner.Family.String()
	}
	AlternativeOutcomesTotal.WithLabelValues(family).Inc()
}

func recordClosed(market string, p *models.ClosedMarketPrediction) {
	if p == nil {
		PredictionsTotal.WithLabelValues(market, "unavailable").Inc()
		return
	}
	PredictionsTotal.WithLabelValues(market, p.Winner.Outcome.String()).Inc()
	PredictionProbability.WithLabelValues(market).Observe(p.Winner.ImpliedProbability)
}
