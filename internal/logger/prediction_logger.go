package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-predictor/internal/models"
)

// PredictionLogger provides dedicated logging for prediction operations.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogBundle logs the outcome of evaluating one match.
func (pl *PredictionLogger) LogBundle(matchID, homeTeam, awayTeam string, bundle *models.PredictionBundle) {
	fields := logrus.Fields{
		"match_id":  matchID,
		"home_team": homeTeam,
		"away_team": awayTeam,
	}
	if bundle == nil {
		pl.WithFields(fields).Debug("No prediction bundle produced")
		return
	}

	fields["options"] = len(bundle.Options)
	if bundle.FullTime != nil {
		fields["full_time_winner"] = bundle.FullTime.Winner.Label
		fields["full_time_probability"] = bundle.FullTime.Winner.ImpliedProbability
		fields["overround"] = bundle.FullTime.Overround
	}
	if bundle.HalfTime != nil {
		fields["half_time_winner"] = bundle.HalfTime.Winner.Label
	}
	if bundle.AlternativeBest != nil {
		fields["alternative_best"] = bundle.AlternativeBest.Winner.Label
		fields["alternative_price"] = bundle.AlternativeBest.Winner.Price
	}
	pl.WithFields(fields).Debug("Match evaluated")
}

// LogFeedFetch logs a completed feed request.
func (pl *PredictionLogger) LogFeedFetch(countryCode, count, matches int, cached bool, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"country_code": countryCode,
		"count":        count,
		"matches":      matches,
		"cached":       cached,
		"duration_ms":  duration.Milliseconds(),
	}).Info("Feed fetched")
}

// LogFeedError logs a failed feed request.
func (pl *PredictionLogger) LogFeedError(countryCode int, err error) {
	pl.WithFields(logrus.Fields{
		"country_code": countryCode,
		"error":        err.Error(),
	}).Error("Feed fetch failed")
}

// LogPredictionRun logs the summary of a prediction request.
func (pl *PredictionLogger) LogPredictionRun(country string, evaluated, predicted int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"country":     country,
		"evaluated":   evaluated,
		"predicted":   predicted,
		"duration_ms": duration.Milliseconds(),
	}).Info("Prediction run completed")
}

// LogArchive logs the result of an archive run.
func (pl *PredictionLogger) LogArchive(finished, skipped, archived int) {
	pl.WithFields(logrus.Fields{
		"finished": finished,
		"skipped":  skipped,
		"archived": archived,
	}).Info("Finished matches archived")
}
