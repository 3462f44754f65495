package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-predictor/internal/models"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogPredictionStored records a persisted prediction.
func (al *AuditLogger) LogPredictionStored(p *models.StoredPrediction) {
	al.WithFields(logrus.Fields{
		"prediction_id": p.ID.String(),
		"match_id":      p.MatchID,
		"outcome":       p.Outcome.String(),
		"label":         p.Label,
		"price":         p.Price,
		"probability":   p.Probability,
		"predicted_at":  p.PredictedAt.Unix(),
	}).Info("Prediction stored")
}

// LogMatchArchived records an archived finished match.
func (al *AuditLogger) LogMatchArchived(m *models.FinishedMatch) {
	fields := logrus.Fields{
		"match_id":  m.MatchID,
		"home_team": m.HomeTeam,
		"away_team": m.AwayTeam,
		"sport":     m.Sport,
	}
	if m.HomeScore != nil && m.AwayScore != nil {
		fields["home_score"] = *m.HomeScore
		fields["away_score"] = *m.AwayScore
	}
	al.WithFields(fields).Info("Match archived")
}

// LogConfigurationChange records a runtime configuration change.
func (al *AuditLogger) LogConfigurationChange(key string, oldValue, newValue interface{}) {
	al.WithFields(logrus.Fields{
		"key":       key,
		"old_value": oldValue,
		"new_value": newValue,
	}).Warn("Configuration changed")
}
