package models

import "time"

// Sport names recorded for archived matches.
const (
	SportFootball   = "Football"
	SportBasketball = "Basketball"
	SportTennis     = "Tennis"
	SportUnknown    = "?"
)

// FinishedMatch is a completed match archived for later form statistics.
type FinishedMatch struct {
	MatchID   string     `db:"match_id" json:"match_id" validate:"required"`
	HomeTeam  string     `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam  string     `db:"away_team" json:"away_team" validate:"required"`
	HomeScore *int       `db:"home_score" json:"home_score"`
	AwayScore *int       `db:"away_score" json:"away_score"`
	Sport     string     `db:"sport" json:"sport"`
	League    string     `db:"league" json:"league"`
	StartedAt *time.Time `db:"started_at" json:"started_at"`
	Status    string     `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Validate checks the fields every archived match must carry.
func (m *FinishedMatch) Validate() error {
	if m.MatchID == "" || m.HomeTeam == "" || m.AwayTeam == "" {
		return ErrInvalidMatch
	}
	return nil
}

// Winner returns the winning side, or OutcomeNone when the score is unknown.
func (m *FinishedMatch) Winner() Outcome {
	if m.HomeScore == nil || m.AwayScore == nil {
		return OutcomeNone
	}
	switch {
	case *m.HomeScore > *m.AwayScore:
		return OutcomeHome
	case *m.HomeScore < *m.AwayScore:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}
