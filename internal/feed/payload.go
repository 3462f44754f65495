// Package feed decodes the bookmaker LiveFeed payload and flattens its two quote
// containers into typed quotes.
package feed

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const unknownTeam = "Unknown"

// Envelope is the top-level LiveFeed response.
type Envelope struct {
	Success bool       `json:"Success"`
	Error   string     `json:"Error"`
	Value   []RawMatch `json:"Value"`
}

// RawQuote is one quote object as sent by the feed.
type RawQuote struct {
	G Number `json:"G"` // group code
	T Number `json:"T"` // outcome type
	P Number `json:"P"` // parameter (handicap, goal line, score)
	C Number `json:"C"` // decimal price
}

// RawGroup is an extended market group holding nested quotes.
type RawGroup struct {
	G  Number    `json:"G"`
	ME RawQuotes `json:"ME"`
}

// RawScore carries the full-time score of a match.
type RawScore struct {
	FS struct {
		S1 Number `json:"S1"`
		S2 Number `json:"S2"`
	} `json:"FS"`
}

// RawMatch is one match record of the feed. Unknown keys are ignored.
type RawMatch struct {
	I  Number    `json:"I"`
	O1 string    `json:"O1"`
	O2 string    `json:"O2"`
	L  string    `json:"L"`
	LE string    `json:"LE"`
	CN string    `json:"CN"`
	CE string    `json:"CE"`
	S  Number    `json:"S"`
	TN string    `json:"TN"`
	SC *RawScore `json:"SC,omitempty"`
	E  RawQuotes `json:"E"`
	AE RawGroups `json:"AE"`
}

// RawQuotes tolerates a non-array value and skips elements that are not objects.
type RawQuotes []RawQuote

// UnmarshalJSON implements json.Unmarshaler.
func (q *RawQuotes) UnmarshalJSON(data []byte) error {
	*q = nil
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make(RawQuotes, 0, len(items))
	for _, item := range items {
		if !isObject(item) {
			continue
		}
		var rq RawQuote
		if err := json.Unmarshal(item, &rq); err != nil {
			continue
		}
		out = append(out, rq)
	}
	*q = out
	return nil
}

// RawGroups tolerates a non-array value and skips elements that are not objects.
type RawGroups []RawGroup

// UnmarshalJSON implements json.Unmarshaler.
func (g *RawGroups) UnmarshalJSON(data []byte) error {
	*g = nil
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make(RawGroups, 0, len(items))
	for _, item := range items {
		if !isObject(item) {
			continue
		}
		var rg RawGroup
		if err := json.Unmarshal(item, &rg); err != nil {
			continue
		}
		out = append(out, rg)
	}
	*g = out
	return nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// ID returns the feed match identifier, or "" when absent.
func (m RawMatch) ID() string {
	if id, ok := m.I.Int64(); ok {
		return strconv.FormatInt(id, 10)
	}
	return ""
}

// HomeTeam returns the home team name with a placeholder for missing names.
func (m RawMatch) HomeTeam() string {
	return teamName(m.O1)
}

// AwayTeam returns the away team name with a placeholder for missing names.
func (m RawMatch) AwayTeam() string {
	return teamName(m.O2)
}

func teamName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return unknownTeam
}

// League prefers the English league name.
func (m RawMatch) League() string {
	if m.LE != "" {
		return m.LE
	}
	return m.L
}

// StartTime returns the kick-off time, or nil when the feed omits it.
func (m RawMatch) StartTime() *time.Time {
	ts, ok := m.S.Int64()
	if !ok || ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

// IsFinished reports whether the status text marks the match as over.
func (m RawMatch) IsFinished() bool {
	status := m.TN
	return strings.Contains(status, "Terminé") ||
		strings.Contains(status, "Fin") ||
		strings.EqualFold(status, "finished")
}

// FinalScore returns the full-time score when both sides are numeric.
func (m RawMatch) FinalScore() (home, away *int) {
	if m.SC == nil {
		return nil, nil
	}
	if s1, ok := m.SC.FS.S1.Int(); ok {
		home = &s1
	}
	if s2, ok := m.SC.FS.S2.Int(); ok {
		away = &s2
	}
	return home, away
}

// MatchesCountry does a case-insensitive substring match on both country names.
func (m RawMatch) MatchesCountry(country string) bool {
	needle := strings.ToLower(strings.TrimSpace(country))
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(m.CN), needle) ||
		strings.Contains(strings.ToLower(m.CE), needle)
}
