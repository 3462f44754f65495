// Package classifier maps feed quotes to bet families and human-readable labels.
package classifier

import (
	"strconv"
	"strings"

	"github.com/yourusername/match-predictor/internal/models"
)

const specialBetLabel = "Special bet (group={group}, type={type})"

// Classifier labels quotes using a classification table. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	table Table
}

// New creates a classifier over the given table.
func New(table Table) *Classifier {
	return &Classifier{table: table}
}

// Default creates a classifier over DefaultTable.
func Default() *Classifier {
	return New(DefaultTable())
}

// Classify returns the quote's family and rendered label. Unknown codes never
// fail: they degrade to FamilyUnclassified with a generic label.
func (c *Classifier) Classify(q models.Quote, home, away string) (models.BetFamily, string) {
	rule, ok := c.table[q.Group]
	if !ok {
		return models.FamilyUnclassified, render(Label{Text: specialBetLabel}, q, home, away)
	}

	label, ok := rule.Labels[q.OutcomeType]
	if !ok {
		if rule.Any == nil {
			return rule.Family, render(Label{Text: rule.Name + " (type={type})"}, q, home, away)
		}
		label = *rule.Any
	}
	return rule.Family, rule.Prefix + render(label, q, home, away)
}

// Outcome returns the 1X2 side of a result-market quote, or OutcomeNone.
func (c *Classifier) Outcome(q models.Quote) models.Outcome {
	rule, ok := c.table[q.Group]
	if !ok || !rule.Family.IsResultMarket() {
		return models.OutcomeNone
	}
	switch o := models.Outcome(q.OutcomeType); o {
	case models.OutcomeHome, models.OutcomeDraw, models.OutcomeAway:
		return o
	default:
		return models.OutcomeNone
	}
}

// ClassifyAll labels every quote, preserving order.
func (c *Classifier) ClassifyAll(quotes []models.Quote, home, away string) []models.LabeledQuote {
	out := make([]models.LabeledQuote, 0, len(quotes))
	for _, q := range quotes {
		family, label := c.Classify(q, home, away)
		out = append(out, models.LabeledQuote{Quote: q, Family: family, Label: label})
	}
	return out
}

func render(label Label, q models.Quote, home, away string) string {
	text := label.Text
	if q.Param == nil && strings.Contains(text, "{param") {
		text = label.Generic
	}

	pairs := []string{
		"{home}", home,
		"{away}", away,
		"{group}", strconv.Itoa(q.Group),
		"{type}", strconv.Itoa(q.OutcomeType),
	}
	if q.Param != nil {
		pairs = append(pairs,
			"{param:+}", FormatSigned(*q.Param),
			"{param}", FormatUnsigned(*q.Param),
		)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
