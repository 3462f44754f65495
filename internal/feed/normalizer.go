package feed

import (
	"math"

	"github.com/yourusername/match-predictor/internal/models"
)

// Normalize flattens a match's primary and extended quote containers into one
// ordered sequence: primary quotes in feed order, then extended groups one by
// one. Quotes with an unusable price, code or parameter are dropped silently.
func Normalize(m RawMatch) []models.Quote {
	quotes := make([]models.Quote, 0, len(m.E))

	for _, rq := range m.E {
		group, ok := rq.G.Int()
		if !ok {
			continue
		}
		if q, ok := rq.toQuote(group); ok {
			quotes = append(quotes, q)
		}
	}

	for _, rg := range m.AE {
		groupCode, groupOK := rg.G.Int()
		for _, rq := range rg.ME {
			group := groupCode
			if !groupOK {
				// fall back to the nested quote's own code
				g, ok := rq.G.Int()
				if !ok {
					continue
				}
				group = g
			}
			if q, ok := rq.toQuote(group); ok {
				quotes = append(quotes, q)
			}
		}
	}

	return quotes
}

func (rq RawQuote) toQuote(group int) (models.Quote, bool) {
	outcome, ok := rq.T.Int()
	if !ok {
		return models.Quote{}, false
	}

	price, ok := rq.C.Float64()
	if !ok || !isFinite(price) || price <= 1.0 {
		return models.Quote{}, false
	}

	q := models.Quote{Group: group, OutcomeType: outcome, Price: price}
	if rq.P.Present() {
		p, ok := rq.P.Float64()
		if !ok || !isFinite(p) {
			return models.Quote{}, false
		}
		q.Param = &p
	}
	return q, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
