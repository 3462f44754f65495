package models

import (
	"fmt"
	"math"
)

// Default price band for alternative-market selection.
const (
	DefaultMinPrice = 1.399
	DefaultMaxPrice = 3.0
)

// Band is an inclusive decimal price range plus an optional raw probability floor.
type Band struct {
	MinPrice         float64 `json:"min_price" mapstructure:"min_price"`
	MaxPrice         float64 `json:"max_price" mapstructure:"max_price"`
	ProbabilityFloor float64 `json:"probability_floor" mapstructure:"probability_floor"`
}

// DefaultBand returns the band used when the caller supplies none.
func DefaultBand() Band {
	return Band{MinPrice: DefaultMinPrice, MaxPrice: DefaultMaxPrice}
}

// Validate rejects bands that can only come from caller misuse.
func (b Band) Validate() error {
	for _, v := range []float64{b.MinPrice, b.MaxPrice, b.ProbabilityFloor} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound", ErrInvalidBand)
		}
	}
	if b.MinPrice < 0 || b.MaxPrice < 0 {
		return fmt.Errorf("%w: negative price bound [%g, %g]", ErrInvalidBand, b.MinPrice, b.MaxPrice)
	}
	if b.MinPrice > b.MaxPrice {
		return fmt.Errorf("%w: min_price %g exceeds max_price %g", ErrInvalidBand, b.MinPrice, b.MaxPrice)
	}
	if b.ProbabilityFloor < 0 || b.ProbabilityFloor > 1 {
		return fmt.Errorf("%w: probability floor %g outside [0, 1]", ErrInvalidBand, b.ProbabilityFloor)
	}
	return nil
}

// Contains reports whether price lies inside the band, bounds included.
func (b Band) Contains(price float64) bool {
	return price >= b.MinPrice && price <= b.MaxPrice
}
