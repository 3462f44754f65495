// Package probability converts decimal prices into implied probabilities.
package probability

// Implied returns the raw implied probability 1/price. Prices at or below zero
// carry no information and yield 0.
func Implied(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return 1.0 / price
}

// NormalizeClosed removes the bookmaker margin from a closed market. Each raw
// implied probability is divided by the sum over the set, so the result sums
// to 1. An empty set returns nil and zero overround.
//
// Example:
// 2.0 / 3.5 / 4.0 -> raw 0.5 / 0.2857 / 0.25, sum 1.0357
// normalized 0.4828 / 0.2759 / 0.2414, overround 0.0357
func NormalizeClosed(prices []float64) (probs []float64, overround float64) {
	if len(prices) == 0 {
		return nil, 0
	}

	raw := make([]float64, len(prices))
	total := 0.0
	for i, price := range prices {
		raw[i] = Implied(price)
		total += raw[i]
	}
	if total == 0 {
		return nil, 0
	}

	probs = make([]float64, len(raw))
	for i, p := range raw {
		probs[i] = p / total
	}
	return probs, total - 1.0
}

// Overround returns sum(1/price) - 1 for a closed market.
func Overround(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	total := 0.0
	for _, price := range prices {
		total += Implied(price)
	}
	return total - 1.0
}

// MarginPercent is the overround expressed as a percentage.
func MarginPercent(prices []float64) float64 {
	return Overround(prices) * 100.0
}
