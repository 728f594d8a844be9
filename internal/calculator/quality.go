package calculator

import "math"

// FullCoverage is the history length at which coverage stops penalising quality.
const FullCoverage = 30

// DataQuality scores a price history in [0, 1]: the share of finite
// positive points multiplied by coverage (n / FullCoverage, capped at 1).
func DataQuality(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	valid := 0
	for _, p := range prices {
		if p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p) {
			valid++
		}
	}
	coverage := math.Min(1, float64(len(prices))/FullCoverage)
	return float64(valid) / float64(len(prices)) * coverage
}
