package calculator

import "AssetSentinel/internal/model"

// TrendThreshold is the percentage move between the first and last price
// that classifies a history as bullish or bearish.
const TrendThreshold = 5.0

// trendEpsilon absorbs float rounding so a move of exactly 5% on prices
// like 3 -> 3.15 still reaches the threshold.
const trendEpsilon = 1e-9

// ChangePercent returns the percentage change from the first to the last price.
// It returns 0 for fewer than two prices or a zero first price.
func ChangePercent(prices []float64) float64 {
	if len(prices) < 2 || prices[0] == 0 {
		return 0
	}
	first, last := prices[0], prices[len(prices)-1]
	return (last - first) * 100 / first
}

// ClassifyTrend labels a chronological price history by its overall move.
// The threshold is inclusive: exactly +5% is bullish, exactly -5% is bearish.
func ClassifyTrend(prices []float64) model.Trend {
	change := ChangePercent(prices)
	switch {
	case change >= TrendThreshold-trendEpsilon:
		return model.TrendBullish
	case change <= -TrendThreshold+trendEpsilon:
		return model.TrendBearish
	default:
		return model.TrendNeutral
	}
}
