package forecast

import (
	"math"

	"AssetSentinel/internal/model"
)

// Sub-model names.
const (
	ModelTrend     = "trend"
	ModelMomentum  = "momentum"
	ModelSeasonal  = "seasonal"
	ModelTechnical = "technical"
)

// Static blend weights. Each set sums to 1.0.
var (
	FourModelWeights = map[string]float64{
		ModelTrend:     0.25,
		ModelMomentum:  0.35,
		ModelSeasonal:  0.30,
		ModelTechnical: 0.10,
	}
	ThreeModelWeights = map[string]float64{
		ModelTrend:    0.3,
		ModelMomentum: 0.4,
		ModelSeasonal: 0.3,
	}
)

// jitterFunc returns a uniform value in [-bound, bound].
type jitterFunc func(bound float64) float64

// estimateTrend projects the trend direction, damped by volatility.
// Jitter: ±5%.
func estimateTrend(price float64, f model.Features, jitter jitterFunc) float64 {
	var move float64
	switch f.Trend {
	case model.TrendBullish:
		move = 0.05
	case model.TrendBearish:
		move = -0.05
	}
	damping := 1 - math.Min(f.Volatility, 100)/200
	return price * (1 + move*damping) * (1 + jitter(0.05))
}

// estimateMomentum follows RSI momentum and market sentiment.
// Jitter: ±4%.
func estimateMomentum(price float64, f model.Features, sentiment float64, jitter jitterFunc) float64 {
	momentum := 1 + (f.RSI-50)/1000
	sent := 1 + clamp(sentiment, -1, 1)*0.03
	return price * momentum * sent * (1 + jitter(0.04))
}

// estimateSeasonal applies the seasonality multiplier and the expected
// appreciation over the horizon. Jitter: ±4%.
func estimateSeasonal(price, seasonality, growthRate float64, horizonDays int, jitter jitterFunc) float64 {
	if seasonality <= 0 {
		seasonality = 1.0
	}
	growth := 1 + growthRate/100*float64(horizonDays)/365
	return price * seasonality * growth * (1 + jitter(0.04))
}

// estimateTechnical reverts halfway toward the 20-period SMA and leans
// against extremes of the recent range. Jitter: ±4%.
func estimateTechnical(price float64, f model.Features, jitter jitterFunc) float64 {
	target := price + (f.SMA20-price)*0.5
	lean := 1 + (0.5-f.RangePosition)*0.02
	return target * lean * (1 + jitter(0.04))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
