package forecast

import (
	"math"

	"AssetSentinel/internal/calculator"
	"AssetSentinel/internal/model"
)

const (
	rsiPeriod   = 14
	smaPeriod   = 20
	rangeWindow = 52
)

// Analyze derives the forecast features from a chronological price history.
// Short or empty histories never fail: each indicator falls back to a
// neutral default.
func Analyze(history []float64, currentPrice float64) model.Features {
	quality := calculator.DataQuality(history)
	history = clean(history)

	f := model.Features{
		Trend:         calculator.ClassifyTrend(history),
		Volatility:    calculator.AnnualizedVolatility(history),
		RSI:           50,
		DataQuality:   quality,
		RangePosition: 0.5,
		HistoryLength: len(history),
	}

	if rsi, err := calculator.CalculateRSI(history, rsiPeriod); err == nil {
		f.RSI = rsi
	}
	if sma, err := calculator.CalculateSMA(history, smaPeriod); err == nil {
		f.SMA20 = sma
	}
	if high, low, err := calculator.CalculateRange(history, rangeWindow); err == nil {
		if pos, err := calculator.RangePosition(currentPrice, high, low); err == nil {
			f.RangePosition = pos
		}
	}
	return f
}

// clean drops non-finite and non-positive points.
func clean(history []float64) []float64 {
	out := make([]float64, 0, len(history))
	for _, p := range history {
		if p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p) {
			out = append(out, p)
		}
	}
	return out
}
