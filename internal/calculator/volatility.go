package calculator

import "math"

// TradingDaysPerYear scales per-period volatility to an annual figure.
const TradingDaysPerYear = 252

// Returns computes period-over-period simple returns. Periods whose base
// price is zero are skipped.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1])
	}
	return out
}

// StdDev returns the sample standard deviation of values, or 0 when fewer
// than two values are given.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// AnnualizedVolatility returns the standard deviation of period returns
// scaled by √252, as a percentage. It is never negative.
func AnnualizedVolatility(prices []float64) float64 {
	vol := StdDev(Returns(prices)) * math.Sqrt(TradingDaysPerYear) * 100
	if math.IsNaN(vol) || vol < 0 {
		return 0
	}
	return vol
}
