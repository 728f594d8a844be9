package forecast

import (
	"AssetSentinel/internal/calculator"
	"AssetSentinel/internal/model"
)

const (
	baseConfidence = 0.7
	minConfidence  = 0.3
	maxConfidence  = 0.95

	longHistory  = 50
	shortHistory = 10
)

// Risk factor messages.
const (
	RiskHighVolatility = "High volatility detected"
	RiskLowDataQuality = "Limited or low-quality price history"
	RiskLowCorrelation = "Low correlation with broader market"
)

// confidence scores a forecast from history length, volatility and the
// disagreement between sub-model estimates.
func confidence(f model.Features, estimates []float64) float64 {
	c := baseConfidence
	switch {
	case f.HistoryLength > longHistory:
		c += 0.1
	case f.HistoryLength < shortHistory:
		c -= 0.2
	}

	c *= 1 / (1 + f.Volatility/100)

	if mean := calculator.Mean(estimates); mean > 0 {
		cv := calculator.StdDev(estimates) / mean
		c *= 1 / (1 + 10*cv)
	}

	return clamp(c, minConfidence, maxConfidence)
}

// riskFactors lists fixed warnings triggered by threshold crossings.
func riskFactors(f model.Features, correlation float64) []string {
	risks := []string{}
	if f.Volatility > 20 {
		risks = append(risks, RiskHighVolatility)
	}
	if f.DataQuality < 0.7 {
		risks = append(risks, RiskLowDataQuality)
	}
	if correlation < 0.3 {
		risks = append(risks, RiskLowCorrelation)
	}
	return risks
}
