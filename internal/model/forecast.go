package model

import "time"

// ForecastInput is everything needed to run one forecast for an asset.
type ForecastInput struct {
	AssetID      string
	CurrentPrice float64
	// PriceHistory is ordered oldest first.
	PriceHistory []float64

	// MarketSentiment ranges from -1 (fearful) to 1 (greedy).
	MarketSentiment float64
	// MarketCorrelation ranges from 0 to 1.
	MarketCorrelation float64
	// Seasonality is a multiplier; zero is treated as 1.0.
	Seasonality float64
	// GrowthRate is the expected annual appreciation in percent.
	GrowthRate  float64
	HorizonDays int
}

// ModelEstimate is one sub-model's point estimate and its blend weight.
type ModelEstimate struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// ForecastResult is the blended output of the forecast engine. It is
// recomputed on demand and never versioned.
type ForecastResult struct {
	ID             string          `json:"id"`
	AssetID        string          `json:"assetId"`
	CurrentPrice   float64         `json:"currentPrice"`
	PredictedValue float64         `json:"predictedValue"`
	Confidence     float64         `json:"confidence"`
	Models         []ModelEstimate `json:"models"`
	RiskFactors    []string        `json:"riskFactors"`
	Features       Features        `json:"features"`
	HorizonDays    int             `json:"horizonDays"`
	GeneratedAt    time.Time       `json:"generatedAt"`
}

// ChangePercent returns the predicted change relative to the current price.
func (r *ForecastResult) ChangePercent() float64 {
	if r.CurrentPrice == 0 {
		return 0
	}
	return (r.PredictedValue - r.CurrentPrice) / r.CurrentPrice * 100
}
