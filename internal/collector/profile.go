package collector

import (
	"time"

	"AssetSentinel/internal/model"
)

// categoryProfile holds the market assumptions used when an asset carries
// none of its own.
type categoryProfile struct {
	correlation     float64
	sentiment       float64
	growthRate      float64 // percent per year
	dailyVolatility float64
	seasonalMonths  []time.Month
	seasonalBoost   float64
}

var profiles = map[model.AssetCategory]categoryProfile{
	model.CategoryStocks:        {correlation: 0.8, sentiment: 0.1, growthRate: 7, dailyVolatility: 0.015},
	model.CategoryCrypto:        {correlation: 0.6, sentiment: 0.2, growthRate: 10, dailyVolatility: 0.04},
	model.CategoryGold:          {correlation: 0.4, sentiment: 0.05, growthRate: 6, dailyVolatility: 0.01},
	model.CategoryDigitalAssets: {correlation: 0.5, sentiment: 0.1, growthRate: 3, dailyVolatility: 0.03},
	model.CategoryVehicle:       {correlation: 0.2, sentiment: -0.1, growthRate: -15, dailyVolatility: 0.002},
	model.CategoryProperty: {
		correlation: 0.5, growthRate: 4, dailyVolatility: 0.003,
		seasonalMonths: []time.Month{time.March, time.April, time.May, time.June},
		seasonalBoost:  1.01,
	},
	model.CategoryLand: {
		correlation: 0.4, growthRate: 5, dailyVolatility: 0.003,
		seasonalMonths: []time.Month{time.March, time.April, time.May, time.June},
		seasonalBoost:  1.01,
	},
	model.CategoryOther: {correlation: 0.3, dailyVolatility: 0.005},
}

func profileFor(cat model.AssetCategory) categoryProfile {
	if p, ok := profiles[cat]; ok {
		return p
	}
	return profiles[model.CategoryOther]
}

func (p categoryProfile) seasonality(month time.Month) float64 {
	for _, m := range p.seasonalMonths {
		if m == month {
			return p.seasonalBoost
		}
	}
	return 1.0
}

// BuildInput combines a price series with the asset's own growth rate and
// the category defaults into a forecast input.
func BuildInput(a *model.Asset, series *model.PriceSeries, horizonDays int, now time.Time) model.ForecastInput {
	p := profileFor(a.Category)
	growth := p.growthRate
	if a.AppreciationRate != nil {
		growth = *a.AppreciationRate
	}
	return model.ForecastInput{
		AssetID:           a.ID,
		CurrentPrice:      series.CurrentPrice,
		PriceHistory:      series.Values(),
		MarketSentiment:   p.sentiment,
		MarketCorrelation: p.correlation,
		Seasonality:       p.seasonality(now.Month()),
		GrowthRate:        growth,
		HorizonDays:       horizonDays,
	}
}
