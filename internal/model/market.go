package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PricePoint is a single observed price of a market instrument.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceSeries holds raw price data for one asset, oldest first.
type PriceSeries struct {
	AssetID      string
	Symbol       string
	Points       []PricePoint
	CurrentPrice float64
	Source       string
	FetchedAt    time.Time
}

// Values returns the prices of the series in chronological order.
func (s *PriceSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// PointsFromBars converts bars into close-price points.
func PointsFromBars(bars []OHLCV) []PricePoint {
	points := make([]PricePoint, len(bars))
	for i, b := range bars {
		points[i] = PricePoint{Time: b.Time, Price: b.Close}
	}
	return points
}
