package model

// Trend is the coarse direction of a price history.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// Features holds everything derived from a price history that the forecast
// sub-models consume.
type Features struct {
	Trend         Trend   `json:"trend"`
	Volatility    float64 `json:"volatility"` // annualized, percent
	RSI           float64 `json:"rsi"`
	DataQuality   float64 `json:"data_quality"` // 0.0 ~ 1.0
	SMA20         float64 `json:"sma20,omitempty"`
	RangePosition float64 `json:"range_position"` // 0.0 ~ 1.0
	HistoryLength int     `json:"history_length"`
}
