package forecast

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"AssetSentinel/internal/model"
)

// ErrInvalidPrice is returned when the current price is not a positive finite number.
var ErrInvalidPrice = errors.New("current price must be positive")

// DefaultHorizonDays is used when the input does not set a horizon.
const DefaultHorizonDays = 30

// minTechnicalHistory is the history length needed for the technical sub-model.
const minTechnicalHistory = 20

// Engine blends sub-model estimates into a single forecast. The random
// source is injected so that a fixed seed reproduces every forecast.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewEngine creates an engine seeded with seed.
func NewEngine(seed uint64) *Engine {
	return NewEngineWithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewEngineWithRand creates an engine drawing jitter from r.
func NewEngineWithRand(r *rand.Rand) *Engine {
	return &Engine{rng: r, now: time.Now}
}

// SetClock overrides the clock used for GeneratedAt.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) jitter(bound float64) float64 {
	return (e.rng.Float64()*2 - 1) * bound
}

// Forecast computes the blended prediction for in.
func (e *Engine) Forecast(in model.ForecastInput) (*model.ForecastResult, error) {
	price := in.CurrentPrice
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, ErrInvalidPrice
	}
	horizon := in.HorizonDays
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}

	features := Analyze(in.PriceHistory, price)
	sentiment := finiteOr(in.MarketSentiment, 0)
	seasonality := finiteOr(in.Seasonality, 1)
	growth := finiteOr(in.GrowthRate, 0)

	e.mu.Lock()
	estimates := []model.ModelEstimate{
		{Name: ModelTrend, Value: estimateTrend(price, features, e.jitter)},
		{Name: ModelMomentum, Value: estimateMomentum(price, features, sentiment, e.jitter)},
		{Name: ModelSeasonal, Value: estimateSeasonal(price, seasonality, growth, horizon, e.jitter)},
	}
	weights := ThreeModelWeights
	if features.HistoryLength >= minTechnicalHistory && features.SMA20 > 0 {
		estimates = append(estimates, model.ModelEstimate{
			Name:  ModelTechnical,
			Value: estimateTechnical(price, features, e.jitter),
		})
		weights = FourModelWeights
	}
	e.mu.Unlock()

	var predicted float64
	values := make([]float64, len(estimates))
	for i := range estimates {
		estimates[i].Weight = weights[estimates[i].Name]
		predicted += estimates[i].Value * estimates[i].Weight
		values[i] = estimates[i].Value
	}

	return &model.ForecastResult{
		ID:             uuid.NewString(),
		AssetID:        in.AssetID,
		CurrentPrice:   price,
		PredictedValue: predicted,
		Confidence:     confidence(features, values),
		Models:         estimates,
		RiskFactors:    riskFactors(features, finiteOr(in.MarketCorrelation, 0)),
		Features:       features,
		HorizonDays:    horizon,
		GeneratedAt:    e.now(),
	}, nil
}

func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
