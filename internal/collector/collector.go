package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"AssetSentinel/internal/logger"
	"AssetSentinel/internal/model"
	"AssetSentinel/internal/recorder"
)

// Price history sources other than a live fetcher.
const (
	SourceRecorder = "recorder"
	SourceMock     = "mock"
	SourceStatic   = "static"
)

// ErrNoPrice is returned when an asset has neither a market price nor a
// positive recorded value.
var ErrNoPrice = errors.New("asset has no usable price")

// minRecordedHistory is the number of recorded values needed before the
// recorder is preferred over a generated series.
const minRecordedHistory = 2

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, days), nil
}

func (m *MockFetcher) FetchCurrentPrice(context.Context, string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Options configures a Collector.
type Options struct {
	// Stocks prices assets with a ticker symbol.
	Stocks Fetcher
	// Crypto prices assets with a crypto id.
	Crypto      Fetcher
	Recorder    recorder.Recorder
	HistoryDays int
	HorizonDays int
	// Seed drives the generated fallback series.
	Seed   uint64
	Logger *logrus.Logger
}

// Collector gathers the price history of an asset and turns it into a
// forecast input. Live market data is preferred, then recorded values, then
// a generated series around the asset's current value.
type Collector struct {
	stocks      Fetcher
	crypto      Fetcher
	recorder    recorder.Recorder
	historyDays int
	horizonDays int

	mu  sync.Mutex
	rng *rand.Rand

	log *logrus.Entry
	now func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(opts Options) *Collector {
	days := opts.HistoryDays
	if days <= 0 {
		days = 90
	}
	rec := opts.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Collector{
		stocks:      opts.Stocks,
		crypto:      opts.Crypto,
		recorder:    rec,
		historyDays: days,
		horizonDays: opts.HorizonDays,
		rng:         rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5bd1e995)),
		log:         logger.WithComponent(opts.Logger, "collector"),
		now:         time.Now,
	}
}

// SetClock overrides the clock used for timestamps.
func (c *Collector) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Collector) fetcherFor(a *model.Asset) (Fetcher, string) {
	switch {
	case a.CryptoID != "" && c.crypto != nil:
		return c.crypto, a.CryptoID
	case a.TickerSymbol != "" && c.stocks != nil:
		return c.stocks, a.TickerSymbol
	}
	return nil, ""
}

// Collect fetches the price history of a and builds its forecast input.
func (c *Collector) Collect(ctx context.Context, a *model.Asset) (*model.ForecastInput, error) {
	series, err := c.Series(ctx, a)
	if err != nil {
		return nil, err
	}
	in := BuildInput(a, series, c.horizonDays, c.now())
	return &in, nil
}

// Series returns the price history of a. Fetch failures are logged and
// degrade to the next source; only an asset without any price is an error.
func (c *Collector) Series(ctx context.Context, a *model.Asset) (*model.PriceSeries, error) {
	log := c.log.WithField("asset", a.ID)
	series := &model.PriceSeries{AssetID: a.ID, FetchedAt: c.now()}

	if f, symbol := c.fetcherFor(a); f != nil {
		series.Symbol = symbol
		points, price, err := c.fetchLive(ctx, f, symbol)
		if err == nil {
			series.Points = points
			series.CurrentPrice = price
			series.Source = f.Name()
			if a.ID != "" {
				rec := model.AssetHistory{AssetID: a.ID, Timestamp: series.FetchedAt, Value: price}
				if err := c.recorder.RecordAssetValue(ctx, rec); err != nil {
					log.WithError(err).Warn("failed to record market price")
				}
			}
			return series, nil
		}
		log.WithError(err).WithField("source", f.Name()).Warn("market fetch failed, falling back")
	}

	price := referencePrice(a)

	if a.ID != "" {
		history, err := c.recorder.History(ctx, a.ID, c.historyDays)
		if err != nil {
			log.WithError(err).Warn("failed to read recorded history")
		} else if len(history) >= minRecordedHistory {
			series.Points = make([]model.PricePoint, len(history))
			for i, h := range history {
				series.Points[i] = model.PricePoint{Time: h.Timestamp, Price: h.Value}
			}
			if price <= 0 {
				price = history[len(history)-1].Value
			}
			series.CurrentPrice = price
			series.Source = SourceRecorder
			return series, nil
		}
	}

	if price <= 0 {
		return nil, fmt.Errorf("%s: %w", a.ID, ErrNoPrice)
	}
	series.CurrentPrice = price
	if a.HasMarketData() {
		// a market-priced asset whose feed failed gets a plausible random walk
		series.Points = c.mockSeries(a.Category, price, c.historyDays, series.FetchedAt)
		series.Source = SourceMock
	} else {
		series.Source = SourceStatic
	}
	log.WithField("source", series.Source).Debug("using fallback price history")
	return series, nil
}

func (c *Collector) fetchLive(ctx context.Context, f Fetcher, symbol string) ([]model.PricePoint, float64, error) {
	bars, err := f.FetchDailyBars(ctx, symbol, c.historyDays)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch daily bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, 0, errors.New("fetch daily bars: empty response")
	}
	price, err := f.FetchCurrentPrice(ctx, symbol)
	if err != nil || price <= 0 {
		c.log.WithError(err).WithField("symbol", symbol).Warn("current price unavailable, using last close")
		price = bars[len(bars)-1].Close
	}
	return model.PointsFromBars(bars), price, nil
}

// referencePrice is the backend's valuation of one unit of a.
func referencePrice(a *model.Asset) float64 {
	if v, _ := a.CurrentValue.Float64(); v > 0 {
		return v
	}
	v, _ := a.PurchasePrice.Float64()
	return v
}

// mockSeries walks backwards from price so that the series ends at it.
func (c *Collector) mockSeries(cat model.AssetCategory, price float64, n int, end time.Time) []model.PricePoint {
	sigma := profileFor(cat).dailyVolatility

	c.mu.Lock()
	defer c.mu.Unlock()

	points := make([]model.PricePoint, n)
	p := price
	for i := n - 1; i >= 0; i-- {
		points[i] = model.PricePoint{Time: end.AddDate(0, 0, i-(n-1)), Price: p}
		step := 1 + c.rng.NormFloat64()*sigma
		p = p / math.Max(step, 0.5)
	}
	return points
}
