package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AssetSentinel/internal/collector"
	"AssetSentinel/internal/forecast"
	"AssetSentinel/internal/logger"
	"AssetSentinel/internal/model"
	"AssetSentinel/internal/recorder"
)

const assetsYAML = `
assets:
  - id: home
    name: Home
    category: property
    type: physical
    purchase_price: 250000
    current_value: 310000.50
    quantity: 1
    purchase_date: 2019-06-01
    appreciation_rate: 3.5
  - id: btc
    name: Bitcoin
    category: crypto
    type: digital
    purchase_price: 20000
    current_value: 60000
    quantity: 0.5
    purchase_date: 2021-01-15
    crypto_id: bitcoin
`

func writeAssets(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadStaticAssets(t *testing.T) {
	src, err := LoadStaticAssets(writeAssets(t, assetsYAML))
	require.NoError(t, err)
	require.Len(t, src.Assets, 2)

	home, err := src.GetAsset(context.Background(), "home")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("310000.50").Equal(home.CurrentValue))
	assert.Equal(t, 2019, home.PurchaseDate.Year())
	require.NotNil(t, home.AppreciationRate)
	assert.Equal(t, 3.5, *home.AppreciationRate)

	_, err = src.GetAsset(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrAssetNotFound)

	_, err = LoadStaticAssets(writeAssets(t, "assets:\n  - name: no id\n"))
	assert.Error(t, err)
}

type recordingRecorder struct {
	recorder.NoopRecorder
	values    []model.AssetHistory
	forecasts []*model.ForecastResult
}

func (r *recordingRecorder) RecordAssetValue(_ context.Context, rec model.AssetHistory) error {
	r.values = append(r.values, rec)
	return nil
}

func (r *recordingRecorder) RecordForecast(_ context.Context, res *model.ForecastResult) error {
	r.forecasts = append(r.forecasts, res)
	return nil
}

func newTestForecaster(t *testing.T, crypto collector.Fetcher) (*Forecaster, *recordingRecorder) {
	t.Helper()
	src, err := LoadStaticAssets(writeAssets(t, assetsYAML))
	require.NoError(t, err)
	rec := &recordingRecorder{}
	col := collector.NewCollector(collector.Options{Crypto: crypto, Recorder: rec, HistoryDays: 30, Logger: logger.Discard()})
	return NewForecaster(src, col, forecast.NewEngine(1), rec, logger.Discard()), rec
}

func TestForecastAsset(t *testing.T) {
	f, rec := newTestForecaster(t, &collector.MockFetcher{Price: 61000})

	asset, res, err := f.ForecastAsset(context.Background(), "btc")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin", asset.Name)
	assert.Equal(t, 61000.0, res.CurrentPrice)
	assert.Len(t, res.Models, 4)
	require.Len(t, rec.forecasts, 1)

	_, _, err = f.ForecastAsset(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestRefresh_RecordsStaticValuesAndReportsFailures(t *testing.T) {
	f, rec := newTestForecaster(t, &collector.MockFetcher{Err: errors.New("down")})

	outcomes, err := f.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.NoError(t, o.Err, o.Asset.ID)
		assert.NotNil(t, o.Result)
	}

	require.Len(t, rec.values, 1, "only the asset without a market feed is recorded")
	assert.Equal(t, "home", rec.values[0].AssetID)
	assert.Equal(t, 310000.5, rec.values[0].Value)
	assert.Len(t, rec.forecasts, 2)
}

func TestPortfolio_SumsLocally(t *testing.T) {
	f, _ := newTestForecaster(t, nil)
	sum, err := f.Portfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.AssetCount)
	assert.True(t, decimal.RequireFromString("340000.5").Equal(sum.TotalValue), sum.TotalValue.String())
}
