package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"AssetSentinel/internal/collector"
	"AssetSentinel/internal/forecast"
	"AssetSentinel/internal/logger"
	"AssetSentinel/internal/model"
	"AssetSentinel/internal/recorder"
)

// Outcome is the result of forecasting one asset during a refresh.
type Outcome struct {
	Asset  model.Asset
	Result *model.ForecastResult
	Err    error
}

// Forecaster runs the collect, forecast and record pipeline for assets.
type Forecaster struct {
	assets    AssetSource
	collector *collector.Collector
	engine    *forecast.Engine
	recorder  recorder.Recorder
	log       *logrus.Entry
	now       func() time.Time
}

// NewForecaster wires a forecaster. rec may be nil.
func NewForecaster(assets AssetSource, col *collector.Collector, engine *forecast.Engine, rec recorder.Recorder, log *logrus.Logger) *Forecaster {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Forecaster{
		assets:    assets,
		collector: col,
		engine:    engine,
		recorder:  rec,
		log:       logger.WithComponent(log, "forecaster"),
		now:       time.Now,
	}
}

// Assets returns the configured asset source.
func (f *Forecaster) Assets() AssetSource { return f.assets }

// ForecastAsset looks up assetID and forecasts it.
func (f *Forecaster) ForecastAsset(ctx context.Context, assetID string) (*model.Asset, *model.ForecastResult, error) {
	asset, err := f.assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, nil, fmt.Errorf("get asset %s: %w", assetID, err)
	}
	res, err := f.Forecast(ctx, asset)
	if err != nil {
		return asset, nil, err
	}
	return asset, res, nil
}

// Forecast collects the history of asset, runs the engine and records the
// result. A recorder failure is logged, not returned.
func (f *Forecaster) Forecast(ctx context.Context, asset *model.Asset) (*model.ForecastResult, error) {
	in, err := f.collector.Collect(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", asset.ID, err)
	}
	res, err := f.engine.Forecast(*in)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", asset.ID, err)
	}
	if err := f.recorder.RecordForecast(ctx, res); err != nil {
		f.log.WithError(err).WithField("asset", asset.ID).Warn("failed to record forecast")
	}
	return res, nil
}

// Refresh records the backend valuation of assets without a market feed and
// forecasts every asset. Per-asset failures are reported in the outcomes.
func (f *Forecaster) Refresh(ctx context.Context) ([]Outcome, error) {
	assets, err := f.assets.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	outcomes := make([]Outcome, 0, len(assets))
	for i := range assets {
		a := &assets[i]
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		if !a.HasMarketData() && a.CurrentValue.IsPositive() {
			value, _ := a.CurrentValue.Float64()
			rec := model.AssetHistory{AssetID: a.ID, Timestamp: f.now(), Value: value}
			if err := f.recorder.RecordAssetValue(ctx, rec); err != nil {
				f.log.WithError(err).WithField("asset", a.ID).Warn("failed to record asset value")
			}
		}
		res, err := f.Forecast(ctx, a)
		if err != nil {
			f.log.WithError(err).WithField("asset", a.ID).Error("forecast failed")
		}
		outcomes = append(outcomes, Outcome{Asset: *a, Result: res, Err: err})
	}
	return outcomes, nil
}

// Portfolio returns the backend summary when the source offers one, and
// otherwise sums the asset list locally.
func (f *Forecaster) Portfolio(ctx context.Context) (model.PortfolioSummary, error) {
	if src, ok := f.assets.(SummarySource); ok {
		sum, err := src.PortfolioSummary(ctx)
		if err == nil {
			return *sum, nil
		}
		f.log.WithError(err).Warn("portfolio summary unavailable, summing locally")
	}
	assets, err := f.assets.ListAssets(ctx)
	if err != nil {
		return model.PortfolioSummary{}, fmt.Errorf("list assets: %w", err)
	}
	return model.Summarize(assets), nil
}
