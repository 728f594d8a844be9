package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"AssetSentinel/internal/api"
	"AssetSentinel/internal/collector"
	"AssetSentinel/internal/config"
	"AssetSentinel/internal/forecast"
	"AssetSentinel/internal/ledger"
	"AssetSentinel/internal/logger"
	"AssetSentinel/internal/recorder"
	"AssetSentinel/internal/service"
	"AssetSentinel/internal/session"
	"AssetSentinel/internal/storage"
)

// app holds the components shared by every subcommand. Components are
// built on first use so that, for example, `ledger list` never opens the
// SQLite database.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	store storage.Store

	accessor *session.Accessor
	client   *api.Client
	rec      recorder.Recorder

	closers []io.Closer
}

func newApp(ctx context.Context, cfgPath string, verbose bool) (*app, error) {
	cfg, err := config.Load(ctx, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	switch cfg.Storage.Driver {
	case "redis":
		rs, err := storage.NewRedisStore(storage.RedisOptions{
			Addr:     cfg.Storage.RedisURL,
			Password: cfg.Storage.Password,
			DB:       cfg.Storage.DB,
			Prefix:   cfg.Storage.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		a.store = rs
		a.closers = append(a.closers, rs)
	default:
		fs, err := storage.NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("init file store: %w", err)
		}
		a.store = fs
	}
	log.WithField("driver", cfg.Storage.Driver).Debug("storage ready")
	return a, nil
}

// Close releases the store and recorder.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *app) session() *session.Accessor {
	if a.accessor == nil {
		a.accessor = session.NewAccessor(a.store, nil, nil)
	}
	return a.accessor
}

func (a *app) ledger() *ledger.Manager {
	return ledger.NewManager(a.store)
}

// apiClient returns the backend client, or nil when no backend is configured.
func (a *app) apiClient() *api.Client {
	if a.cfg.API.BaseURL == "" {
		return nil
	}
	if a.client == nil {
		acc := a.session()
		a.client = api.NewClient(a.cfg.API.BaseURL, acc, api.Options{
			Timeout:       a.cfg.API.Timeout,
			Jar:           acc.Jar(),
			SettingsCache: a.store,
			TwoFactor:     acc,
			Logger:        a.log,
		})
	}
	return a.client
}

// assetSource prefers the backend and falls back to the local assets file.
func (a *app) assetSource() (service.AssetSource, error) {
	if c := a.apiClient(); c != nil {
		return c, nil
	}
	if a.cfg.API.AssetsFile == "" {
		return nil, errors.New("no asset source: set api.base_url or api.assets_file")
	}
	src, err := service.LoadStaticAssets(a.cfg.API.AssetsFile)
	if err != nil {
		return nil, err
	}
	a.log.WithField("file", a.cfg.API.AssetsFile).WithField("count", len(src.Assets)).Debug("loaded local assets")
	return src, nil
}

// recorder opens the SQLite recorder, falling back to a no-op recorder if
// the database cannot be opened.
func (a *app) recorder() recorder.Recorder {
	if a.rec != nil {
		return a.rec
	}
	path := a.cfg.Database.SQLitePath
	if path == "" {
		a.rec = recorder.NewNoopRecorder()
		return a.rec
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			a.log.WithError(err).Warn("create database dir failed, using noop recorder")
			a.rec = recorder.NewNoopRecorder()
			return a.rec
		}
	}
	sr, err := recorder.NewSQLiteRecorder(path, a.log)
	if err != nil {
		a.log.WithError(err).Warn("init sqlite recorder failed, using noop")
		a.rec = recorder.NewNoopRecorder()
		return a.rec
	}
	a.rec = sr
	a.closers = append(a.closers, sr)
	return a.rec
}

func (a *app) forecaster() (*service.Forecaster, error) {
	src, err := a.assetSource()
	if err != nil {
		return nil, err
	}
	rec := a.recorder()
	m := a.cfg.Market
	col := collector.NewCollector(collector.Options{
		Stocks:      collector.NewYahooFetcher(m.Proxy),
		Crypto:      collector.NewCoinGeckoFetcher(m.CoinGeckoURL, m.CoinGeckoAPIKey, m.Proxy),
		Recorder:    rec,
		HistoryDays: m.HistoryDays,
		HorizonDays: a.cfg.Forecast.HorizonDays,
		Seed:        a.cfg.Forecast.Seed,
		Logger:      a.log,
	})
	engine := forecast.NewEngine(a.cfg.Forecast.Seed)
	return service.NewForecaster(src, col, engine, rec, a.log), nil
}

// currency is the cached display currency.
func (a *app) currency() string {
	settings, _ := api.LoadCachedSettings(a.store)
	return settings.Currency
}
