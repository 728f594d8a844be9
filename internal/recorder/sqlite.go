package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"AssetSentinel/internal/logger"
	"AssetSentinel/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logrus.Entry
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logrus.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API server read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger.WithComponent(log, "recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS asset_history (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			asset_id  TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			value     REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_asset_ts ON asset_history(asset_id, timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecasts (
			id              TEXT PRIMARY KEY,
			asset_id        TEXT NOT NULL,
			timestamp       INTEGER NOT NULL,
			current_price   REAL,
			predicted_value REAL,
			confidence      REAL,
			horizon_days    INTEGER,
			trend           TEXT,
			volatility      REAL,
			rsi             REAL,
			data_quality    REAL,
			models          TEXT,
			risk_factors    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_asset_ts ON forecasts(asset_id, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAssetValue(ctx context.Context, rec model.AssetHistory) error {
	if rec.AssetID == "" {
		return errors.New("asset id is required")
	}
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO asset_history (asset_id, timestamp, value) VALUES (?,?,?)`,
		rec.AssetID, ts.UnixMilli(), rec.Value,
	)
	return err
}

func (r *SQLiteRecorder) History(ctx context.Context, assetID string, limit int) ([]model.AssetHistory, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `SELECT timestamp, value FROM asset_history
		WHERE asset_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.AssetHistory
	for rows.Next() {
		var ms int64
		var value float64
		if err := rows.Scan(&ms, &value); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, model.AssetHistory{AssetID: assetID, Timestamp: time.UnixMilli(ms), Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest first from the query; callers want chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *SQLiteRecorder) RecordForecast(ctx context.Context, res *model.ForecastResult) error {
	models, err := json.Marshal(res.Models)
	if err != nil {
		return fmt.Errorf("encode models: %w", err)
	}
	risks, err := json.Marshal(res.RiskFactors)
	if err != nil {
		return fmt.Errorf("encode risk factors: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.ExecContext(ctx, `INSERT OR REPLACE INTO forecasts
		(id, asset_id, timestamp, current_price, predicted_value, confidence, horizon_days,
		 trend, volatility, rsi, data_quality, models, risk_factors)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		res.ID, res.AssetID, res.GeneratedAt.UnixMilli(),
		res.CurrentPrice, res.PredictedValue, res.Confidence, res.HorizonDays,
		string(res.Features.Trend), res.Features.Volatility, res.Features.RSI, res.Features.DataQuality,
		string(models), string(risks),
	)
	return err
}

// ForecastCount returns how many forecasts are stored for assetID.
func (r *SQLiteRecorder) ForecastCount(ctx context.Context, assetID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM forecasts WHERE asset_id = ?`, assetID).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
