package recorder

import (
	"context"

	"AssetSentinel/internal/model"
)

// Recorder persists observed asset values and generated forecasts.
type Recorder interface {
	RecordAssetValue(ctx context.Context, rec model.AssetHistory) error
	// History returns at most limit records for assetID, oldest first.
	// A non-positive limit returns everything.
	History(ctx context.Context, assetID string, limit int) ([]model.AssetHistory, error)
	RecordForecast(ctx context.Context, res *model.ForecastResult) error
	Close() error
}
