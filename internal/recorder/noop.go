package recorder

import (
	"context"

	"AssetSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAssetValue(context.Context, model.AssetHistory) error { return nil }
func (n *NoopRecorder) History(context.Context, string, int) ([]model.AssetHistory, error) {
	return nil, nil
}
func (n *NoopRecorder) RecordForecast(context.Context, *model.ForecastResult) error { return nil }
func (n *NoopRecorder) Close() error                                                { return nil }
