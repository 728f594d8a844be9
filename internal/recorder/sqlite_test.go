package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AssetSentinel/internal/logger"
	"AssetSentinel/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestHistory_ChronologicalAndLimited(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.RecordAssetValue(ctx, model.AssetHistory{
			AssetID:   "gold",
			Timestamp: base.AddDate(0, 0, i),
			Value:     100 + float64(i),
		}))
	}
	require.NoError(t, r.RecordAssetValue(ctx, model.AssetHistory{AssetID: "other", Timestamp: base, Value: 1}))

	all, err := r.History(ctx, "gold", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, 100.0, all[0].Value)
	assert.Equal(t, 104.0, all[4].Value)

	last, err := r.History(ctx, "gold", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, 103.0, last[0].Value)
	assert.Equal(t, 104.0, last[1].Value)
	assert.True(t, last[1].Timestamp.Equal(base.AddDate(0, 0, 4)))

	none, err := r.History(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.Error(t, r.RecordAssetValue(ctx, model.AssetHistory{Value: 1}))
}

func TestRecordForecast(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()
	res := &model.ForecastResult{
		ID:             "f-1",
		AssetID:        "gold",
		CurrentPrice:   100,
		PredictedValue: 104,
		Confidence:     0.7,
		Models:         []model.ModelEstimate{{Name: "trend", Value: 104, Weight: 1}},
		RiskFactors:    []string{"high volatility"},
		HorizonDays:    30,
		GeneratedAt:    time.Now(),
	}
	require.NoError(t, r.RecordForecast(ctx, res))
	require.NoError(t, r.RecordForecast(ctx, res), "same id replaces")

	n, err := r.ForecastCount(ctx, "gold")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	ctx := context.Background()
	assert.NoError(t, r.RecordAssetValue(ctx, model.AssetHistory{}))
	h, err := r.History(ctx, "x", 5)
	assert.NoError(t, err)
	assert.Empty(t, h)
	assert.NoError(t, r.RecordForecast(ctx, &model.ForecastResult{}))
	assert.NoError(t, r.Close())
}
