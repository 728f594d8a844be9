package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"AssetSentinel/internal/collector"
	"AssetSentinel/internal/config"
	"AssetSentinel/internal/forecast"
	"AssetSentinel/internal/ledger"
	"AssetSentinel/internal/logger"
	"AssetSentinel/internal/model"
	"AssetSentinel/internal/service"
	"AssetSentinel/internal/storage"
)

type envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestServer(t *testing.T) (http.Handler, *ledger.Manager, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	lm := ledger.NewManager(store)

	assets := &service.StaticAssets{Assets: []model.Asset{{
		ID: "car", Name: "Car", Category: model.CategoryVehicle, Type: model.TypePhysical,
		PurchasePrice: decimal.NewFromInt(30000), CurrentValue: decimal.NewFromInt(21000),
		Quantity: decimal.NewFromInt(1), PurchaseDate: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
	}}}
	col := collector.NewCollector(collector.Options{Logger: logger.Discard()})
	fc := service.NewForecaster(assets, col, forecast.NewEngine(3), nil, logger.Discard())

	srv := New(config.ServerConfig{Mode: gin.TestMode}, Deps{Ledger: lm, Forecaster: fc, Settings: store}, logger.Discard())
	return srv.Handler(), lm, store
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestServer(t)
	rec, env := doRequest(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, CodeOK, env.Code)
}

func TestLedgerLifecycle(t *testing.T) {
	h, lm, _ := newTestServer(t)

	rec, env := doRequest(t, h, http.MethodPost, "/api/ledger/lend",
		`{"id":"l1","amount":"120.50","counterparty":"Robin","endDate":"2026-12-01","reminder":true}`)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)

	var saved model.LedgerEntry
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	assert.Equal(t, "l1", saved.ID)
	assert.False(t, saved.StartDate.IsZero(), "start date defaults to now")

	_, env = doRequest(t, h, http.MethodGet, "/api/ledger/lent", "")
	var list struct {
		Entries     []model.LedgerEntry `json:"entries"`
		Outstanding decimal.Decimal     `json:"outstanding"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Entries, 1)
	assert.True(t, decimal.RequireFromString("120.5").Equal(list.Outstanding))

	rec, _ = doRequest(t, h, http.MethodPut, "/api/ledger/lent/l1/done", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	entry, err := lm.Get(model.LedgerLent, "l1")
	require.NoError(t, err)
	assert.True(t, entry.Done)

	rec, env = doRequest(t, h, http.MethodPut, "/api/ledger/lent/missing/done", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, env.Code)

	rec, _ = doRequest(t, h, http.MethodDelete, "/api/ledger/lent/l1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	entries, err := lm.List(model.LedgerLent)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLedgerValidation(t *testing.T) {
	h, _, _ := newTestServer(t)

	rec, env := doRequest(t, h, http.MethodGet, "/api/ledger/stolen", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidParam, env.Code)

	rec, _ = doRequest(t, h, http.MethodPost, "/api/ledger/borrowed", `{"amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = doRequest(t, h, http.MethodPost, "/api/ledger/borrowed", `{"amount":5,"endDate":"next week"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "endDate")
}

type readOnlyStore struct {
	storage.Store
}

func (readOnlyStore) Set(string, string) error { return errors.New("disk full") }

func TestAddLedger_StorageFailureIsInternal(t *testing.T) {
	lm := ledger.NewManager(readOnlyStore{storage.NewMemoryStore()})
	h := New(config.ServerConfig{Mode: gin.TestMode}, Deps{Ledger: lm}, logger.Discard()).Handler()

	rec, env := doRequest(t, h, http.MethodPost, "/api/ledger/lent", `{"amount":"5"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, CodeServerErr, env.Code)

	rec, env = doRequest(t, h, http.MethodPost, "/api/ledger/lent",
		`{"amount":"5","startDate":"2026-05-01","endDate":"2026-04-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidParam, env.Code)
}

func TestExportLedger(t *testing.T) {
	h, lm, _ := newTestServer(t)
	_, err := lm.Add(model.LedgerBorrowed, model.LedgerEntry{ID: "b1", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/export/ledger.xlsx", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ledger_")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Borrowed", "A2")
	require.NoError(t, err)
	assert.Equal(t, "b1", v)
}

func TestForecastAndPortfolio(t *testing.T) {
	h, _, _ := newTestServer(t)

	rec, env := doRequest(t, h, http.MethodGet, "/api/forecast/car", "")
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	var body struct {
		Asset    model.Asset          `json:"asset"`
		Forecast model.ForecastResult `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "Car", body.Asset.Name)
	assert.Equal(t, 21000.0, body.Forecast.CurrentPrice)

	rec, env = doRequest(t, h, http.MethodGet, "/api/forecast/boat", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, env.Code)

	rec, env = doRequest(t, h, http.MethodGet, "/api/portfolio", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"currency":"USD"`)
}

func TestStyle(t *testing.T) {
	h, _, store := newTestServer(t)

	_, env := doRequest(t, h, http.MethodGet, "/api/settings/style?dark=true", "")
	var body struct {
		Cached bool                  `json:"cached"`
		Style  model.StyleDescriptor `json:"style"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.False(t, body.Cached)
	assert.Equal(t, []string{"theme-dark"}, body.Style.ClassNames)

	settings := model.DefaultSettings()
	settings.Theme = model.ThemeLight
	settings.AccentColor = "#ff0000"
	require.NoError(t, storage.SetJSON(store, storage.KeyGlobalSettings, settings))

	_, env = doRequest(t, h, http.MethodGet, "/api/settings/style?dark=true", "")
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.True(t, body.Cached)
	assert.Equal(t, []string{"theme-light"}, body.Style.ClassNames)
	assert.Equal(t, "#ff0000", body.Style.Variables["--accent"])
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := New(config.ServerConfig{Addr: "127.0.0.1:0", Mode: gin.TestMode}, Deps{}, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
