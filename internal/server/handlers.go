package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"AssetSentinel/internal/api"
	"AssetSentinel/internal/ledger"
	"AssetSentinel/internal/model"
	"AssetSentinel/internal/service"
)

type handler struct {
	deps Deps
	log  *logrus.Entry
}

func (h *handler) health(c *gin.Context) {
	success(c, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// ---------- ledger ----------

type ledgerEntryReq struct {
	ID           string          `json:"id" binding:"max=64"`
	Amount       decimal.Decimal `json:"amount"`
	Purpose      string          `json:"purpose" binding:"max=255"`
	Counterparty string          `json:"counterparty" binding:"max=128"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	Reminder     bool            `json:"reminder"`
	PaymentLink  string          `json:"paymentLink" binding:"omitempty,url"`
}

func (h *handler) ledgerKind(c *gin.Context) (model.LedgerKind, bool) {
	kind, err := model.ParseLedgerKind(c.Param("kind"))
	if err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidParam, err.Error())
		return "", false
	}
	if h.deps.Ledger == nil {
		fail(c, http.StatusServiceUnavailable, CodeServerErr, "ledger is not configured")
		return "", false
	}
	return kind, true
}

func (h *handler) listLedger(c *gin.Context) {
	kind, ok := h.ledgerKind(c)
	if !ok {
		return
	}
	entries, err := h.deps.Ledger.List(kind)
	if err != nil {
		h.internal(c, "list ledger", err)
		return
	}
	outstanding, err := h.deps.Ledger.Outstanding(kind)
	if err != nil {
		h.internal(c, "sum ledger", err)
		return
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	success(c, gin.H{"entries": entries, "outstanding": outstanding})
}

func (h *handler) addLedger(c *gin.Context) {
	kind, ok := h.ledgerKind(c)
	if !ok {
		return
	}
	var req ledgerEntryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidParam, err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidParam, "startDate: "+err.Error())
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidParam, "endDate: "+err.Error())
		return
	}

	saved, err := h.deps.Ledger.Add(kind, model.LedgerEntry{
		ID:           req.ID,
		Amount:       req.Amount,
		Purpose:      req.Purpose,
		Counterparty: req.Counterparty,
		StartDate:    start,
		EndDate:      end,
		Reminder:     req.Reminder,
		PaymentLink:  req.PaymentLink,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidEntry) {
			fail(c, http.StatusBadRequest, CodeInvalidParam, err.Error())
			return
		}
		h.internal(c, "add ledger entry", err)
		return
	}
	success(c, saved)
}

func (h *handler) markLedgerDone(c *gin.Context) {
	kind, ok := h.ledgerKind(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.deps.Ledger.MarkDone(kind, id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			fail(c, http.StatusNotFound, CodeNotFound, err.Error())
			return
		}
		h.internal(c, "mark ledger entry done", err)
		return
	}
	success(c, gin.H{"id": id, "done": true})
}

func (h *handler) deleteLedger(c *gin.Context) {
	kind, ok := h.ledgerKind(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.deps.Ledger.Delete(kind, id); err != nil {
		h.internal(c, "delete ledger entry", err)
		return
	}
	success(c, gin.H{"id": id})
}

func (h *handler) exportLedger(c *gin.Context) {
	if h.deps.Ledger == nil {
		fail(c, http.StatusServiceUnavailable, CodeServerErr, "ledger is not configured")
		return
	}
	filename := fmt.Sprintf("ledger_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := h.deps.Ledger.ExportXLSX(c.Writer); err != nil {
		h.log.WithError(err).Error("export ledger")
		c.Status(http.StatusInternalServerError)
	}
}

// parseDate accepts an empty string, a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", s)
	}
	return t, nil
}

// ---------- forecasts ----------

func (h *handler) forecast(c *gin.Context) {
	if h.deps.Forecaster == nil {
		fail(c, http.StatusServiceUnavailable, CodeServerErr, "forecasting is not configured")
		return
	}
	asset, res, err := h.deps.Forecaster.ForecastAsset(c.Request.Context(), c.Param("assetID"))
	if err != nil {
		h.upstream(c, "forecast", err)
		return
	}
	success(c, gin.H{"asset": asset, "forecast": res})
}

func (h *handler) portfolio(c *gin.Context) {
	if h.deps.Forecaster == nil {
		fail(c, http.StatusServiceUnavailable, CodeServerErr, "assets are not configured")
		return
	}
	sum, err := h.deps.Forecaster.Portfolio(c.Request.Context())
	if err != nil {
		h.upstream(c, "portfolio", err)
		return
	}
	success(c, gin.H{"summary": sum, "currency": h.currency()})
}

// ---------- settings ----------

func (h *handler) style(c *gin.Context) {
	dark, _ := strconv.ParseBool(c.Query("dark"))
	settings, cached := api.LoadCachedSettings(h.deps.Settings)
	success(c, gin.H{
		"settings": settings,
		"cached":   cached,
		"style":    settings.Style(dark),
	})
}

func (h *handler) currency() string {
	if h.deps.Currency != "" {
		return h.deps.Currency
	}
	settings, _ := api.LoadCachedSettings(h.deps.Settings)
	return settings.Currency
}

// ---------- errors ----------

func (h *handler) upstream(c *gin.Context, op string, err error) {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, service.ErrAssetNotFound),
		errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		fail(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.As(err, &apiErr):
		h.log.WithError(err).Warn(op)
		fail(c, http.StatusBadGateway, CodeUpstream, err.Error())
	default:
		h.internal(c, op, err)
	}
}

func (h *handler) internal(c *gin.Context, op string, err error) {
	h.log.WithError(err).Error(op)
	fail(c, http.StatusInternalServerError, CodeServerErr, err.Error())
}
