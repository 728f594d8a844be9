package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"AssetSentinel/internal/config"
	"AssetSentinel/internal/ledger"
	"AssetSentinel/internal/logger"
	"AssetSentinel/internal/service"
	"AssetSentinel/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Deps are the components the HTTP handlers read from.
type Deps struct {
	Ledger     *ledger.Manager
	Forecaster *service.Forecaster
	// Settings is the store holding the cached globalSettings entry.
	Settings storage.Store
	Currency string
}

// Server exposes the ledger, forecasts and style settings over HTTP.
type Server struct {
	addr   string
	engine *gin.Engine
	log    *logrus.Entry
}

// New builds the router.
func New(cfg config.ServerConfig, deps Deps, log *logrus.Logger) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	entry := logger.WithComponent(log, "server")

	r := gin.New()
	r.Use(requestLogger(entry), gin.Recovery())

	h := &handler{deps: deps, log: entry}
	api := r.Group("/api")
	api.GET("/health", h.health)

	api.GET("/ledger/:kind", h.listLedger)
	api.POST("/ledger/:kind", h.addLedger)
	api.PUT("/ledger/:kind/:id/done", h.markLedgerDone)
	api.DELETE("/ledger/:kind/:id", h.deleteLedger)
	api.GET("/export/ledger.xlsx", h.exportLedger)

	api.GET("/forecast/:assetID", h.forecast)
	api.GET("/portfolio", h.portfolio)
	api.GET("/settings/style", h.style)

	return &Server{addr: cfg.Addr, engine: r, log: entry}
}

// Handler returns the router for use in tests or custom listeners.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}

func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.WithFields(fields).Warn("request failed")
			return
		}
		log.WithFields(fields).Debug("request")
	}
}
