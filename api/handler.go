package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"backtester/backtest"
	"backtester/fetcher"
)

// Handler serves the dashboard API. It owns no simulation state; every
// request runs a fresh backtest through the runner.
type Handler struct {
	runner *backtest.Runner
	store  *RunStore
	names  *fetcher.NameResolver
}

func NewHandler(runner *backtest.Runner, store *RunStore, names *fetcher.NameResolver) *Handler {
	return &Handler{runner: runner, store: store, names: names}
}

type backtestRequest struct {
	Symbol      string  `json:"symbol"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	InitialCash float64 `json:"initial_cash"`
	ShortWindow int     `json:"short_window"`
	LongWindow  int     `json:"long_window"`
}

func (r backtestRequest) runConfig() (backtest.RunConfig, error) {
	cfg := backtest.DefaultRunConfig()
	cfg.Symbol = r.Symbol
	if r.InitialCash != 0 {
		cfg.InitialCash = decimal.NewFromFloat(r.InitialCash)
	}
	if r.ShortWindow != 0 {
		cfg.ShortWindow = r.ShortWindow
	}
	if r.LongWindow != 0 {
		cfg.LongWindow = r.LongWindow
	}
	if r.Start != "" {
		t, err := time.ParseInLocation("2006-01-02", r.Start, time.Local)
		if err != nil {
			return cfg, err
		}
		cfg.Start = t
	}
	if r.End != "" {
		t, err := time.ParseInLocation("2006-01-02", r.End, time.Local)
		if err != nil {
			return cfg, err
		}
		cfg.End = t
	}
	return cfg, nil
}

// RunBacktest runs one backtest and stores the result bundle for later
// chart/JSON retrieval.
func (h *Handler) RunBacktest(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	cfg, err := req.runConfig()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date: " + err.Error()})
		return
	}

	res, err := h.runner.Run(c.Request.Context(), cfg)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.store.Put(res)
	c.JSON(http.StatusOK, res)
}

type sweepRequest struct {
	backtestRequest
	ShortWindows []int `json:"short_windows"`
	LongWindows  []int `json:"long_windows"`
}

// RunSweep evaluates a grid of window pairs and returns the ranked table.
func (h *Handler) RunSweep(c *gin.Context) {
	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	cfg, err := req.runConfig()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date: " + err.Error()})
		return
	}

	results, err := h.runner.Sweep(c.Request.Context(), cfg, req.ShortWindows, req.LongWindows)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": cfg.Symbol, "count": len(results), "results": results})
}

// GetRun returns the stored result bundle for a run id.
func (h *Handler) GetRun(c *gin.Context) {
	res := h.store.Get(c.Param("id"))
	if res == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run id"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetChart renders the stored run as the three-panel SVG.
func (h *Handler) GetChart(c *gin.Context) {
	res := h.store.Get(c.Param("id"))
	if res == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run id"})
		return
	}
	svg, err := backtest.RenderResultSVG(res, backtest.SVGChartOptions{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

// GetName resolves a symbol's display name; best-effort dashboard labeling.
func (h *Handler) GetName(c *gin.Context) {
	symbol := c.Param("symbol")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	name, err := h.names.LookupName(ctx, symbol)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "symbol": symbol})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "name": name})
}

// statusFor maps the core/fetcher error taxonomy to HTTP statuses: caller
// faults are 400, missing data 404, everything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, backtest.ErrInvalidConfig),
		errors.Is(err, backtest.ErrInvalidCapital),
		errors.Is(err, fetcher.ErrInvalidSymbol):
		return http.StatusBadRequest
	case errors.Is(err, fetcher.ErrNoData),
		errors.Is(err, backtest.ErrEmptySeries):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
