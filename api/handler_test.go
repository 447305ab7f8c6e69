package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"backtester/backtest"
	"backtester/fetcher"
)

type stubProvider struct {
	prices []backtest.PricePoint
}

func (s *stubProvider) FetchDaily(_ context.Context, _ string, _, _ time.Time) ([]backtest.PricePoint, error) {
	return s.prices, nil
}

func testSeries() []backtest.PricePoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := []float64{10, 10, 10, 20, 20, 20, 20, 10, 10, 10}
	out := make([]backtest.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = backtest.PricePoint{Date: base.AddDate(0, 0, i), Close: decimal.NewFromFloat(c)}
	}
	return out
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	runner := backtest.NewRunner(&stubProvider{prices: testSeries()})
	h := NewHandler(runner, NewRunStore(10), fetcher.NewNameResolver())
	return NewServer(h, 0, nil)
}

func postJSON(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestRunBacktestEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := postJSON(t, s, "/api/backtest",
		`{"symbol":"sh600000","initial_cash":1000,"short_window":2,"long_window":4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var res backtest.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.RunID == "" {
		t.Error("missing run id")
	}
	if res.Metrics.TotalTrades != 2 {
		t.Errorf("total trades = %d, want 2", res.Metrics.TotalTrades)
	}
	if res.Metrics.StrategyReturn != 0 {
		t.Errorf("strategy return = %v, want 0", res.Metrics.StrategyReturn)
	}

	// The stored run is retrievable afterwards.
	if w := get(s, "/api/runs/"+res.RunID); w.Code != http.StatusOK {
		t.Errorf("GetRun status %d", w.Code)
	}
	w2 := get(s, "/api/runs/"+res.RunID+"/chart.svg")
	if w2.Code != http.StatusOK {
		t.Fatalf("GetChart status %d", w2.Code)
	}
	if ct := w2.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("chart content type %q", ct)
	}
	if !strings.Contains(w2.Body.String(), "<svg") {
		t.Error("chart body is not svg")
	}
}

func TestRunBacktestRejectsBadConfig(t *testing.T) {
	s := newTestServer(t)

	cases := []string{
		`{"symbol":"","initial_cash":1000,"short_window":2,"long_window":4}`,
		`{"symbol":"sh600000","initial_cash":-5,"short_window":2,"long_window":4}`,
		`{"symbol":"sh600000","initial_cash":1000,"short_window":4,"long_window":2}`,
		`{"symbol":"sh600000","start":"01/02/2024"}`,
		`{not json`,
	}
	for _, body := range cases {
		if w := postJSON(t, s, "/api/backtest", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status %d, want 400", body, w.Code)
		}
	}
}

func TestRunSweepEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := postJSON(t, s, "/api/sweep",
		`{"symbol":"sh600000","initial_cash":1000,"short_windows":[2,4],"long_windows":[4,8]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Symbol  string                 `json:"symbol"`
		Count   int                    `json:"count"`
		Results []backtest.SweepResult `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 3 || len(resp.Results) != 3 {
		t.Fatalf("expected 3 pairs, got %+v", resp)
	}

	if w := postJSON(t, s, "/api/sweep", `{"symbol":"sh600000","short_windows":[],"long_windows":[4]}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty windows: status %d, want 400", w.Code)
	}
}

func TestGetRunUnknownID(t *testing.T) {
	s := newTestServer(t)
	if w := get(s, "/api/runs/nope"); w.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", w.Code)
	}
	if w := get(s, "/api/runs/nope/chart.svg"); w.Code != http.StatusNotFound {
		t.Errorf("chart status %d, want 404", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	if w := get(s, "/health"); w.Code != http.StatusOK {
		t.Errorf("status %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/backtest", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
