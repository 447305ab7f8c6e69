package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"backtester/backtest"
)

// Alpaca fetches split/dividend-adjusted daily bars for US tickers through
// the Alpaca market data API. Requires API credentials.
type Alpaca struct {
	client *marketdata.Client
}

func NewAlpaca(apiKey, apiSecret, baseURL string) *Alpaca {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if baseURL != "" {
		opts.BaseURL = baseURL
	}
	return &Alpaca{client: marketdata.NewClient(opts)}
}

// FetchDaily returns daily closes for symbol within [start, end]. The Alpaca
// client manages its own request lifecycle; ctx is accepted for interface
// symmetry but cancellation happens through the client's HTTP timeout.
func (a *Alpaca) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]backtest.PricePoint, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrInvalidSymbol)
	}

	req := marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
	}
	if !start.IsZero() {
		req.Start = start
	}
	if !end.IsZero() {
		req.End = end
	}

	bars, err := a.client.GetBars(symbol, req)
	if err != nil {
		return nil, fmt.Errorf("alpaca: get bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s %s~%s", ErrNoData, symbol, fmtDate(start), fmtDate(end))
	}

	points := make([]backtest.PricePoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, backtest.PricePoint{
			// Bar timestamps are midnight UTC of the trading day.
			Date:  b.Timestamp,
			Close: decimal.NewFromFloat(b.Close),
		})
	}
	return normalize(points), nil
}
