package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"backtester/backtest"
)

const eastmoneyBaseURL = "https://push2his.eastmoney.com"

// How many daily rows to ask for when the caller gives no start date. Covers
// roughly 30 years of trading days.
const eastmoneyMaxRows = 8000

// EastMoney fetches daily kline data for A-share symbols (sh600000,
// sz000001) from the EastMoney quote API.
type EastMoney struct {
	client  *http.Client
	baseURL string
}

func NewEastMoney() *EastMoney {
	return &EastMoney{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: eastmoneyBaseURL,
	}
}

// FetchDaily returns the adjusted daily closes for symbol within
// [start, end]. A zero start or end leaves that side unbounded.
func (f *EastMoney) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]backtest.PricePoint, error) {
	secid, err := secIDFor(symbol)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"%s/api/qt/stock/kline/get?secid=%s&fields1=f1,f2,f3,f4,f5,f6&fields2=f51,f52,f53,f54,f55,f56,f57&klt=101&fqt=1&end=20500101&lmt=%d",
		f.baseURL, secid, eastmoneyMaxRows,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://quote.eastmoney.com/")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("eastmoney: http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	points, err := parseEastmoneyKlines(body, start, end)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s %s~%s", ErrNoData, symbol, fmtDate(start), fmtDate(end))
	}
	return normalize(points), nil
}

// secIDFor maps sh600000 -> 1.600000, sz000001 -> 0.000001.
func secIDFor(symbol string) (string, error) {
	if len(symbol) <= 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	market := symbol[:2]
	num := symbol[2:]
	switch market {
	case "sh":
		return "1." + num, nil
	case "sz":
		return "0." + num, nil
	}
	return "", fmt.Errorf("%w: %q (want sh/sz prefix)", ErrInvalidSymbol, symbol)
}

func parseEastmoneyKlines(data []byte, start, end time.Time) ([]backtest.PricePoint, error) {
	var result struct {
		Data struct {
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("eastmoney: parse response: %w", err)
	}

	var points []backtest.PricePoint
	for _, line := range result.Data.Klines {
		// Row format: date,open,close,high,low,volume,amount
		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", parts[0], time.Local)
		if err != nil {
			continue
		}
		if !start.IsZero() && t.Before(start) {
			continue
		}
		if !end.IsZero() && t.After(end) {
			continue
		}
		close, err := decimal.NewFromString(parts[2])
		if err != nil {
			continue
		}
		points = append(points, backtest.PricePoint{Date: t, Close: close})
	}
	return points, nil
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return "*"
	}
	return t.Format("2006-01-02")
}
