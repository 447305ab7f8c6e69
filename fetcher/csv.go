package fetcher

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"backtester/backtest"
)

// CSVProvider reads daily closes from <dir>/<symbol>.csv files with
// date,close rows (header optional). Useful for offline runs and tests.
type CSVProvider struct {
	dir string
}

func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

func (p *CSVProvider) FetchDaily(_ context.Context, symbol string, start, end time.Time) ([]backtest.PricePoint, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" || strings.ContainsAny(symbol, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}

	path := filepath.Join(p.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no file for %s", ErrInvalidSymbol, symbol)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var points []backtest.PricePoint
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(row[0]), time.Local)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad date %q", path, i+1, row[0])
		}
		if !start.IsZero() && t.Before(start) {
			continue
		}
		if !end.IsZero() && t.After(end) {
			continue
		}
		close, err := decimal.NewFromString(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad close %q", path, i+1, row[1])
		}
		points = append(points, backtest.PricePoint{Date: t, Close: close})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s %s~%s", ErrNoData, symbol, fmtDate(start), fmtDate(end))
	}
	return normalize(points), nil
}
