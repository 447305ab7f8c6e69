// Package fetcher supplies historical daily close prices from remote market
// data APIs, local CSV files, and an optional sqlite cache in front of either.
package fetcher

import (
	"errors"
	"sort"

	"backtester/backtest"
)

var (
	// ErrNoData reports a symbol/range that produced zero rows.
	ErrNoData = errors.New("no data for symbol/range")

	// ErrInvalidSymbol reports a ticker the provider does not recognize.
	ErrInvalidSymbol = errors.New("invalid symbol")
)

// normalize sorts ascending by date and drops duplicate dates, keeping the
// last row for a date. Providers run every fetched series through it so the
// engine's ordering assumptions hold regardless of upstream quirks.
func normalize(points []backtest.PricePoint) []backtest.PricePoint {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	out := points[:0]
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Date.Equal(p.Date) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
