package fetcher

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"backtester/backtest"
)

const createClosesTable = `
CREATE TABLE IF NOT EXISTS daily_closes (
	symbol TEXT NOT NULL,
	date   TEXT NOT NULL,
	close  TEXT NOT NULL,
	PRIMARY KEY (symbol, date)
)`

// CachedProvider keeps a sqlite copy of every series the upstream provider
// returns and serves cached rows when the upstream fails, so previously
// fetched symbols stay usable offline. Only price data is cached; backtest
// results are never persisted.
type CachedProvider struct {
	upstream backtest.PriceProvider
	db       *sql.DB
}

func NewCachedProvider(upstream backtest.PriceProvider, dbPath string) (*CachedProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open price cache: %w", err)
	}
	if _, err := db.Exec(createClosesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("init price cache: %w", err)
	}
	return &CachedProvider{upstream: upstream, db: db}, nil
}

func (c *CachedProvider) Close() error {
	return c.db.Close()
}

func (c *CachedProvider) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]backtest.PricePoint, error) {
	points, err := c.upstream.FetchDaily(ctx, symbol, start, end)
	if err != nil {
		cached, cerr := c.load(ctx, symbol, start, end)
		if cerr == nil && len(cached) > 0 {
			log.Printf("[fetch] %s: upstream failed (%v), serving %d cached rows", symbol, err, len(cached))
			return cached, nil
		}
		return nil, err
	}

	if err := c.save(ctx, symbol, points); err != nil {
		// The fetched series is still good; a cache write failure only costs
		// the offline fallback.
		log.Printf("[fetch] %s: cache write failed: %v", symbol, err)
	}
	return points, nil
}

func (c *CachedProvider) load(ctx context.Context, symbol string, start, end time.Time) ([]backtest.PricePoint, error) {
	lo := "0000-01-01"
	hi := "9999-12-31"
	if !start.IsZero() {
		lo = start.Format("2006-01-02")
	}
	if !end.IsZero() {
		hi = end.Format("2006-01-02")
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT date, close FROM daily_closes WHERE symbol = ? AND date >= ? AND date <= ? ORDER BY date`,
		symbol, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []backtest.PricePoint
	for rows.Next() {
		var dateStr, closeStr string
		if err := rows.Scan(&dateStr, &closeStr); err != nil {
			return nil, err
		}
		t, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			continue
		}
		close, err := decimal.NewFromString(closeStr)
		if err != nil {
			continue
		}
		points = append(points, backtest.PricePoint{Date: t, Close: close})
	}
	return points, rows.Err()
}

func (c *CachedProvider) save(ctx context.Context, symbol string, points []backtest.PricePoint) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO daily_closes(symbol, date, close) VALUES(?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, symbol, p.Date.Format("2006-01-02"), p.Close.String()); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
