package fetcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func writeCSV(t *testing.T, dir, symbol, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, symbol+".csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCSVProviderFetchDaily(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "sh600000", "date,close\n2024-01-02,10.5\n2024-01-03,11\n2024-01-04,9.75\n")

	p := NewCSVProvider(dir)
	points, err := p.FetchDaily(context.Background(), "sh600000", time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points", len(points))
	}
	if !points[0].Close.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("close[0] = %s", points[0].Close)
	}
	if points[2].Date.Format("2006-01-02") != "2024-01-04" {
		t.Errorf("date[2] = %s", points[2].Date)
	}
}

func TestCSVProviderNoHeader(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "sz000001", "2024-01-02,10\n2024-01-03,11\n")

	p := NewCSVProvider(dir)
	points, err := p.FetchDaily(context.Background(), "sz000001", time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points", len(points))
	}
}

func TestCSVProviderSortsAndDedupes(t *testing.T) {
	dir := t.TempDir()
	// Out of order with a duplicate date; the later row wins.
	writeCSV(t, dir, "sh600000", "2024-01-03,11\n2024-01-02,10\n2024-01-03,12\n")

	p := NewCSVProvider(dir)
	points, err := p.FetchDaily(context.Background(), "sh600000", time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if !points[0].Date.Before(points[1].Date) {
		t.Error("points not ascending")
	}
	if !points[1].Close.Equal(decimal.NewFromInt(12)) {
		t.Errorf("duplicate date kept %s, want the last row", points[1].Close)
	}
}

func TestCSVProviderRangeFilter(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "sh600000", "2024-01-02,10\n2024-01-03,11\n2024-01-04,12\n")

	p := NewCSVProvider(dir)
	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)
	points, err := p.FetchDaily(context.Background(), "sh600000", start, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
}

func TestCSVProviderErrors(t *testing.T) {
	dir := t.TempDir()
	p := NewCSVProvider(dir)
	ctx := context.Background()

	if _, err := p.FetchDaily(ctx, "missing", time.Time{}, time.Time{}); !errors.Is(err, ErrInvalidSymbol) {
		t.Errorf("missing file: expected ErrInvalidSymbol, got %v", err)
	}
	if _, err := p.FetchDaily(ctx, "../etc/passwd", time.Time{}, time.Time{}); !errors.Is(err, ErrInvalidSymbol) {
		t.Errorf("path separator: expected ErrInvalidSymbol, got %v", err)
	}

	writeCSV(t, dir, "sh600000", "2024-01-02,10\n")
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	if _, err := p.FetchDaily(ctx, "sh600000", start, time.Time{}); !errors.Is(err, ErrNoData) {
		t.Errorf("empty range: expected ErrNoData, got %v", err)
	}
}
