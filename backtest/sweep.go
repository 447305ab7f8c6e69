package backtest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SweepResult is one evaluated window pair.
type SweepResult struct {
	ShortWindow int     `json:"short_window"`
	LongWindow  int     `json:"long_window"`
	Metrics     Metrics `json:"metrics"`
}

// Sweep fetches the price series once and evaluates every valid (short, long)
// pair concurrently. Pairs with short >= long are skipped, not errors. Runs
// share the fetched series read-only and own all derived state, so no locking
// is needed beyond collecting results. Output is sorted by strategy return,
// best first, window sizes breaking ties.
func (r *Runner) Sweep(ctx context.Context, cfg RunConfig, shorts, longs []int) ([]SweepResult, error) {
	if !cfg.InitialCash.IsPositive() {
		return nil, fmt.Errorf("%w: initial cash %s", ErrInvalidConfig, cfg.InitialCash)
	}
	if len(shorts) == 0 || len(longs) == 0 {
		return nil, fmt.Errorf("%w: empty sweep window lists", ErrInvalidConfig)
	}

	prices, err := r.provider.FetchDaily(ctx, cfg.Symbol, cfg.Start, cfg.End)
	if err != nil {
		return nil, err
	}

	// The benchmark only depends on the series, compute it once.
	benchmark, err := BuildBenchmark(prices, cfg.InitialCash)
	if err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		out []SweepResult
	)
	g, _ := errgroup.WithContext(ctx)
	for _, short := range shorts {
		for _, long := range longs {
			if short >= long {
				continue
			}
			g.Go(func() error {
				strat, err := NewMACrossover(short, long)
				if err != nil {
					return err
				}
				signals, err := strat.GenerateSignals(prices)
				if err != nil {
					return err
				}
				sim, err := Simulate(prices, signals, cfg.InitialCash)
				if err != nil {
					return err
				}
				m, err := ComputeMetrics(sim.Portfolio, benchmark, sim.Trades, cfg.InitialCash)
				if err != nil {
					return err
				}
				mu.Lock()
				out = append(out, SweepResult{ShortWindow: short, LongWindow: long, Metrics: m})
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Metrics.StrategyReturn != out[j].Metrics.StrategyReturn {
			return out[i].Metrics.StrategyReturn > out[j].Metrics.StrategyReturn
		}
		if out[i].ShortWindow != out[j].ShortWindow {
			return out[i].ShortWindow < out[j].ShortWindow
		}
		return out[i].LongWindow < out[j].LongWindow
	})
	return out, nil
}
