package backtest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceProvider is the upstream historical data fetch. Implementations must
// return an ascending-by-date series with no duplicate dates.
type PriceProvider interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]PricePoint, error)
}

// Runner wires a price provider to the simulation pipeline and executes
// complete backtest runs. Runs share no state; a single Runner is safe for
// concurrent use as long as its provider is.
type Runner struct {
	provider PriceProvider
}

func NewRunner(p PriceProvider) *Runner {
	return &Runner{provider: p}
}

// Run executes one moving-average-crossover backtest: fetch, signal, simulate,
// benchmark, metrics. Configuration is validated before any data is fetched.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strat, err := NewMACrossover(cfg.ShortWindow, cfg.LongWindow)
	if err != nil {
		return nil, err
	}
	res, err := r.RunStrategy(ctx, cfg, strat)
	if err != nil {
		return nil, err
	}
	res.ShortWindow = cfg.ShortWindow
	res.LongWindow = cfg.LongWindow
	return res, nil
}

// RunStrategy executes one backtest with an arbitrary strategy. The strategy
// must already be validated by its constructor.
func (r *Runner) RunStrategy(ctx context.Context, cfg RunConfig, strat Strategy) (*Result, error) {
	if !cfg.InitialCash.IsPositive() {
		return nil, fmt.Errorf("%w: initial cash %s", ErrInvalidConfig, cfg.InitialCash)
	}

	prices, err := r.provider.FetchDaily(ctx, cfg.Symbol, cfg.Start, cfg.End)
	if err != nil {
		return nil, err
	}
	log.Printf("[engine] %s: %d trading days loaded", cfg.Symbol, len(prices))

	signals, err := strat.GenerateSignals(prices)
	if err != nil {
		return nil, err
	}
	sim, err := Simulate(prices, signals, cfg.InitialCash)
	if err != nil {
		return nil, err
	}
	benchmark, err := BuildBenchmark(prices, cfg.InitialCash)
	if err != nil {
		return nil, err
	}
	metrics, err := ComputeMetrics(sim.Portfolio, benchmark, sim.Trades, cfg.InitialCash)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:       uuid.NewString(),
		Symbol:      cfg.Symbol,
		Strategy:    strat.Name(),
		InitialCash: cfg.InitialCash,
		Prices:      prices,
		Signals:     signals,
		Trades:      sim.Trades,
		Portfolio:   sim.Portfolio,
		Benchmark:   benchmark,
		Metrics:     metrics,
	}, nil
}

// Simulation holds the position simulator outputs. FinalValue is the
// end-of-period mark-to-cash of any still-open position; it is reporting
// only and never appends a Trade.
type Simulation struct {
	Trades     []Trade
	Portfolio  []ValuePoint
	FinalValue decimal.Decimal
}

// Simulate folds the signal series over the price series with running
// (cash, shares) state. BUY converts all cash to shares at that day's close,
// SELL converts all shares back to cash; redundant signals are no-ops, which
// keeps the trade log strictly alternating. Every date gets a valuation entry
// of cash + shares*close, warm-up days included. Inputs are not mutated.
func Simulate(prices []PricePoint, signals []SignalPoint, initialCash decimal.Decimal) (*Simulation, error) {
	if len(prices) == 0 {
		return nil, ErrEmptySeries
	}
	if len(signals) != len(prices) {
		return nil, fmt.Errorf("%w: %d signals for %d prices", ErrSeriesMismatch, len(signals), len(prices))
	}

	cash := initialCash
	shares := decimal.Zero
	var trades []Trade
	portfolio := make([]ValuePoint, 0, len(prices))

	for i, p := range prices {
		if !p.Close.IsPositive() {
			return nil, fmt.Errorf("%w: %s on %s", ErrNonPositivePrice, p.Close, p.Date.Format("2006-01-02"))
		}

		switch signals[i].Position {
		case ActionBuy:
			if cash.IsPositive() {
				shares = cash.Div(p.Close)
				cash = decimal.Zero
				trades = append(trades, Trade{Date: p.Date, Type: ActionBuy, Price: p.Close, Shares: shares})
			}
		case ActionSell:
			if shares.IsPositive() {
				cash = shares.Mul(p.Close)
				trades = append(trades, Trade{Date: p.Date, Type: ActionSell, Price: p.Close, Shares: shares})
				shares = decimal.Zero
			}
		}

		portfolio = append(portfolio, ValuePoint{
			Date:  p.Date,
			Value: cash.Add(shares.Mul(p.Close)),
		})
	}

	final := cash
	if shares.IsPositive() {
		final = cash.Add(shares.Mul(prices[len(prices)-1].Close))
	}

	return &Simulation{Trades: trades, Portfolio: portfolio, FinalValue: final}, nil
}

// BuildBenchmark values a hypothetical all-in purchase at the first available
// close, held unchanged through the period.
func BuildBenchmark(prices []PricePoint, initialCash decimal.Decimal) ([]ValuePoint, error) {
	if len(prices) == 0 {
		return nil, ErrEmptySeries
	}
	first := prices[0].Close
	if !first.IsPositive() {
		return nil, fmt.Errorf("%w: %s on %s", ErrNonPositivePrice, first, prices[0].Date.Format("2006-01-02"))
	}

	shares := initialCash.Div(first)
	out := make([]ValuePoint, len(prices))
	for i, p := range prices {
		out[i] = ValuePoint{Date: p.Date, Value: shares.Mul(p.Close)}
	}
	return out, nil
}
