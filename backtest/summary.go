package backtest

import (
	"fmt"
	"io"
	"strings"
)

// WriteSummary prints the performance summary and trade log for one run.
func WriteSummary(w io.Writer, res *Result) {
	line := strings.Repeat("-", 44)

	fmt.Fprintln(w, "PERFORMANCE SUMMARY")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "  Symbol            : %s\n", res.Symbol)
	fmt.Fprintf(w, "  Strategy          : %s\n", res.Strategy)
	fmt.Fprintf(w, "  Starting Capital  : %14s\n", res.InitialCash.StringFixed(2))
	fmt.Fprintf(w, "  Final Value       : %14s\n", res.Metrics.FinalValue.StringFixed(2))
	fmt.Fprintf(w, "  Strategy Return   : %+13.1f%%\n", res.Metrics.StrategyReturn)
	fmt.Fprintf(w, "  Buy & Hold Return : %+13.1f%%\n", res.Metrics.BuyHoldReturn)
	fmt.Fprintf(w, "  Max Drawdown      : %13.1f%%\n", res.Metrics.MaxDrawdown)
	fmt.Fprintf(w, "  Total Trades      : %14d\n", res.Metrics.TotalTrades)
	fmt.Fprintf(w, "  Win Rate          : %13.1f%%\n", res.Metrics.WinRate)
	fmt.Fprintln(w, line)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "TRADE LOG")
	fmt.Fprintln(w, line)
	if len(res.Trades) == 0 {
		fmt.Fprintln(w, "  no trades executed in this period")
	}
	for _, t := range res.Trades {
		tag := "▲ BUY "
		if t.Type == ActionSell {
			tag = "▼ SELL"
		}
		fmt.Fprintf(w, "  %s  %s  %10s  (%s shares)\n",
			tag, t.Date.Format("2006-01-02"), t.Price.StringFixed(2), t.Shares.StringFixed(4))
	}
	fmt.Fprintln(w)
}

// WriteSweepSummary prints the ranked window-pair table from a sweep.
func WriteSweepSummary(w io.Writer, symbol string, results []SweepResult) {
	line := strings.Repeat("-", 60)

	fmt.Fprintf(w, "PARAMETER SWEEP  %s  (%d pairs)\n", symbol, len(results))
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "  short  long    return%     b&h%     maxDD%   trades  win%")
	for _, r := range results {
		fmt.Fprintf(w, "  %5d  %4d  %+9.1f  %+7.1f  %9.1f  %6d  %4.0f\n",
			r.ShortWindow, r.LongWindow,
			r.Metrics.StrategyReturn, r.Metrics.BuyHoldReturn, r.Metrics.MaxDrawdown,
			r.Metrics.TotalTrades, r.Metrics.WinRate)
	}
	fmt.Fprintln(w, line)
}
