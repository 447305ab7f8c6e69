package backtest

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeMetrics rolls the valuation series and trade log into summary
// statistics. Non-positive capital is rejected here as well as at config
// validation, so percentage returns are always well defined.
//
// The final value is the last portfolio entry: the valuation already marks
// to market daily, so it equals the simulator's end-of-period liquidation.
func ComputeMetrics(portfolio, benchmark []ValuePoint, trades []Trade, initialCash decimal.Decimal) (Metrics, error) {
	if !initialCash.IsPositive() {
		return Metrics{}, fmt.Errorf("%w: %s", ErrInvalidCapital, initialCash)
	}
	if len(portfolio) == 0 || len(benchmark) == 0 {
		return Metrics{}, ErrEmptySeries
	}

	final := portfolio[len(portfolio)-1].Value
	stratRet := final.Sub(initialCash).Div(initialCash).Mul(hundred)

	bhFinal := benchmark[len(benchmark)-1].Value
	bhRet := bhFinal.Sub(initialCash).Div(initialCash).Mul(hundred)

	// Deepest percentage dip below the running peak; 0 when the series never
	// dips, <= 0 always.
	maxDD := decimal.Zero
	peak := portfolio[0].Value
	for _, v := range portfolio {
		if v.Value.GreaterThan(peak) {
			peak = v.Value
		}
		if peak.IsPositive() {
			dd := v.Value.Sub(peak).Div(peak)
			if dd.LessThan(maxDD) {
				maxDD = dd
			}
		}
	}

	var buys, sells []Trade
	for _, t := range trades {
		switch t.Type {
		case ActionBuy:
			buys = append(buys, t)
		case ActionSell:
			sells = append(sells, t)
		}
	}

	// Positional pairing: the i-th SELL against the i-th BUY.
	wins := 0
	for i, s := range sells {
		if i < len(buys) && s.Price.GreaterThan(buys[i].Price) {
			wins++
		}
	}
	winRate := 0.0
	if len(sells) > 0 {
		winRate = float64(wins) / float64(len(sells)) * 100
	}

	return Metrics{
		FinalValue:     final,
		StrategyReturn: stratRet.InexactFloat64(),
		BuyHoldReturn:  bhRet.InexactFloat64(),
		MaxDrawdown:    maxDD.Mul(hundred).InexactFloat64(),
		WinRate:        winRate,
		NumBuys:        len(buys),
		NumSells:       len(sells),
		TotalTrades:    len(trades),
	}, nil
}
