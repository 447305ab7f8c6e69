package backtest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action is a per-day trading directive.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// PricePoint is one trading day's close. Series are ascending by date with no
// duplicate dates; calendar gaps (weekends, holidays) are expected.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// SignalPoint annotates one trading day with its moving averages and the
// action derived from them. ShortMA/LongMA are invalid during the warm-up
// period; such days are always HOLD.
type SignalPoint struct {
	Date     time.Time           `json:"date"`
	ShortMA  decimal.NullDecimal `json:"short_ma"`
	LongMA   decimal.NullDecimal `json:"long_ma"`
	Position Action              `json:"position"`
}

// Trade records one executed all-in or all-out transition.
type Trade struct {
	Date   time.Time       `json:"date"`
	Type   Action          `json:"type"`
	Price  decimal.Decimal `json:"price"`
	Shares decimal.Decimal `json:"shares"`
}

// ValuePoint is one day of a valuation series.
type ValuePoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// Metrics summarizes one backtest run. Percentages carry full precision;
// presenters round for display.
type Metrics struct {
	FinalValue     decimal.Decimal `json:"final_value"`
	StrategyReturn float64         `json:"strategy_return_pct"`
	BuyHoldReturn  float64         `json:"buy_hold_return_pct"`
	MaxDrawdown    float64         `json:"max_drawdown_pct"`
	WinRate        float64         `json:"win_rate_pct"`
	NumBuys        int             `json:"num_buys"`
	NumSells       int             `json:"num_sells"`
	TotalTrades    int             `json:"total_trades"`
}

// Result is the full bundle handed to presenters: annotated series, trade
// log, daily valuations for strategy and benchmark, and summary metrics.
// Results live only for the run that produced them; nothing is persisted.
type Result struct {
	RunID       string          `json:"run_id"`
	Symbol      string          `json:"symbol"`
	Strategy    string          `json:"strategy"`
	ShortWindow int             `json:"short_window,omitempty"`
	LongWindow  int             `json:"long_window,omitempty"`
	InitialCash decimal.Decimal `json:"initial_cash"`
	Prices      []PricePoint    `json:"prices"`
	Signals     []SignalPoint   `json:"signals"`
	Trades      []Trade         `json:"trades"`
	Portfolio   []ValuePoint    `json:"portfolio"`
	Benchmark   []ValuePoint    `json:"benchmark"`
	Metrics     Metrics         `json:"metrics"`
}
