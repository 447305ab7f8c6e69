package backtest

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Strategy turns a price series into a parallel series of per-day directives.
// Implementations must be pure: identical inputs yield identical outputs.
type Strategy interface {
	Name() string
	GenerateSignals(prices []PricePoint) ([]SignalPoint, error)
}

// Compile-time interface check.
var _ Strategy = (*MACrossover)(nil)

// MACrossover is the golden-cross / death-cross strategy: BUY when the short
// moving average crosses above the long one, SELL when it crosses back below.
type MACrossover struct {
	shortWindow int
	longWindow  int
}

// NewMACrossover validates the window pair; it requires 1 <= short < long.
func NewMACrossover(short, long int) (*MACrossover, error) {
	if short < 1 || long < 1 || short >= long {
		return nil, fmt.Errorf("%w: ma windows %d/%d (want 1 <= short < long)", ErrInvalidConfig, short, long)
	}
	return &MACrossover{shortWindow: short, longWindow: long}, nil
}

func (s *MACrossover) Name() string {
	return fmt.Sprintf("ma-cross %d/%d", s.shortWindow, s.longWindow)
}

func (s *MACrossover) ShortWindow() int { return s.shortWindow }
func (s *MACrossover) LongWindow() int  { return s.longWindow }

// GenerateSignals computes trailing arithmetic means over the short and long
// windows and derives one action per day from the sign changes of
// signal(t) = [short_ma(t) > long_ma(t)]. Both means are left invalid until a
// full window of closes exists, and days with an invalid mean compare as 0,
// so warm-up days resolve to HOLD without special casing. Day one is HOLD
// regardless of the means, since there is no prior signal to diff against.
func (s *MACrossover) GenerateSignals(prices []PricePoint) ([]SignalPoint, error) {
	out := make([]SignalPoint, len(prices))

	shortN := decimal.NewFromInt(int64(s.shortWindow))
	longN := decimal.NewFromInt(int64(s.longWindow))
	shortSum := decimal.Zero
	longSum := decimal.Zero

	prevSignal := 0
	for i, p := range prices {
		shortSum = shortSum.Add(p.Close)
		if i >= s.shortWindow {
			shortSum = shortSum.Sub(prices[i-s.shortWindow].Close)
		}
		longSum = longSum.Add(p.Close)
		if i >= s.longWindow {
			longSum = longSum.Sub(prices[i-s.longWindow].Close)
		}

		sp := SignalPoint{Date: p.Date, Position: ActionHold}
		if i >= s.shortWindow-1 {
			sp.ShortMA = decimal.NewNullDecimal(shortSum.Div(shortN))
		}
		if i >= s.longWindow-1 {
			sp.LongMA = decimal.NewNullDecimal(longSum.Div(longN))
		}

		// Strictly greater: a tie is no signal.
		signal := 0
		if sp.ShortMA.Valid && sp.LongMA.Valid && sp.ShortMA.Decimal.GreaterThan(sp.LongMA.Decimal) {
			signal = 1
		}
		if i > 0 {
			switch signal - prevSignal {
			case 1:
				sp.Position = ActionBuy
			case -1:
				sp.Position = ActionSell
			}
		}
		prevSignal = signal
		out[i] = sp
	}

	return out, nil
}
