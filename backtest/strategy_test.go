package backtest

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewMACrossoverRejectsBadWindows(t *testing.T) {
	for _, tc := range []struct{ short, long int }{
		{0, 5},
		{-1, 5},
		{5, 0},
		{5, 5},
		{10, 3},
	} {
		if _, err := NewMACrossover(tc.short, tc.long); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("windows %d/%d: expected ErrInvalidConfig, got %v", tc.short, tc.long, err)
		}
	}
	if _, err := NewMACrossover(1, 2); err != nil {
		t.Errorf("windows 1/2 should be valid, got %v", err)
	}
}

func TestGenerateSignalsWarmup(t *testing.T) {
	strat, err := NewMACrossover(3, 5)
	if err != nil {
		t.Fatal(err)
	}
	signals, err := strat.GenerateSignals(series(1, 2, 3, 4, 5, 6, 7))
	if err != nil {
		t.Fatal(err)
	}

	for i, sp := range signals {
		wantShort := i >= 2
		wantLong := i >= 4
		if sp.ShortMA.Valid != wantShort {
			t.Errorf("day %d short MA valid = %v, want %v", i, sp.ShortMA.Valid, wantShort)
		}
		if sp.LongMA.Valid != wantLong {
			t.Errorf("day %d long MA valid = %v, want %v", i, sp.LongMA.Valid, wantLong)
		}
		if i < 4 && sp.Position != ActionHold {
			t.Errorf("warm-up day %d got %s, want HOLD", i, sp.Position)
		}
	}
}

func TestGenerateSignalsRisingSeriesSingleBuy(t *testing.T) {
	// A strictly rising series keeps the short MA above the long one from the
	// first day both exist: exactly one buy, never a sell.
	strat, _ := NewMACrossover(2, 4)
	signals, err := strat.GenerateSignals(series(1, 2, 3, 4, 5, 6, 7, 8))
	if err != nil {
		t.Fatal(err)
	}

	var buys, sells int
	for _, sp := range signals {
		switch sp.Position {
		case ActionBuy:
			buys++
		case ActionSell:
			sells++
		}
	}
	if buys != 1 || sells != 0 {
		t.Fatalf("expected 1 buy and 0 sells, got %d/%d", buys, sells)
	}
	if signals[3].Position != ActionBuy {
		t.Errorf("buy expected on the first day both MAs exist, got %s", signals[3].Position)
	}
}

func TestGenerateSignalsFallingSeriesNoTrades(t *testing.T) {
	strat, _ := NewMACrossover(2, 4)
	signals, err := strat.GenerateSignals(series(8, 7, 6, 5, 4, 3, 2, 1))
	if err != nil {
		t.Fatal(err)
	}
	for i, sp := range signals {
		if sp.Position != ActionHold {
			t.Errorf("day %d got %s on a falling series", i, sp.Position)
		}
	}
}

func TestGenerateSignalsFlatSeriesTiesAreHold(t *testing.T) {
	strat, _ := NewMACrossover(2, 4)
	signals, err := strat.GenerateSignals(series(10, 10, 10, 10, 10, 10))
	if err != nil {
		t.Fatal(err)
	}
	for i, sp := range signals {
		if sp.Position != ActionHold {
			t.Errorf("day %d got %s on a flat series", i, sp.Position)
		}
	}
}

func TestGenerateSignalsEmptySeries(t *testing.T) {
	strat, _ := NewMACrossover(2, 4)
	signals, err := strat.GenerateSignals(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(signals) != 0 {
		t.Fatalf("expected no signals, got %d", len(signals))
	}
}

func TestGenerateSignalsDeterministic(t *testing.T) {
	strat, _ := NewMACrossover(3, 6)
	prices := series(10, 12, 9, 14, 13, 15, 11, 16, 18, 12, 14, 19)

	a, err := strat.GenerateSignals(prices)
	if err != nil {
		t.Fatal(err)
	}
	b, err := strat.GenerateSignals(prices)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs produced different signal series")
	}
}

func TestMACrossoverName(t *testing.T) {
	strat, _ := NewMACrossover(20, 50)
	if got := strat.Name(); got != "ma-cross 20/50" {
		t.Errorf("Name() = %q", got)
	}
}
