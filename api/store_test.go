package api

import (
	"fmt"
	"testing"

	"backtester/backtest"
)

func TestRunStoreEvictsOldest(t *testing.T) {
	s := NewRunStore(3)
	for i := 0; i < 5; i++ {
		s.Put(&backtest.Result{RunID: fmt.Sprintf("run-%d", i)})
	}

	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	if s.Get("run-0") != nil || s.Get("run-1") != nil {
		t.Error("oldest runs not evicted")
	}
	for i := 2; i < 5; i++ {
		if s.Get(fmt.Sprintf("run-%d", i)) == nil {
			t.Errorf("run-%d missing", i)
		}
	}
}

func TestRunStorePutSameIDTwice(t *testing.T) {
	s := NewRunStore(3)
	s.Put(&backtest.Result{RunID: "a", Symbol: "sh600000"})
	s.Put(&backtest.Result{RunID: "a", Symbol: "sz000001"})

	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	if got := s.Get("a"); got == nil || got.Symbol != "sz000001" {
		t.Errorf("latest result not kept: %+v", got)
	}
}
