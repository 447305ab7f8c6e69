package api

import (
	"sync"

	"backtester/backtest"
)

// RunStore holds completed backtest results in memory, keyed by run id, so
// the dashboard can fetch the JSON bundle and chart separately from the run
// call. Results evaporate with the process; nothing is persisted.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*backtest.Result
	ids  []string // insertion order, for eviction
	max  int
}

// NewRunStore keeps up to max results, evicting the oldest.
func NewRunStore(max int) *RunStore {
	if max <= 0 {
		max = 100
	}
	return &RunStore{
		runs: make(map[string]*backtest.Result),
		max:  max,
	}
}

func (s *RunStore) Put(res *backtest.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[res.RunID]; !exists {
		s.ids = append(s.ids, res.RunID)
	}
	s.runs[res.RunID] = res
	for len(s.ids) > s.max {
		delete(s.runs, s.ids[0])
		s.ids = s.ids[1:]
	}
}

func (s *RunStore) Get(id string) *backtest.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs[id]
}

func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
