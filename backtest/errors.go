package backtest

import "errors"

// Core failures are plain result errors: a component either returns a fully
// formed output or one of these, never both. Wrap with fmt.Errorf("...: %w")
// to attach the offending value, match with errors.Is.
var (
	// ErrInvalidConfig reports bad strategy windows, a missing symbol, or
	// non-positive starting capital.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptySeries reports a price series with zero entries.
	ErrEmptySeries = errors.New("empty price series")

	// ErrNonPositivePrice reports a close at or below zero.
	ErrNonPositivePrice = errors.New("non-positive close price")

	// ErrInvalidCapital reports initial cash at or below zero reaching the
	// metrics calculator.
	ErrInvalidCapital = errors.New("invalid initial capital")

	// ErrSeriesMismatch reports signal and price series of different lengths.
	ErrSeriesMismatch = errors.New("signal/price series length mismatch")
)
