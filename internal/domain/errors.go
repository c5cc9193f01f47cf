package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every typed error below wraps exactly one of them so
// callers can match with errors.Is.
var (
	ErrMalformedSeries      = errors.New("malformed series")
	ErrInsufficientData     = errors.New("insufficient data")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrDegenerateTarget     = errors.New("degenerate target")
	ErrInvalidPortfolio     = errors.New("invalid portfolio")
)

// MalformedSeriesError reports an input series that violates ordering or OHLC
// invariants. Index is -1 when the problem is not tied to one bar.
type MalformedSeriesError struct {
	Symbol string
	Index  int
	Reason string
}

func (e *MalformedSeriesError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s: %s", ErrMalformedSeries, e.Symbol, e.Reason)
	}
	return fmt.Sprintf("%s: %s: bar %d: %s", ErrMalformedSeries, e.Symbol, e.Index, e.Reason)
}

func (e *MalformedSeriesError) Unwrap() error { return ErrMalformedSeries }

// InsufficientDataError reports a computation with no meaningful partial
// answer for the available history.
type InsufficientDataError struct {
	Operation string
	Required  int
	Available int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %s needs %d observations, have %d", ErrInsufficientData, e.Operation, e.Required, e.Available)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// NewInsufficientData builds an InsufficientDataError.
func NewInsufficientData(operation string, required, available int) error {
	return &InsufficientDataError{Operation: operation, Required: required, Available: available}
}

// DegenerateTargetError reports a stop-loss plan with zero risk or an
// inverted stop/entry/target ordering.
type DegenerateTargetError struct {
	Method string
	Reason string
}

func (e *DegenerateTargetError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrDegenerateTarget, e.Method, e.Reason)
}

func (e *DegenerateTargetError) Unwrap() error { return ErrDegenerateTarget }
