// Package domain provides the market and portfolio models consumed by the
// analysis modules, together with the error kinds they report.
package domain

import (
	"fmt"
	"math"
	"time"
)

// Side is the direction of an intended position
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideLong || s == SideShort
}

// Bar is one OHLCV observation
type Bar struct {
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
	Open      float64   `json:"open" msgpack:"open"`
	High      float64   `json:"high" msgpack:"high"`
	Low       float64   `json:"low" msgpack:"low"`
	Close     float64   `json:"close" msgpack:"close"`
	Volume    float64   `json:"volume" msgpack:"volume"`
}

// Validate checks the OHLC envelope and volume sign.
func (b Bar) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}, {"volume", b.Volume},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s is not finite", f.name)
		}
	}
	if b.High < math.Max(b.Open, b.Close) || b.High < b.Low {
		return fmt.Errorf("high %.6g below open/close/low", b.High)
	}
	if b.Low > math.Min(b.Open, b.Close) {
		return fmt.Errorf("low %.6g above open/close", b.Low)
	}
	// low bounds every other price, so this covers all four
	if b.Low <= 0 {
		return fmt.Errorf("non-positive price %.6g", b.Low)
	}
	if b.Volume < 0 {
		return fmt.Errorf("negative volume %.6g", b.Volume)
	}
	return nil
}

// Series is an immutable, time-ordered run of bars for one symbol.
// Build it with NewSeries; accessors hand out copies.
type Series struct {
	symbol string
	bars   []Bar
}

// NewSeries validates bars and returns a series that owns a private copy.
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	if len(bars) == 0 {
		return nil, &MalformedSeriesError{Symbol: symbol, Index: -1, Reason: "series is empty"}
	}

	owned := make([]Bar, len(bars))
	copy(owned, bars)

	for i, bar := range owned {
		if err := bar.Validate(); err != nil {
			return nil, &MalformedSeriesError{Symbol: symbol, Index: i, Reason: err.Error()}
		}
		if i > 0 && !bar.Timestamp.After(owned[i-1].Timestamp) {
			reason := "timestamps not strictly increasing"
			if bar.Timestamp.Equal(owned[i-1].Timestamp) {
				reason = "duplicate timestamp"
			}
			return nil, &MalformedSeriesError{Symbol: symbol, Index: i, Reason: reason}
		}
	}

	return &Series{symbol: symbol, bars: owned}, nil
}

// Symbol returns the instrument identifier.
func (s *Series) Symbol() string { return s.symbol }

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.bars) }

// Bar returns the i-th bar.
func (s *Series) Bar(i int) Bar { return s.bars[i] }

// Last returns the most recent bar.
func (s *Series) Last() Bar { return s.bars[len(s.bars)-1] }

// Bars returns a copy of all bars.
func (s *Series) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}


// Highs returns the high prices.
func (s *Series) Highs() []float64 { return s.column(func(b Bar) float64 { return b.High }) }

// Lows returns the low prices.
func (s *Series) Lows() []float64 { return s.column(func(b Bar) float64 { return b.Low }) }

// Closes returns the close prices.
func (s *Series) Closes() []float64 { return s.column(func(b Bar) float64 { return b.Close }) }

// Volumes returns the traded volumes.
func (s *Series) Volumes() []float64 { return s.column(func(b Bar) float64 { return b.Volume }) }

// Tail returns a series holding the last n bars (all of them when n >= Len).
func (s *Series) Tail(n int) *Series {
	if n >= len(s.bars) || n <= 0 {
		return s
	}
	return &Series{symbol: s.symbol, bars: s.bars[len(s.bars)-n:]}
}

// Append returns a new series extended by bar. The receiver is unchanged.
func (s *Series) Append(bar Bar) (*Series, error) {
	if err := bar.Validate(); err != nil {
		return nil, &MalformedSeriesError{Symbol: s.symbol, Index: len(s.bars), Reason: err.Error()}
	}
	if !bar.Timestamp.After(s.Last().Timestamp) {
		return nil, &MalformedSeriesError{Symbol: s.symbol, Index: len(s.bars), Reason: "timestamps not strictly increasing"}
	}
	bars := make([]Bar, len(s.bars), len(s.bars)+1)
	copy(bars, s.bars)
	return &Series{symbol: s.symbol, bars: append(bars, bar)}, nil
}

// Key identifies the series contents for memoization: symbol, length and
// last timestamp.
func (s *Series) Key() string {
	return fmt.Sprintf("%s|%d|%d", s.symbol, len(s.bars), s.Last().Timestamp.UnixNano())
}

func (s *Series) column(pick func(Bar) float64) []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = pick(b)
	}
	return out
}
