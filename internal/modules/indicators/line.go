package indicators

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Line is one indicator series aligned to its input bars. Entries before
// Start are unavailable (warm-up); Values holds zeros there.
type Line struct {
	Name   string    `json:"name" msgpack:"name"`
	Start  int       `json:"start" msgpack:"start"`
	Values []float64 `json:"values" msgpack:"values"`
}

func newLine(name string, values []float64, start int) *Line {
	if start > len(values) {
		start = len(values)
	}
	if start < 0 {
		start = 0
	}
	for i := 0; i < start; i++ {
		values[i] = 0
	}
	return &Line{Name: name, Start: start, Values: values}
}

func unavailable(name string, n int) *Line {
	return &Line{Name: name, Start: n, Values: make([]float64, n)}
}

// Len returns the number of entries, available or not.
func (l *Line) Len() int { return len(l.Values) }

// Unavailable returns the length of the warm-up prefix.
func (l *Line) Unavailable() int { return l.Start }

// At returns the value at i and whether it is available.
func (l *Line) At(i int) (float64, bool) {
	if i < l.Start || i < 0 || i >= len(l.Values) {
		return 0, false
	}
	return l.Values[i], true
}

// Back returns the value k bars before the last one (k=0 is the latest).
func (l *Line) Back(k int) (float64, bool) {
	return l.At(len(l.Values) - 1 - k)
}

// Latest returns the most recent value.
func (l *Line) Latest() (float64, bool) {
	return l.Back(0)
}

// Available returns a copy of the available values.
func (l *Line) Available() []float64 {
	out := make([]float64, len(l.Values)-l.Start)
	copy(out, l.Values[l.Start:])
	return out
}

// MarshalJSON renders unavailable entries as null.
func (l *Line) MarshalJSON() ([]byte, error) {
	values := make([]*float64, len(l.Values))
	for i := l.Start; i < len(l.Values); i++ {
		v := l.Values[i]
		values[i] = &v
	}
	return json.Marshal(struct {
		Name   string     `json:"name"`
		Values []*float64 `json:"values"`
	}{l.Name, values})
}

// Line names produced by the engine. Moving averages are named by period
// through MA and EMA.
const (
	Close      = "close"
	MACD       = "macd"
	MACDSignal = "macd_signal"
	MACDHist   = "macd_hist"
	RSI        = "rsi"
	K          = "k"
	D          = "d"
	J          = "j"
	BollUpper  = "boll_upper"
	BollMiddle = "boll_middle"
	BollLower  = "boll_lower"
	BollWidth  = "boll_width"
	ATR        = "atr"
	OBV        = "obv"
	ADX        = "adx"
	PlusDI     = "plus_di"
	MinusDI    = "minus_di"
)

// MA names the simple moving average line for period.
func MA(period int) string { return fmt.Sprintf("ma%d", period) }

// EMA names the exponential moving average line for period.
func EMA(period int) string { return fmt.Sprintf("ema%d", period) }

// Set is the full indicator output for one series.
type Set struct {
	Symbol     string           `json:"symbol" msgpack:"symbol"`
	Length     int              `json:"length" msgpack:"length"`
	MAPeriods  []int            `json:"ma_periods" msgpack:"ma_periods"` // ascending
	EMAPeriods []int            `json:"ema_periods" msgpack:"ema_periods"`
	Lines      map[string]*Line `json:"lines" msgpack:"lines"`
}

func newSet(symbol string, length int) *Set {
	return &Set{Symbol: symbol, Length: length, Lines: make(map[string]*Line)}
}

func (s *Set) put(l *Line) { s.Lines[l.Name] = l }

// Line returns the named line, or an all-unavailable line when absent.
func (s *Set) Line(name string) *Line {
	if l, ok := s.Lines[name]; ok {
		return l
	}
	return unavailable(name, s.Length)
}

// Latest returns the last value of the named line.
func (s *Set) Latest(name string) (float64, bool) {
	return s.Line(name).Latest()
}

// Names lists the line names in lexical order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Lines))
	for n := range s.Lines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
