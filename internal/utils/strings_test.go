package utils

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"single value", "AAPL", []string{"AAPL"}},
		{"varied spacing", "SPY,  QQQ , IWM", []string{"SPY", "QQQ", "IWM"}},
		{"trailing comma", "SPY,", []string{"SPY"}},
		{"leading comma", ",QQQ", []string{"QQQ"}},
		{"only spaces", "   ", nil},
		{"comma only", ",", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCSV(tt.input))
		})
	}
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BRK.B", NormalizeSymbol("  brk.b "))
}

func TestStats(t *testing.T) {
	s := Stats{OperationName: "screen"}
	assert.Equal(t, time.Duration(0), s.Average())

	s.Add(3 * time.Millisecond)
	s.Add(time.Millisecond)
	s.Add(2 * time.Millisecond)

	assert.Equal(t, int64(3), s.CallCount)
	assert.Equal(t, time.Millisecond, s.MinDuration)
	assert.Equal(t, 3*time.Millisecond, s.MaxDuration)
	assert.Equal(t, 2*time.Millisecond, s.Average())
	s.Log(zerolog.Nop())
}

func TestTimer(t *testing.T) {
	timer := NewTimer("op", time.Nanosecond, zerolog.Nop())
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Stop(), time.Millisecond)
}
