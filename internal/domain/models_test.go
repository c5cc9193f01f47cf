package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func bar(i int, close float64) Bar {
	return Bar{
		Timestamp: day0.AddDate(0, 0, i),
		Open:      close,
		High:      close + 1,
		Low:       close - 1,
		Close:     close,
		Volume:    1000,
	}
}

func TestBarValidate(t *testing.T) {
	tests := []struct {
		name    string
		bar     Bar
		wantErr bool
	}{
		{"valid", bar(0, 100), false},
		{"flat bar", Bar{Timestamp: day0, Open: 5, High: 5, Low: 5, Close: 5}, false},
		{"high below close", Bar{Timestamp: day0, Open: 5, High: 5, Low: 4, Close: 6}, true},
		{"low above open", Bar{Timestamp: day0, Open: 4, High: 6, Low: 4.5, Close: 5}, true},
		{"negative volume", Bar{Timestamp: day0, Open: 5, High: 5, Low: 5, Close: 5, Volume: -1}, true},
		{"zero prices", Bar{Timestamp: day0, Open: 0, High: 0, Low: 0, Close: 0, Volume: 10}, true},
		{"zero low", Bar{Timestamp: day0, Open: 1, High: 2, Low: 0, Close: 1}, true},
		{"negative prices", Bar{Timestamp: day0, Open: -2, High: -1, Low: -3, Close: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bar.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSeries(t *testing.T) {
	t.Run("valid series", func(t *testing.T) {
		s, err := NewSeries("AAPL", []Bar{bar(0, 100), bar(1, 101), bar(2, 102)})
		require.NoError(t, err)
		assert.Equal(t, "AAPL", s.Symbol())
		assert.Equal(t, 3, s.Len())
		assert.Equal(t, []float64{100, 101, 102}, s.Closes())
		assert.Equal(t, []float64{101, 102, 103}, s.Highs())
		assert.Equal(t, []float64{99, 100, 101}, s.Lows())
		assert.Equal(t, 102.0, s.Last().Close)
	})

	tests := []struct {
		name string
		bars []Bar
	}{
		{"empty", nil},
		{"duplicate timestamp", []Bar{bar(0, 100), bar(0, 101)}},
		{"descending timestamps", []Bar{bar(1, 100), bar(0, 101)}},
		{"invalid bar", []Bar{bar(0, 100), {Timestamp: day0.AddDate(0, 0, 1), Open: 1, High: 0.5, Low: 0.4, Close: 1}}},
		{"zero first close", []Bar{{Timestamp: day0}, bar(1, 100)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSeries("X", tt.bars)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSeries))

			var malformed *MalformedSeriesError
			assert.True(t, errors.As(err, &malformed))
		})
	}
}

func TestSeriesIsImmutable(t *testing.T) {
	input := []Bar{bar(0, 100), bar(1, 101)}
	s, err := NewSeries("X", input)
	require.NoError(t, err)

	input[0].Close = 999
	assert.Equal(t, 100.0, s.Bar(0).Close, "series must own its bars")

	bars := s.Bars()
	bars[1].Close = 999
	assert.Equal(t, 101.0, s.Bar(1).Close, "Bars must return a copy")

	closes := s.Closes()
	closes[0] = 0
	assert.Equal(t, 100.0, s.Closes()[0])
}

func TestSeriesTailAndAppend(t *testing.T) {
	s, err := NewSeries("X", []Bar{bar(0, 100), bar(1, 101), bar(2, 102)})
	require.NoError(t, err)

	assert.Equal(t, []float64{101, 102}, s.Tail(2).Closes())
	assert.Same(t, s, s.Tail(10))

	grown, err := s.Append(bar(3, 103))
	require.NoError(t, err)
	assert.Equal(t, 4, grown.Len())
	assert.Equal(t, 3, s.Len())
	assert.NotEqual(t, s.Key(), grown.Key())

	_, err = s.Append(bar(2, 103))
	assert.ErrorIs(t, err, ErrMalformedSeries)
}

func TestSideValid(t *testing.T) {
	assert.True(t, SideLong.Valid())
	assert.True(t, SideShort.Valid())
	assert.False(t, Side("both").Valid())
}
