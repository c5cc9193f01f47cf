package indicators

import (
	"math"

	"github.com/aristath/vigil/pkg/formulas"
	"github.com/markcheno/go-talib"
)

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|) for bar
// i; the first bar has no previous close and uses high-low.
func TrueRange(highs, lows, closes []float64) []float64 {
	n := len(closes)
	tr := make([]float64, n)
	if n == 0 {
		return tr
	}
	tr[0] = highs[0] - lows[0]
	if n > 1 {
		copy(tr[1:], talib.TRange(highs, lows, closes)[1:])
	}
	return tr
}

// atr is the Wilder-smoothed true range; the seed is the mean of the first
// period true ranges.
func atr(highs, lows, closes []float64, period int) *Line {
	n := len(closes)
	if n < period {
		return unavailable(ATR, n)
	}

	tr := TrueRange(highs, lows, closes)
	values := make([]float64, n)
	p := float64(period)
	prev := formulas.Mean(tr[:period])
	values[period-1] = prev
	for i := period; i < n; i++ {
		prev = (prev*(p-1) + tr[i]) / p
		values[i] = prev
	}

	return newLine(ATR, values, period-1)
}

// directional computes ADX and the +DI/-DI lines. ADX needs 2*period bars,
// the DI lines period+1.
func directional(highs, lows, closes []float64, period int) (adx, plus, minus *Line) {
	n := len(closes)
	if n <= period {
		return unavailable(ADX, n), unavailable(PlusDI, n), unavailable(MinusDI, n)
	}

	plus = newLine(PlusDI, sanitize(talib.PlusDI(highs, lows, closes, period)), period)
	minus = newLine(MinusDI, sanitize(talib.MinusDI(highs, lows, closes, period)), period)

	if n < 2*period {
		return unavailable(ADX, n), plus, minus
	}
	adx = newLine(ADX, sanitize(talib.Adx(highs, lows, closes, period)), 2*period-1)
	return adx, plus, minus
}

// sanitize zeroes NaN/Inf produced by talib on zero-range input.
func sanitize(values []float64) []float64 {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[i] = 0
		}
	}
	return values
}
