package indicators

import (
	"github.com/aristath/vigil/pkg/formulas"
	"github.com/markcheno/go-talib"
)

// rsi computes Wilder's RSI. The first bar contributes a zero change, so the
// seed (plain mean of the first period changes) lands at index period-1.
// A window with neither gains nor losses reads 50.
func rsi(closes []float64, period int) *Line {
	n := len(closes)
	if n < period {
		return unavailable(RSI, n)
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		switch delta := closes[i] - closes[i-1]; {
		case delta > 0:
			gains[i] = delta
		case delta < 0:
			losses[i] = -delta
		}
	}

	values := make([]float64, n)
	p := float64(period)
	avgGain := formulas.Mean(gains[:period])
	avgLoss := formulas.Mean(losses[:period])
	values[period-1] = rsiValue(avgGain, avgLoss)

	for i := period; i < n; i++ {
		avgGain = (avgGain*(p-1) + gains[i]) / p
		avgLoss = (avgLoss*(p-1) + losses[i]) / p
		values[i] = rsiValue(avgGain, avgLoss)
	}

	return newLine(RSI, values, period-1)
}

// RSIFromAverages converts smoothed gain and loss averages into an RSI value.
func RSIFromAverages(avgGain, avgLoss float64) float64 {
	return rsiValue(avgGain, avgLoss)
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgGain+avgLoss == 0 {
		return 50
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return formulas.Clamp(100-100/(1+rs), 0, 100)
}

// kdj computes the stochastic K, D and J lines. RSV is the close's position
// within the window's high/low range (50 when the range is empty); K and D
// are 1/smoothing-weighted running averages seeded with the first RSV.
func kdj(highs, lows, closes []float64, period, smoothing int) (k, d, j *Line) {
	n := len(closes)
	if n < period {
		return unavailable(K, n), unavailable(D, n), unavailable(J, n)
	}

	highest := talib.Max(highs, period)
	lowest := talib.Min(lows, period)
	start := period - 1
	alpha := 1 / float64(smoothing)

	kValues := make([]float64, n)
	dValues := make([]float64, n)
	jValues := make([]float64, n)

	var prevK, prevD float64
	for i := start; i < n; i++ {
		rsv := 50.0
		if span := highest[i] - lowest[i]; span > 0 {
			rsv = (closes[i] - lowest[i]) / span * 100
		}
		if i == start {
			prevK, prevD = rsv, rsv
		} else {
			prevK = alpha*rsv + (1-alpha)*prevK
			prevD = alpha*prevK + (1-alpha)*prevD
		}
		kValues[i] = prevK
		dValues[i] = prevD
		jValues[i] = 3*prevK - 2*prevD
	}

	return newLine(K, kValues, start), newLine(D, dValues, start), newLine(J, jValues, start)
}
