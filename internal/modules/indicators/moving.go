package indicators

import "github.com/markcheno/go-talib"

// sma returns the simple moving average. talib indexes past the end of short
// inputs, so those are answered with an all-unavailable line up front.
func sma(name string, values []float64, period int) *Line {
	if len(values) < period {
		return unavailable(name, len(values))
	}
	return newLine(name, talib.Sma(values, period), period-1)
}

// ema returns the SMA-seeded exponential moving average (alpha = 2/(n+1)).
func ema(name string, values []float64, period int) *Line {
	if len(values) < period {
		return unavailable(name, len(values))
	}
	return newLine(name, talib.Ema(values, period), period-1)
}

// macd derives the MACD line, its signal and histogram. The signal is an
// exponential average of the MACD line seeded with its first available value,
// so all three lines share the slow EMA's warm-up.
func macd(closes []float64, fast, slow, signal int) (line, sig, hist *Line) {
	n := len(closes)
	if n < slow {
		return unavailable(MACD, n), unavailable(MACDSignal, n), unavailable(MACDHist, n)
	}

	fastEMA := talib.Ema(closes, fast)
	slowEMA := talib.Ema(closes, slow)
	start := slow - 1
	alpha := 2 / float64(signal+1)

	macdValues := make([]float64, n)
	sigValues := make([]float64, n)
	histValues := make([]float64, n)
	for i := start; i < n; i++ {
		macdValues[i] = fastEMA[i] - slowEMA[i]
		if i == start {
			sigValues[i] = macdValues[i]
		} else {
			sigValues[i] = alpha*macdValues[i] + (1-alpha)*sigValues[i-1]
		}
		histValues[i] = macdValues[i] - sigValues[i]
	}

	return newLine(MACD, macdValues, start), newLine(MACDSignal, sigValues, start), newLine(MACDHist, histValues, start)
}
