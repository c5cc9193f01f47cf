package indicators

import "github.com/markcheno/go-talib"

// bollinger computes SMA-centred bands at +/- k population standard
// deviations and the relative bandwidth (upper-lower)/middle.
func bollinger(closes []float64, period int, k float64) (upper, middle, lower, width *Line) {
	n := len(closes)
	if n < period {
		return unavailable(BollUpper, n), unavailable(BollMiddle, n), unavailable(BollLower, n), unavailable(BollWidth, n)
	}

	u, m, l := talib.BBands(closes, period, k, k, talib.SMA)
	start := period - 1

	w := make([]float64, n)
	for i := start; i < n; i++ {
		if m[i] != 0 {
			w[i] = (u[i] - l[i]) / m[i]
		}
	}

	return newLine(BollUpper, u, start), newLine(BollMiddle, m, start), newLine(BollLower, l, start), newLine(BollWidth, w, start)
}
