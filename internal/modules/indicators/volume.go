package indicators

import "github.com/markcheno/go-talib"

// obv is the running sum of signed volume starting at 0 on the first bar.
// talib seeds with the first bar's volume, which is subtracted out.
func obv(closes, volumes []float64) *Line {
	n := len(closes)
	if n == 0 {
		return unavailable(OBV, 0)
	}
	values := talib.Obv(closes, volumes)
	base := volumes[0]
	for i := range values {
		values[i] -= base
	}
	return newLine(OBV, values, 0)
}
