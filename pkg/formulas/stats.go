// Package formulas holds the numeric building blocks shared by the analysis
// modules: descriptive statistics, returns, drawdown, tail risk and
// risk-adjusted ratios.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the default annualization factor for daily bars.
const TradingDaysPerYear = 252.0

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample (n-1) standard deviation.
// Fewer than two observations yield 0.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Quantile returns the p-quantile of data using linear interpolation of the
// empirical CDF. The input is not modified.
func Quantile(p float64, data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := sortedCopy(data)
	p = Clamp(p, 0, 1)
	if p == 0 {
		return sorted[0]
	}
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// PercentileRank returns the share (0-100) of data strictly below value.
func PercentileRank(value float64, data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	below := 0
	for _, v := range data {
		if v < value {
			below++
		}
	}
	return float64(below) / float64(len(data)) * 100
}

// LinearSlope fits y = a + b*x over x = 0..n-1 and returns b.
func LinearSlope(y []float64) float64 {
	if len(y) < 2 {
		return 0
	}
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	_, slope := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(slope) {
		return 0
	}
	return slope
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sortedCopy(data []float64) []float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return sorted
}
