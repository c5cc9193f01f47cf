package formulas

import "math"

// SharpeRatio = (mean(r) - rf) / stdev(r) * sqrt(periodsPerYear), where rf is
// the per-period risk-free rate. Zero dispersion yields 0.
func SharpeRatio(returns []float64, riskFreePerPeriod, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	sd := StdDev(returns)
	if sd == 0 {
		return 0
	}
	return (Mean(returns) - riskFreePerPeriod) / sd * math.Sqrt(periodsPerYear)
}

// DownsideDeviation is the sample standard deviation of the negative excess
// returns only.
func DownsideDeviation(returns []float64, riskFreePerPeriod float64) float64 {
	negatives := make([]float64, 0, len(returns))
	for _, r := range returns {
		if excess := r - riskFreePerPeriod; excess < 0 {
			negatives = append(negatives, excess)
		}
	}
	return StdDev(negatives)
}

// UpsideDeviation is the sample standard deviation of the positive excess
// returns only.
func UpsideDeviation(returns []float64, riskFreePerPeriod float64) float64 {
	positives := make([]float64, 0, len(returns))
	for _, r := range returns {
		if excess := r - riskFreePerPeriod; excess > 0 {
			positives = append(positives, excess)
		}
	}
	return StdDev(positives)
}

// SortinoRatio replaces the Sharpe denominator with the downside deviation.
func SortinoRatio(returns []float64, riskFreePerPeriod, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	dd := DownsideDeviation(returns, riskFreePerPeriod)
	if dd == 0 {
		return 0
	}
	return (Mean(returns) - riskFreePerPeriod) / dd * math.Sqrt(periodsPerYear)
}

// CalmarRatio = annualized return / max drawdown. No drawdown yields 0.
func CalmarRatio(annualizedReturn, maxDrawdown float64) float64 {
	if maxDrawdown <= 0 {
		return 0
	}
	return annualizedReturn / maxDrawdown
}

// WinRate is the share of strictly positive returns.
func WinRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

// ProfitLossRatio is mean gain over mean absolute loss. No losses yields 0.
func ProfitLossRatio(returns []float64) float64 {
	var gains, losses []float64
	for _, r := range returns {
		switch {
		case r > 0:
			gains = append(gains, r)
		case r < 0:
			losses = append(losses, -r)
		}
	}
	if len(gains) == 0 || len(losses) == 0 {
		return 0
	}
	return Mean(gains) / Mean(losses)
}
