package formulas

import "math"

// SimpleReturns converts prices to percentage returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]; a zero price yields 0.
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// LogReturns converts prices to log returns ln(P[i+1]/P[i]).
// Non-positive prices yield 0 for the affected step.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] > 0 && prices[i] > 0 {
			returns[i-1] = math.Log(prices[i] / prices[i-1])
		}
	}
	return returns
}

// CumulativeReturn compounds periodic returns: (1+r1)*(1+r2)*...*(1+rN) - 1.
func CumulativeReturn(returns []float64) float64 {
	cumulative := 1.0
	for _, r := range returns {
		cumulative *= 1 + r
	}
	return cumulative - 1
}

// AnnualizedReturn converts periodic returns to a compound annual growth rate.
//
// Formula: ((1+r1)*(1+r2)*...*(1+rN))^(periodsPerYear/N) - 1
//
// Very short histories (< 3 periods) return the plain cumulative return to
// avoid extreme annualization.
func AnnualizedReturn(returns []float64, periodsPerYear float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	cumulative := 1 + CumulativeReturn(returns)
	n := float64(len(returns))
	if n < 3 || periodsPerYear <= 0 {
		return cumulative - 1
	}
	if cumulative <= 0 {
		return -1
	}

	return math.Pow(cumulative, periodsPerYear/n) - 1
}

// AnnualizedVolatility scales the sample standard deviation of periodic
// returns by sqrt(periodsPerYear).
func AnnualizedVolatility(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 || periodsPerYear <= 0 {
		return 0
	}
	return StdDev(returns) * math.Sqrt(periodsPerYear)
}
