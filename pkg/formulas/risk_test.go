package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrawdown(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		max     float64
		current float64
		periods int
	}{
		{"too short", []float64{100}, 0, 0, 0},
		{"monotonic rise", []float64{100, 110, 120}, 0, 0, 0},
		{"recovered dip", []float64{100, 80, 120}, 0.20, 0, 0},
		{"still under water", []float64{100, 120, 90, 96}, 0.25, 0.20, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Drawdown(tt.values)
			assert.InDelta(t, tt.max, m.MaxDrawdown, 1e-9)
			assert.InDelta(t, tt.current, m.CurrentDrawdown, 1e-9)
			assert.Equal(t, tt.periods, m.PeriodsInDrawdown)
		})
	}
}

func TestMaxDrawdownFromReturns(t *testing.T) {
	// 1 -> 1.1 -> 0.88 -> 0.968
	dd := MaxDrawdownFromReturns([]float64{0.10, -0.20, 0.10})
	assert.InDelta(t, 0.20, dd, 1e-9)
	assert.Equal(t, 0.0, MaxDrawdownFromReturns(nil))

	curve := EquityCurve([]float64{0.10, -0.20})
	assert.InDeltaSlice(t, []float64{1, 1.1, 0.88}, curve, 1e-12)
}

func TestValueAtRiskAndCVaR(t *testing.T) {
	returns := makeReturns(0.01, 19)
	returns = append(returns, -0.10)

	assert.InDelta(t, 0.10, ValueAtRisk(returns, 0.95), 1e-9)
	assert.InDelta(t, 0.10, ConditionalValueAtRisk(returns, 0.95), 1e-9)

	assert.Equal(t, 0.0, ValueAtRisk(nil, 0.95))
	assert.Equal(t, 0.0, ConditionalValueAtRisk(nil, 0.95))
}

func TestCVaRIsAtLeastVaR(t *testing.T) {
	returns := []float64{-0.05, -0.03, -0.02, 0.01, 0.02, 0.00, -0.01, 0.03, 0.015, -0.04}
	for _, c := range []float64{0.8, 0.9, 0.95, 0.99} {
		assert.GreaterOrEqual(t, ConditionalValueAtRisk(returns, c), ValueAtRisk(returns, c)-1e-12)
	}
}

func TestSharpeAndSortino(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, -0.02, 0.01}

	expectedSharpe := Mean(returns) / StdDev(returns) * math.Sqrt(252)
	assert.InDelta(t, expectedSharpe, SharpeRatio(returns, 0, TradingDaysPerYear), 1e-9)

	expectedSortino := Mean(returns) / StdDev([]float64{-0.01, -0.02}) * math.Sqrt(252)
	assert.InDelta(t, expectedSortino, SortinoRatio(returns, 0, TradingDaysPerYear), 1e-9)

	assert.Equal(t, 0.0, SharpeRatio(makeReturns(0.01, 10), 0, TradingDaysPerYear), "zero dispersion")
	assert.Equal(t, 0.0, SortinoRatio(makeReturns(0.01, 10), 0, TradingDaysPerYear), "no downside")
}

func TestCalmarRatio(t *testing.T) {
	assert.InDelta(t, 2.0, CalmarRatio(0.4, 0.2), 1e-12)
	assert.Equal(t, 0.0, CalmarRatio(0.4, 0))
}

func TestWinRateAndProfitLoss(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.04, -0.03, 0}

	assert.InDelta(t, 0.4, WinRate(returns), 1e-12)
	assert.InDelta(t, 1.5, ProfitLossRatio(returns), 1e-12)
	assert.Equal(t, 0.0, ProfitLossRatio([]float64{0.01, 0.02}))
	assert.Equal(t, 0.0, WinRate(nil))
}
