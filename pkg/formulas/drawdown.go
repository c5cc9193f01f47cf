package formulas

// DrawdownMetrics represents drawdown analysis results
type DrawdownMetrics struct {
	MaxDrawdown       float64 `json:"max_drawdown" msgpack:"max_drawdown"`         // positive fraction, 0.25 = 25% below peak
	CurrentDrawdown   float64 `json:"current_drawdown" msgpack:"current_drawdown"` // distance of the last value from its peak
	PeriodsInDrawdown int     `json:"periods_in_drawdown" msgpack:"periods_in_drawdown"`
}

// MaxDrawdown returns the largest peak-to-trough decline of a value curve as
// a positive fraction.
func MaxDrawdown(values []float64) float64 {
	m := Drawdown(values)
	return m.MaxDrawdown
}

// Drawdown walks a value curve once and reports maximum and current drawdown.
func Drawdown(values []float64) DrawdownMetrics {
	var m DrawdownMetrics
	if len(values) < 2 {
		return m
	}

	peak := values[0]
	peakIndex := 0
	for i, v := range values {
		if v > peak {
			peak = v
			peakIndex = i
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > m.MaxDrawdown {
				m.MaxDrawdown = dd
			}
		}
	}

	last := values[len(values)-1]
	if peak > 0 {
		m.CurrentDrawdown = (peak - last) / peak
	}
	if m.CurrentDrawdown > 0 {
		m.PeriodsInDrawdown = len(values) - 1 - peakIndex
	}
	return m
}

// EquityCurve compounds periodic returns into a value curve starting at 1.
func EquityCurve(returns []float64) []float64 {
	curve := make([]float64, len(returns)+1)
	curve[0] = 1
	for i, r := range returns {
		curve[i+1] = curve[i] * (1 + r)
	}
	return curve
}

// MaxDrawdownFromReturns measures drawdown on the cumulative-return curve.
func MaxDrawdownFromReturns(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return MaxDrawdown(EquityCurve(returns))
}
