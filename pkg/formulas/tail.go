package formulas

// ValueAtRisk returns the historical VaR at the given confidence as a
// positive loss: the negated (1-confidence)-quantile of returns.
func ValueAtRisk(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return -Quantile(1-confidence, returns)
}

// ConditionalValueAtRisk returns the expected shortfall as a positive loss:
// the negated mean of all returns at or below the VaR quantile.
func ConditionalValueAtRisk(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	threshold := Quantile(1-confidence, returns)
	sum := 0.0
	count := 0
	for _, r := range returns {
		if r <= threshold {
			sum += r
			count++
		}
	}
	if count == 0 {
		return -threshold
	}
	return -sum / float64(count)
}
