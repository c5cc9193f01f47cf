package sizing

import (
	"fmt"

	"github.com/aristath/vigil/internal/domain"
)

// Method selects a sizing rule.
type Method string

const (
	MethodKelly      Method = "kelly"
	MethodVolatility Method = "volatility"
	MethodFixedRisk  Method = "fixed_risk"
	MethodComposite  Method = "composite"
)

// Methods lists every sizing method.
var Methods = []Method{MethodKelly, MethodVolatility, MethodFixedRisk, MethodComposite}

// ParseMethod resolves a method name.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown sizing method %q", domain.ErrInvalidConfiguration, s)
}

// PositionRisk grades the size of a recommended fraction.
type PositionRisk string

const (
	PositionRiskVeryLow PositionRisk = "very_low"
	PositionRiskLow     PositionRisk = "low"
	PositionRiskMedium  PositionRisk = "medium"
	PositionRiskHigh    PositionRisk = "high"
)

func assessPositionRisk(fraction float64) PositionRisk {
	switch {
	case fraction >= 0.5:
		return PositionRiskHigh
	case fraction >= 0.3:
		return PositionRiskMedium
	case fraction >= 0.1:
		return PositionRiskLow
	default:
		return PositionRiskVeryLow
	}
}

// Priors are the caller's trade-outcome estimates.
type Priors struct {
	WinRate     float64 `json:"win_rate" msgpack:"win_rate"`
	PayoffRatio float64 `json:"payoff_ratio" msgpack:"payoff_ratio"`
}

// Inputs carries everything a sizing method may consume. Zero values mean
// "not supplied".
type Inputs struct {
	Symbol             string  `json:"symbol" msgpack:"symbol"`
	Priors             *Priors `json:"priors,omitempty" msgpack:"priors,omitempty"`
	RealizedVolatility float64 `json:"realized_volatility" msgpack:"realized_volatility"` // annualized
	StopLossFraction   float64 `json:"stop_loss_fraction" msgpack:"stop_loss_fraction"`
}

// Component is one base method's share of a composite recommendation.
type Component struct {
	Method   Method  `json:"method" msgpack:"method"`
	Fraction float64 `json:"fraction" msgpack:"fraction"`
	Weight   float64 `json:"weight" msgpack:"weight"`
}

// Recommendation is the sizing output. Fraction is always within
// [MinPosition, MaxPosition]; RawFraction is the unclipped value.
type Recommendation struct {
	Symbol      string       `json:"symbol" msgpack:"symbol"`
	Method      Method       `json:"method" msgpack:"method"`
	Fraction    float64      `json:"fraction" msgpack:"fraction"`
	RawFraction float64      `json:"raw_fraction" msgpack:"raw_fraction"`
	MinPosition float64      `json:"min_position" msgpack:"min_position"`
	MaxPosition float64      `json:"max_position" msgpack:"max_position"`
	RiskLevel   PositionRisk `json:"risk_level" msgpack:"risk_level"`
	Confidence  float64      `json:"confidence" msgpack:"confidence"`
	FellBack    bool         `json:"fell_back" msgpack:"fell_back"`
	Reason      string       `json:"reason" msgpack:"reason"`
	Components  []Component  `json:"components,omitempty" msgpack:"components,omitempty"`
}
