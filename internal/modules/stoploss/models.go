package stoploss

import (
	"fmt"

	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/indicators"
)

// Method selects how stop and target are placed.
type Method string

const (
	MethodFixed             Method = "fixed"
	MethodATR               Method = "atr"
	MethodSupportResistance Method = "support_resistance"
)

// Methods lists every planning method.
var Methods = []Method{MethodFixed, MethodATR, MethodSupportResistance}

// ParseMethod resolves a method name.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown stop-loss method %q", domain.ErrInvalidConfiguration, s)
}

// Request describes the position to protect. Entry defaults to the last
// close of Series. Series is needed by support_resistance and Indicators by
// atr.
type Request struct {
	Side       domain.Side
	Entry      float64
	Series     *domain.Series
	Indicators *indicators.Set
}

// Target is an exit plan. For longs Stop < Entry < Target; shorts mirror it.
type Target struct {
	Symbol          string      `json:"symbol" msgpack:"symbol"`
	Side            domain.Side `json:"side" msgpack:"side"`
	Method          Method      `json:"method" msgpack:"method"`
	Entry           float64     `json:"entry" msgpack:"entry"`
	Stop            float64     `json:"stop" msgpack:"stop"`
	Target          float64     `json:"target" msgpack:"target"`
	RiskRewardRatio float64     `json:"risk_reward_ratio" msgpack:"risk_reward_ratio"`
	StopPercent     float64     `json:"stop_percent" msgpack:"stop_percent"`
	TargetPercent   float64     `json:"target_percent" msgpack:"target_percent"`
	Reason          string      `json:"reason" msgpack:"reason"`
}
