package analysis

import (
	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/indicators"
	"github.com/aristath/vigil/internal/modules/monitor"
	"github.com/aristath/vigil/internal/modules/risk"
	"github.com/aristath/vigil/internal/modules/signals"
	"github.com/aristath/vigil/internal/modules/sizing"
	"github.com/aristath/vigil/internal/modules/stoploss"
	"github.com/aristath/vigil/internal/modules/trend"
	"github.com/aristath/vigil/internal/modules/volatility"
)

// Request is one symbol to analyse. Zero-valued options pick defaults:
// long side, composite sizing, ATR stops.
type Request struct {
	Series       *domain.Series
	Portfolio    *domain.Portfolio
	Priors       *sizing.Priors
	Side         domain.Side
	Entry        float64
	SizingMethod sizing.Method
	StopMethod   stoploss.Method
}

// Report is the full analysis of one symbol. Stages that lack history are
// nil and explained in Warnings.
type Report struct {
	Symbol                 string                 `json:"symbol" msgpack:"symbol"`
	Bars                   int                    `json:"bars" msgpack:"bars"`
	Indicators             *indicators.Set        `json:"indicators" msgpack:"indicators"`
	Signal                 signals.Signal         `json:"signal" msgpack:"signal"`
	Trend                  *trend.Result          `json:"trend" msgpack:"trend"`
	Volatility             *volatility.Result     `json:"volatility" msgpack:"volatility"`
	RiskMetrics            *risk.Metrics          `json:"risk_metrics" msgpack:"risk_metrics"`
	PositionRecommendation *sizing.Recommendation `json:"position_recommendation" msgpack:"position_recommendation"`
	StopLossTarget         *stoploss.Target       `json:"stop_loss_target" msgpack:"stop_loss_target"`
	Alerts                 []monitor.Alert        `json:"alerts" msgpack:"alerts"`
	Warnings               []string               `json:"warnings,omitempty" msgpack:"warnings,omitempty"`
}
