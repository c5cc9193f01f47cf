// Package risk scores the risk of a return series.
package risk

import (
	"math"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/pkg/formulas"
	"github.com/rs/zerolog"
)

// Measurement computes Metrics from price series or return slices.
type Measurement struct {
	cfg config.RiskConfig
	log zerolog.Logger
}

// NewMeasurement validates cfg and returns a measurement.
func NewMeasurement(cfg config.RiskConfig, log zerolog.Logger) (*Measurement, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Measurement{
		cfg: cfg,
		log: log.With().Str("component", "risk_measurement").Logger(),
	}, nil
}

// Measure scores the close-to-close returns of series.
func (m *Measurement) Measure(series *domain.Series) (*Metrics, error) {
	closes := series.Closes()
	returns := formulas.SimpleReturns(closes)
	if len(returns) < m.cfg.MinReturns {
		return nil, domain.NewInsufficientData("risk", m.cfg.MinReturns+1, len(closes))
	}

	out := m.measure(series.Symbol(), returns)
	dd := formulas.Drawdown(closes)
	out.MaxDrawdown = dd.MaxDrawdown
	out.CurrentDrawdown = dd.CurrentDrawdown
	out.TotalReturn = closes[len(closes)-1]/closes[0] - 1
	m.score(out)
	m.logMetrics(out)
	return out, nil
}

// MeasureReturns scores an already materialised return series, such as a
// portfolio's daily returns.
func (m *Measurement) MeasureReturns(symbol string, returns []float64) (*Metrics, error) {
	if len(returns) < m.cfg.MinReturns {
		return nil, domain.NewInsufficientData("risk", m.cfg.MinReturns, len(returns))
	}
	for i, r := range returns {
		if !formulas.IsFinite(r) || r <= -1 {
			return nil, &domain.MalformedSeriesError{Symbol: symbol, Index: i, Reason: "return must be finite and above -100%"}
		}
	}

	out := m.measure(symbol, returns)
	curve := formulas.EquityCurve(returns)
	dd := formulas.Drawdown(curve)
	out.MaxDrawdown = dd.MaxDrawdown
	out.CurrentDrawdown = dd.CurrentDrawdown
	out.TotalReturn = formulas.CumulativeReturn(returns)
	m.score(out)
	m.logMetrics(out)
	return out, nil
}

func (m *Measurement) measure(symbol string, returns []float64) *Metrics {
	factor := m.cfg.AnnualizationFactor
	rf := m.cfg.RiskFreeRate / factor

	out := &Metrics{
		Symbol:             symbol,
		Observations:       len(returns),
		AnnualizedReturn:   formulas.AnnualizedReturn(returns, factor),
		Volatility:         formulas.AnnualizedVolatility(returns, factor),
		DownsideVolatility: formulas.DownsideDeviation(returns, 0) * math.Sqrt(factor),
		VaR:                formulas.ValueAtRisk(returns, m.cfg.Confidence),
		CVaR:               formulas.ConditionalValueAtRisk(returns, m.cfg.Confidence),
		Confidence:         m.cfg.Confidence,
		Sharpe:             formulas.SharpeRatio(returns, rf, factor),
		Sortino:            formulas.SortinoRatio(returns, rf, factor),
		WinRate:            formulas.WinRate(returns),
		ProfitLossRatio:    formulas.ProfitLossRatio(returns),
		BestPeriod:         returns[0],
		WorstPeriod:        returns[0],
	}
	for _, r := range returns[1:] {
		out.BestPeriod = math.Max(out.BestPeriod, r)
		out.WorstPeriod = math.Min(out.WorstPeriod, r)
	}
	return out
}

// score fills the sub-scores, the weighted score and the level. It needs
// MaxDrawdown to be set.
func (m *Measurement) score(out *Metrics) {
	out.Calmar = formulas.CalmarRatio(out.AnnualizedReturn, out.MaxDrawdown)
	out.SubScores = SubScores{
		Drawdown:   Normalize(out.MaxDrawdown, m.cfg.DrawdownBreakpoints),
		Volatility: Normalize(out.Volatility, m.cfg.VolatilityBreakpoints),
		VaR:        Normalize(out.VaR, m.cfg.VaRBreakpoints),
		Sharpe:     Normalize(out.Sharpe, m.cfg.SharpeBreakpoints),
	}

	w := m.cfg.Weights
	out.Score = w.Drawdown*out.SubScores.Drawdown +
		w.Volatility*out.SubScores.Volatility +
		w.VaR*out.SubScores.VaR +
		w.Sharpe*(100-out.SubScores.Sharpe)
	out.Score = formulas.Clamp(out.Score, 0, 100)
	out.Level = Classify(out.Score)
}

func (m *Measurement) logMetrics(out *Metrics) {
	m.log.Debug().
		Str("symbol", out.Symbol).
		Float64("volatility", out.Volatility).
		Float64("max_drawdown", out.MaxDrawdown).
		Float64("sharpe", out.Sharpe).
		Float64("score", out.Score).
		Str("level", string(out.Level)).
		Msg("Risk measured")
}

// Normalize maps v linearly from [Floor, Ceiling] onto [0, 100], clamped.
func Normalize(v float64, bp config.Breakpoints) float64 {
	if bp.Ceiling <= bp.Floor || !formulas.IsFinite(v) {
		return 0
	}
	return formulas.Clamp((v-bp.Floor)/(bp.Ceiling-bp.Floor)*100, 0, 100)
}
