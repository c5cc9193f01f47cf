// Package volatility estimates realized volatility, classifies the
// volatility regime, detects Bollinger squeezes and computes return-based
// risk ratios.
package volatility

import (
	"math"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/indicators"
	"github.com/aristath/vigil/pkg/formulas"
	"github.com/rs/zerolog"
)

// Analyzer is stateless apart from its configuration.
type Analyzer struct {
	cfg config.VolatilityConfig
	log zerolog.Logger
}

// NewAnalyzer validates cfg and returns an analyzer.
func NewAnalyzer(cfg config.VolatilityConfig, log zerolog.Logger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		cfg: cfg,
		log: log.With().Str("component", "volatility_analyzer").Logger(),
	}, nil
}

// Analyze computes the volatility picture of series. The Bollinger bandwidth
// comes from set; a nil set skips squeeze detection.
func (a *Analyzer) Analyze(series *domain.Series, set *indicators.Set) (*Result, error) {
	if series.Len() < indicators.MinBars {
		return nil, domain.NewInsufficientData("volatility", indicators.MinBars, series.Len())
	}

	closes := series.Closes()
	logReturns := formulas.LogReturns(closes)

	res := &Result{
		Historical: a.Historical(logReturns, a.cfg.Window),
		Parkinson:  a.Parkinson(series.Tail(a.cfg.Window)),
		Short:      a.Historical(logReturns, a.cfg.ShortWindow),
		Long:       a.Historical(logReturns, a.cfg.LongWindow),
		Percentile: a.percentile(logReturns),
	}
	res.Ratio, res.Regime = a.regime(res.Short, res.Long)
	if set != nil {
		res.Squeeze = a.squeeze(set.Line(indicators.BollWidth))
	}
	res.Risk = a.RiskRatios(formulas.SimpleReturns(closes))

	a.log.Debug().
		Str("symbol", series.Symbol()).
		Float64("historical", res.Historical).
		Str("regime", string(res.Regime)).
		Bool("squeeze", res.Squeeze.Active).
		Msg("Volatility analyzed")

	return res, nil
}

// Historical is the annualized sample stdev of the last window log returns
// (all of them when fewer are available).
func (a *Analyzer) Historical(logReturns []float64, window int) float64 {
	if len(logReturns) > window {
		logReturns = logReturns[len(logReturns)-window:]
	}
	return formulas.AnnualizedVolatility(logReturns, a.cfg.AnnualizationFactor)
}

// Parkinson is the high/low range estimator
// sqrt(sum(ln(H/L)^2) / (4 N ln 2)) * sqrt(annualization).
func (a *Analyzer) Parkinson(window *domain.Series) float64 {
	sum := 0.0
	n := 0
	for _, b := range window.Bars() {
		if b.Low <= 0 || b.High <= 0 {
			continue
		}
		r := math.Log(b.High / b.Low)
		sum += r * r
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum/(4*float64(n)*math.Ln2)) * math.Sqrt(a.cfg.AnnualizationFactor)
}

func (a *Analyzer) regime(short, long float64) (float64, Regime) {
	if long <= 0 {
		return 0, RegimeStable
	}
	ratio := short / long
	switch {
	case ratio > a.cfg.ExpandingRatio:
		return ratio, RegimeExpanding
	case ratio < a.cfg.ContractingRatio:
		return ratio, RegimeContracting
	default:
		return ratio, RegimeStable
	}
}

// percentile ranks the latest rolling-window volatility among all rolling
// windows of the series.
func (a *Analyzer) percentile(logReturns []float64) float64 {
	w := a.cfg.Window
	if len(logReturns) < w+1 {
		return 0
	}
	vols := make([]float64, 0, len(logReturns)-w+1)
	for end := w; end <= len(logReturns); end++ {
		vols = append(vols, formulas.StdDev(logReturns[end-w:end]))
	}
	return formulas.PercentileRank(vols[len(vols)-1], vols)
}

// squeeze flags a bandwidth strictly below the configured percentile of its
// trailing distribution (current bar included).
func (a *Analyzer) squeeze(width *indicators.Line) Squeeze {
	s := Squeeze{Status: SqueezeNormal}
	history := width.Available()
	if len(history) < 2 {
		return s
	}
	if len(history) > a.cfg.SqueezeLookback {
		history = history[len(history)-a.cfg.SqueezeLookback:]
	}

	s.Available = true
	s.Bandwidth = history[len(history)-1]
	s.Threshold = formulas.Quantile(a.cfg.SqueezePercentile/100, history)
	s.Active = s.Bandwidth < s.Threshold

	if mean := formulas.Mean(history); mean > 0 {
		s.MeanRatio = s.Bandwidth / mean
		switch {
		case s.MeanRatio < a.cfg.StrongSqueezeRatio:
			s.Status = SqueezeStrong
		case s.MeanRatio < a.cfg.SqueezeRatio:
			s.Status = SqueezeModerate
		case s.MeanRatio > a.cfg.ExpansionRatio:
			s.Status = SqueezeExpansion
		}
	}
	return s
}

// RiskRatios computes drawdown, Sharpe, Sortino, Calmar and tail risk from
// simple periodic returns.
func (a *Analyzer) RiskRatios(returns []float64) RiskRatios {
	factor := a.cfg.AnnualizationFactor
	rf := a.cfg.RiskFreeRate / factor

	r := RiskRatios{
		MaxDrawdown:        formulas.MaxDrawdownFromReturns(returns),
		Sharpe:             formulas.SharpeRatio(returns, rf, factor),
		Sortino:            formulas.SortinoRatio(returns, rf, factor),
		VaR:                formulas.ValueAtRisk(returns, a.cfg.Confidence),
		CVaR:               formulas.ConditionalValueAtRisk(returns, a.cfg.Confidence),
		Confidence:         a.cfg.Confidence,
		AnnualizedReturn:   formulas.AnnualizedReturn(returns, factor),
		DownsideVolatility: formulas.DownsideDeviation(returns, 0) * math.Sqrt(factor),
		UpsideVolatility:   formulas.UpsideDeviation(returns, 0) * math.Sqrt(factor),
	}
	r.Calmar = formulas.CalmarRatio(r.AnnualizedReturn, r.MaxDrawdown)
	return r
}
