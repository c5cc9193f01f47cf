// Package trend classifies trend direction and strength, locates support and
// resistance, and detects price/RSI divergence.
package trend

import (
	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/indicators"
	"github.com/aristath/vigil/pkg/formulas"
	"github.com/rs/zerolog"
)

// minAlignedMAs is the number of available moving averages an alignment
// verdict needs.
const minAlignedMAs = 3

// Analyzer is stateless apart from its configuration.
type Analyzer struct {
	cfg config.TrendConfig
	log zerolog.Logger
}

// NewAnalyzer validates cfg and returns an analyzer.
func NewAnalyzer(cfg config.TrendConfig, log zerolog.Logger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		cfg: cfg,
		log: log.With().Str("component", "trend_analyzer").Logger(),
	}, nil
}

// Analyze classifies the trend of series using the precomputed set.
func (a *Analyzer) Analyze(series *domain.Series, set *indicators.Set) (*Result, error) {
	if series.Len() < indicators.MinBars {
		return nil, domain.NewInsufficientData("trend", indicators.MinBars, series.Len())
	}
	if set.Length != series.Len() {
		return nil, &domain.MalformedSeriesError{Symbol: series.Symbol(), Index: -1, Reason: "indicator set does not match series length"}
	}

	window := series.Tail(a.cfg.Lookback)
	closes := window.Closes()

	res := &Result{
		Alignment:          alignment(set),
		SlopePercent:       slopePercent(closes),
		PriceChangePercent: priceChange(closes),
		Support:            minOf(window.Lows()),
		Resistance:         maxOf(window.Highs()),
	}
	res.Score = res.Alignment + a.slopeScore(res.SlopePercent)
	res.Direction = classify(res.Score)
	res.Strength = a.strength(set)
	res.SupportLevels, res.ResistanceLevels = a.levels(series)
	res.Divergence, res.DivergenceNote = a.divergence(series.Closes(), set.Line(indicators.RSI))

	a.log.Debug().
		Str("symbol", series.Symbol()).
		Str("direction", string(res.Direction)).
		Int("score", res.Score).
		Float64("slope_pct", res.SlopePercent).
		Str("divergence", string(res.Divergence)).
		Msg("Trend analyzed")

	return res, nil
}

// alignment is +1 when the available MAs fall in period order (shortest on
// top), -1 for the reverse, 0 otherwise or with fewer than three MAs.
func alignment(set *indicators.Set) int {
	var values []float64
	for _, p := range set.MAPeriods {
		if v, ok := set.Latest(indicators.MA(p)); ok {
			values = append(values, v)
		}
	}
	if len(values) < minAlignedMAs {
		return 0
	}

	bullish, bearish := true, true
	for i := 1; i < len(values); i++ {
		if !(values[i-1] > values[i]) {
			bullish = false
		}
		if !(values[i-1] < values[i]) {
			bearish = false
		}
	}
	switch {
	case bullish:
		return 1
	case bearish:
		return -1
	default:
		return 0
	}
}

// slopePercent expresses the regression slope per bar as a percentage of the
// mean close.
func slopePercent(closes []float64) float64 {
	mean := formulas.Mean(closes)
	if mean == 0 {
		return 0
	}
	return formulas.LinearSlope(closes) / mean * 100
}

func (a *Analyzer) slopeScore(pct float64) int {
	switch {
	case pct >= a.cfg.StrongSlopeThreshold:
		return 2
	case pct >= a.cfg.SlopeThreshold:
		return 1
	case pct <= -a.cfg.StrongSlopeThreshold:
		return -2
	case pct <= -a.cfg.SlopeThreshold:
		return -1
	default:
		return 0
	}
}

func classify(score int) Direction {
	switch {
	case score >= 3:
		return DirectionStrongUp
	case score >= 1:
		return DirectionUp
	case score <= -3:
		return DirectionStrongDown
	case score <= -1:
		return DirectionDown
	default:
		return DirectionSideways
	}
}

func priceChange(closes []float64) float64 {
	if len(closes) < 2 || closes[0] == 0 {
		return 0
	}
	return (closes[len(closes)-1] - closes[0]) / closes[0] * 100
}

func (a *Analyzer) strength(set *indicators.Set) Strength {
	s := Strength{Label: "weak", Bias: "neutral"}

	if adx, ok := set.Latest(indicators.ADX); ok {
		s.ADX = formulas.Clamp(adx, 0, 100)
		s.Available = true
	}
	plus, okPlus := set.Latest(indicators.PlusDI)
	minus, okMinus := set.Latest(indicators.MinusDI)
	if okPlus && okMinus {
		s.PlusDI, s.MinusDI = plus, minus
		switch {
		case plus > minus:
			s.Bias = "bullish"
		case minus > plus:
			s.Bias = "bearish"
		}
	}

	switch {
	case s.ADX > a.cfg.ADXStrong:
		s.Label = "strong"
	case s.ADX > a.cfg.ADXModerate:
		s.Label = "moderate"
	}
	return s
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
