// Package sizing recommends position fractions from edge and risk inputs.
package sizing

import (
	"fmt"
	"math"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/pkg/formulas"
	"github.com/rs/zerolog"
)

// Sizer implements the Kelly, volatility-target, fixed-risk and composite
// rules.
type Sizer struct {
	cfg config.SizingConfig
	log zerolog.Logger
}

// NewSizer validates cfg and returns a sizer.
func NewSizer(cfg config.SizingConfig, log zerolog.Logger) (*Sizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sizer{
		cfg: cfg,
		log: log.With().Str("component", "position_sizer").Logger(),
	}, nil
}

// KellyFraction returns the full Kelly fraction p - (1-p)/b.
func KellyFraction(winRate, payoffRatio float64) float64 {
	return winRate - (1-winRate)/payoffRatio
}

// Recommend sizes a position with method.
func (s *Sizer) Recommend(method Method, in Inputs) (*Recommendation, error) {
	var rec *Recommendation
	switch method {
	case MethodKelly:
		rec = s.kelly(in)
	case MethodVolatility:
		rec = s.volatility(in)
	case MethodFixedRisk:
		rec = s.fixedRisk(in)
	case MethodComposite:
		rec = s.composite(in)
	default:
		_, err := ParseMethod(string(method))
		return nil, err
	}

	rec.Symbol = in.Symbol
	rec.Method = method
	rec.MinPosition = s.cfg.MinPosition
	rec.MaxPosition = s.cfg.MaxPosition
	rec.RiskLevel = assessPositionRisk(rec.Fraction)

	ev := s.log.Debug()
	if rec.FellBack {
		ev = s.log.Warn()
	}
	ev.Str("symbol", in.Symbol).
		Str("method", string(method)).
		Float64("fraction", rec.Fraction).
		Float64("raw", rec.RawFraction).
		Bool("fell_back", rec.FellBack).
		Msg("Position sized")
	return rec, nil
}

func (s *Sizer) clip(f float64) float64 {
	return formulas.Clamp(f, s.cfg.MinPosition, s.cfg.MaxPosition)
}

func (s *Sizer) fallback(reason string) *Recommendation {
	return &Recommendation{
		Fraction:    s.cfg.MinPosition,
		RawFraction: s.cfg.MinPosition,
		FellBack:    true,
		Confidence:  0.5,
		Reason:      reason,
	}
}

func validPriors(p *Priors) bool {
	return p != nil && formulas.IsFinite(p.WinRate) && formulas.IsFinite(p.PayoffRatio) &&
		p.WinRate > 0 && p.WinRate <= 1 && p.PayoffRatio > 0
}

func (s *Sizer) kelly(in Inputs) *Recommendation {
	if !validPriors(in.Priors) {
		return s.fallback("kelly needs a positive win rate and payoff ratio")
	}
	p, b := in.Priors.WinRate, in.Priors.PayoffRatio
	full := KellyFraction(p, b)
	raw := full * s.cfg.KellyFraction

	// Confidence rises as the win rate nears a coin flip and with payoff up to 3.
	winScore := math.Min(p, 1-p) * 2
	payoffScore := math.Min(b/3, 1)

	return &Recommendation{
		Fraction:    s.clip(raw),
		RawFraction: raw,
		Confidence:  winScore*0.4 + payoffScore*0.6,
		Reason:      fmt.Sprintf("kelly: win rate %.1f%%, payoff %.2f, full %.1f%%, scaled %.1f%%", p*100, b, full*100, raw*100),
	}
}

func (s *Sizer) volatility(in Inputs) *Recommendation {
	realized := in.RealizedVolatility
	if !formulas.IsFinite(realized) || realized <= 0 {
		return s.fallback("volatility target needs a positive realized volatility")
	}
	target := s.cfg.TargetVolatility
	raw := target / realized

	return &Recommendation{
		Fraction:    s.clip(raw),
		RawFraction: raw,
		Confidence:  formulas.Clamp(1-math.Abs(realized-target)/target, 0, 0.7),
		Reason:      fmt.Sprintf("volatility target %.1f%% over realized %.1f%%", target*100, realized*100),
	}
}

func (s *Sizer) stopFraction(in Inputs) float64 {
	if in.StopLossFraction != 0 {
		return in.StopLossFraction
	}
	return s.cfg.DefaultStopLoss
}

func (s *Sizer) fixedRisk(in Inputs) *Recommendation {
	stop := s.stopFraction(in)
	if !formulas.IsFinite(stop) || stop <= 0 {
		return s.fallback("fixed risk needs a positive stop-loss distance")
	}
	raw := s.cfg.RiskPerTrade / stop

	return &Recommendation{
		Fraction:    s.clip(raw),
		RawFraction: raw,
		Confidence:  0.8,
		Reason:      fmt.Sprintf("risking %.1f%% with a %.1f%% stop", s.cfg.RiskPerTrade*100, stop*100),
	}
}

// composite blends the individually clipped base methods. Methods whose
// inputs are missing drop out and the remaining weights are renormalized.
func (s *Sizer) composite(in Inputs) *Recommendation {
	w := s.cfg.Composite
	candidates := []struct {
		method Method
		weight float64
		rec    *Recommendation
	}{
		{MethodKelly, w.Kelly, s.kelly(in)},
		{MethodVolatility, w.Volatility, s.volatility(in)},
		{MethodFixedRisk, w.FixedRisk, s.fixedRisk(in)},
	}

	var total float64
	var components []Component
	for _, c := range candidates {
		if c.rec.FellBack || c.weight == 0 {
			continue
		}
		components = append(components, Component{Method: c.method, Fraction: c.rec.Fraction, Weight: c.weight})
		total += c.weight
	}
	if total == 0 {
		return s.fallback("no sizing method had usable inputs")
	}

	var raw float64
	for i := range components {
		components[i].Weight /= total
		raw += components[i].Fraction * components[i].Weight
	}

	return &Recommendation{
		Fraction:    s.clip(raw),
		RawFraction: raw,
		Confidence:  0.75,
		Reason:      fmt.Sprintf("composite of %d methods", len(components)),
		Components:  components,
	}
}
