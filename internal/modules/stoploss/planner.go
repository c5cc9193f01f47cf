// Package stoploss plans stop-loss and take-profit prices.
package stoploss

import (
	"fmt"
	"math"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/indicators"
	"github.com/aristath/vigil/pkg/formulas"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Planner places stops and targets.
type Planner struct {
	cfg config.StopLossConfig
	log zerolog.Logger
}

// NewPlanner validates cfg and returns a planner.
func NewPlanner(cfg config.StopLossConfig, log zerolog.Logger) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Planner{
		cfg: cfg,
		log: log.With().Str("component", "stop_loss_planner").Logger(),
	}, nil
}

// Plan computes stop and target for req with method.
func (p *Planner) Plan(method Method, req Request) (*Target, error) {
	side := req.Side
	if side == "" {
		side = domain.SideLong
	}
	if !side.Valid() {
		return nil, &domain.DegenerateTargetError{Method: string(method), Reason: fmt.Sprintf("unknown side %q", side)}
	}

	entry := req.Entry
	if entry == 0 && req.Series != nil {
		entry = req.Series.Last().Close
	}
	if !formulas.IsFinite(entry) || entry <= 0 {
		return nil, &domain.DegenerateTargetError{Method: string(method), Reason: "entry price must be positive"}
	}

	t := &Target{Side: side, Method: method, Entry: entry}
	if req.Series != nil {
		t.Symbol = req.Series.Symbol()
	}

	var err error
	switch method {
	case MethodFixed:
		p.fixed(t)
	case MethodATR:
		err = p.atr(t, req.Indicators)
	case MethodSupportResistance:
		err = p.supportResistance(t, req.Series)
	default:
		_, err = ParseMethod(string(method))
	}
	if err != nil {
		return nil, err
	}

	p.round(t)
	if err := finish(t); err != nil {
		return nil, err
	}

	p.log.Debug().
		Str("symbol", t.Symbol).
		Str("method", string(method)).
		Str("side", string(side)).
		Float64("entry", t.Entry).
		Float64("stop", t.Stop).
		Float64("target", t.Target).
		Float64("rr", t.RiskRewardRatio).
		Msg("Stop-loss planned")
	return t, nil
}

// dir is +1 for longs and -1 for shorts.
func dir(side domain.Side) float64 {
	if side == domain.SideShort {
		return -1
	}
	return 1
}

func (p *Planner) fixed(t *Target) {
	d := dir(t.Side)
	t.Stop = t.Entry * (1 - d*p.cfg.StopPercent)
	t.Target = t.Entry * (1 + d*p.cfg.TargetPercent)
	t.Reason = fmt.Sprintf("fixed %.1f%% stop, %.1f%% target", p.cfg.StopPercent*100, p.cfg.TargetPercent*100)
}

func (p *Planner) atr(t *Target, set *indicators.Set) error {
	if set == nil {
		return domain.NewInsufficientData("atr stop", 1, 0)
	}
	line := set.Line(indicators.ATR)
	value, ok := line.Latest()
	if !ok {
		return domain.NewInsufficientData("atr stop", line.Start+1, set.Length)
	}

	d := dir(t.Side)
	t.Stop = t.Entry - d*value*p.cfg.ATRStopMultiplier
	t.Target = t.Entry + d*value*p.cfg.ATRTargetMultiplier
	t.Reason = fmt.Sprintf("ATR %.4f x %.1f stop, x %.1f target", value, p.cfg.ATRStopMultiplier, p.cfg.ATRTargetMultiplier)
	return nil
}

func (p *Planner) supportResistance(t *Target, series *domain.Series) error {
	if series == nil {
		return domain.NewInsufficientData("support/resistance stop", p.cfg.LevelLookback, 0)
	}
	window := series.Tail(p.cfg.LevelLookback)
	support, resistance := math.Inf(1), math.Inf(-1)
	for i := 0; i < window.Len(); i++ {
		b := window.Bar(i)
		support = math.Min(support, b.Low)
		resistance = math.Max(resistance, b.High)
	}

	buf := p.cfg.LevelBuffer
	if t.Side == domain.SideShort {
		t.Stop = resistance * (1 + buf)
		t.Target = support * (1 - buf)
	} else {
		t.Stop = support * (1 - buf)
		t.Target = resistance * (1 + buf)
	}
	t.Reason = fmt.Sprintf("support %.4f, resistance %.4f over %d bars", support, resistance, window.Len())
	return nil
}

// round moves stop and target onto the tick grid, away from entry.
func (p *Planner) round(t *Target) {
	if p.cfg.TickSize <= 0 {
		return
	}
	tick := decimal.NewFromFloat(p.cfg.TickSize)
	snap := func(price float64, up bool) float64 {
		steps := decimal.NewFromFloat(price).Div(tick)
		if up {
			steps = steps.Ceil()
		} else {
			steps = steps.Floor()
		}
		return steps.Mul(tick).InexactFloat64()
	}

	long := t.Side != domain.SideShort
	t.Stop = snap(t.Stop, !long)
	t.Target = snap(t.Target, long)
}

// finish checks ordering and fills the derived ratios.
func finish(t *Target) error {
	method := string(t.Method)
	if t.Stop == t.Entry {
		return &domain.DegenerateTargetError{Method: method, Reason: "stop equals entry"}
	}
	if t.Target == t.Entry {
		return &domain.DegenerateTargetError{Method: method, Reason: "target equals entry"}
	}

	d := dir(t.Side)
	if d*(t.Entry-t.Stop) <= 0 || d*(t.Target-t.Entry) <= 0 {
		return &domain.DegenerateTargetError{
			Method: method,
			Reason: fmt.Sprintf("%s plan out of order: stop %.4f, entry %.4f, target %.4f", t.Side, t.Stop, t.Entry, t.Target),
		}
	}
	if t.Side == domain.SideLong && t.Stop <= 0 {
		return &domain.DegenerateTargetError{Method: method, Reason: "stop at or below zero"}
	}
	if t.Side == domain.SideShort && t.Target <= 0 {
		return &domain.DegenerateTargetError{Method: method, Reason: "target at or below zero"}
	}

	risk := math.Abs(t.Entry - t.Stop)
	reward := math.Abs(t.Target - t.Entry)
	t.RiskRewardRatio = reward / risk
	t.StopPercent = risk / t.Entry
	t.TargetPercent = reward / t.Entry
	return nil
}
