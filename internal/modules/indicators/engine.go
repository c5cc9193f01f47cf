// Package indicators computes the aligned technical-indicator lines the
// trend, signal and stop-loss modules consume.
package indicators

import (
	"sort"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	"github.com/rs/zerolog"
)

// MinBars is the shortest series the engine accepts.
const MinBars = 2

// Engine computes indicator sets with a fixed period configuration.
type Engine struct {
	cfg config.IndicatorConfig
	log zerolog.Logger
}

// NewEngine validates cfg and returns an engine.
func NewEngine(cfg config.IndicatorConfig, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	maPeriods := append([]int(nil), cfg.MAPeriods...)
	sort.Ints(maPeriods)
	cfg.MAPeriods = maPeriods
	cfg.EMAPeriods = append([]int(nil), cfg.EMAPeriods...)

	return &Engine{
		cfg: cfg,
		log: log.With().Str("component", "indicator_engine").Logger(),
	}, nil
}

// Config returns the engine's period configuration.
func (e *Engine) Config() config.IndicatorConfig {
	return e.cfg
}

// Compute builds every indicator line for series. Lines whose warm-up
// exceeds the history are returned fully unavailable; only a series shorter
// than MinBars is an error.
func (e *Engine) Compute(series *domain.Series) (*Set, error) {
	if series.Len() < MinBars {
		return nil, domain.NewInsufficientData("indicators", MinBars, series.Len())
	}

	highs := series.Highs()
	lows := series.Lows()
	closes := series.Closes()
	volumes := series.Volumes()

	set := newSet(series.Symbol(), series.Len())
	set.MAPeriods = append([]int(nil), e.cfg.MAPeriods...)
	set.EMAPeriods = append([]int(nil), e.cfg.EMAPeriods...)
	set.put(newLine(Close, closes, 0))

	for _, p := range e.cfg.MAPeriods {
		set.put(sma(MA(p), closes, p))
	}
	for _, p := range e.cfg.EMAPeriods {
		set.put(ema(EMA(p), closes, p))
	}

	line, sig, hist := macd(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	set.put(line)
	set.put(sig)
	set.put(hist)

	set.put(rsi(closes, e.cfg.RSIPeriod))

	k, d, j := kdj(highs, lows, closes, e.cfg.KDJPeriod, e.cfg.KDJSmoothing)
	set.put(k)
	set.put(d)
	set.put(j)

	upper, middle, lower, width := bollinger(closes, e.cfg.BollPeriod, e.cfg.BollStdDev)
	set.put(upper)
	set.put(middle)
	set.put(lower)
	set.put(width)

	set.put(atr(highs, lows, closes, e.cfg.ATRPeriod))
	set.put(obv(closes, volumes))

	adx, plus, minus := directional(highs, lows, closes, e.cfg.ADXPeriod)
	set.put(adx)
	set.put(plus)
	set.put(minus)

	e.log.Debug().
		Str("symbol", series.Symbol()).
		Int("bars", series.Len()).
		Int("lines", len(set.Lines)).
		Msg("Indicators computed")

	return set, nil
}
