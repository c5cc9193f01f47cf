// Package stream keeps indicator accumulators for one symbol so day-by-day
// re-analysis costs O(1) per new bar instead of a full rescan.
package stream

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/indicators"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// state is everything a Tracker needs to resume.
type state struct {
	Symbol    string    `msgpack:"symbol"`
	Bars      int       `msgpack:"bars"`
	LastTime  time.Time `msgpack:"last_time"`
	LastClose float64   `msgpack:"last_close"`

	EMAs    []emaAcc  `msgpack:"emas"`
	Fast    emaAcc    `msgpack:"fast"`
	Slow    emaAcc    `msgpack:"slow"`
	Signal  signalAcc `msgpack:"signal"`
	Gain    wilderAcc `msgpack:"gain"`
	Loss    wilderAcc `msgpack:"loss"`
	ATR     wilderAcc `msgpack:"atr"`
	OBV     float64   `msgpack:"obv"`
	Version int       `msgpack:"version"`
}

const stateVersion = 1

// ErrStateMismatch is returned by Restore when a snapshot was taken with
// different indicator periods than the ones configured now.
var ErrStateMismatch = errors.New("tracker state does not match indicator config")

// Values are the latest indicator readings.
type Values struct {
	Symbol     string          `json:"symbol" msgpack:"symbol"`
	Bars       int             `json:"bars" msgpack:"bars"`
	Timestamp  time.Time       `json:"timestamp" msgpack:"timestamp"`
	Close      float64         `json:"close" msgpack:"close"`
	EMA        map[int]float64 `json:"ema" msgpack:"ema"` // ready periods only
	MACD       float64         `json:"macd" msgpack:"macd"`
	MACDSignal float64         `json:"macd_signal" msgpack:"macd_signal"`
	MACDHist   float64         `json:"macd_hist" msgpack:"macd_hist"`
	MACDReady  bool            `json:"macd_ready" msgpack:"macd_ready"`
	RSI        float64         `json:"rsi" msgpack:"rsi"`
	RSIReady   bool            `json:"rsi_ready" msgpack:"rsi_ready"`
	ATR        float64         `json:"atr" msgpack:"atr"`
	ATRReady   bool            `json:"atr_ready" msgpack:"atr_ready"`
	OBV        float64         `json:"obv" msgpack:"obv"`
}

// Tracker is the incremental counterpart of indicators.Engine for EMA, MACD,
// RSI, ATR and OBV. It is not safe for concurrent use.
type Tracker struct {
	st  state
	log zerolog.Logger
}

// NewTracker validates cfg and returns an empty tracker for symbol.
func NewTracker(symbol string, cfg config.IndicatorConfig, log zerolog.Logger) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	st := state{
		Symbol:  symbol,
		Fast:    emaAcc{Period: cfg.MACDFast},
		Slow:    emaAcc{Period: cfg.MACDSlow},
		Signal:  signalAcc{Period: cfg.MACDSignal},
		Gain:    wilderAcc{Period: cfg.RSIPeriod},
		Loss:    wilderAcc{Period: cfg.RSIPeriod},
		ATR:     wilderAcc{Period: cfg.ATRPeriod},
		Version: stateVersion,
	}
	for _, p := range cfg.EMAPeriods {
		st.EMAs = append(st.EMAs, emaAcc{Period: p})
	}
	return &Tracker{st: st, log: componentLogger(log, symbol)}, nil
}

func componentLogger(log zerolog.Logger, symbol string) zerolog.Logger {
	return log.With().Str("component", "stream_tracker").Str("symbol", symbol).Logger()
}

// Clone returns an independent copy that can be advanced without touching t.
func (t *Tracker) Clone() *Tracker {
	st := t.st
	st.EMAs = slices.Clone(t.st.EMAs)
	return &Tracker{st: st, log: t.log}
}

// Bars returns how many bars have been folded in.
func (t *Tracker) Bars() int { return t.st.Bars }

// LastTimestamp returns the timestamp of the latest bar, zero before any.
func (t *Tracker) LastTimestamp() time.Time { return t.st.LastTime }

// Seed folds in every bar of series that is newer than the last one seen and
// returns how many were added.
func (t *Tracker) Seed(series *domain.Series) (int, error) {
	added := 0
	for i := 0; i < series.Len(); i++ {
		bar := series.Bar(i)
		if t.st.Bars > 0 && !bar.Timestamp.After(t.st.LastTime) {
			continue
		}
		if err := t.Update(bar); err != nil {
			return added, err
		}
		added++
	}
	if added > 0 {
		t.log.Debug().Int("added", added).Int("bars", t.st.Bars).Msg("Tracker advanced")
	}
	return added, nil
}

// Update folds in one bar. Bars must arrive in strictly increasing time.
func (t *Tracker) Update(bar domain.Bar) error {
	if err := bar.Validate(); err != nil {
		return &domain.MalformedSeriesError{Symbol: t.st.Symbol, Index: t.st.Bars, Reason: err.Error()}
	}
	if t.st.Bars > 0 && !bar.Timestamp.After(t.st.LastTime) {
		return &domain.MalformedSeriesError{Symbol: t.st.Symbol, Index: t.st.Bars, Reason: "timestamp not after previous bar"}
	}

	st := &t.st
	for i := range st.EMAs {
		st.EMAs[i].add(bar.Close)
	}
	st.Fast.add(bar.Close)
	st.Slow.add(bar.Close)
	if st.Fast.ready() && st.Slow.ready() {
		st.Signal.add(st.Fast.Value - st.Slow.Value)
	}

	var gain, loss float64
	tr := bar.High - bar.Low
	if st.Bars > 0 {
		delta := bar.Close - st.LastClose
		if delta > 0 {
			gain = delta
		} else if delta < 0 {
			loss = -delta
		}
		tr = math.Max(tr, math.Max(math.Abs(bar.High-st.LastClose), math.Abs(bar.Low-st.LastClose)))

		switch {
		case bar.Close > st.LastClose:
			st.OBV += bar.Volume
		case bar.Close < st.LastClose:
			st.OBV -= bar.Volume
		}
	}
	st.Gain.add(gain)
	st.Loss.add(loss)
	st.ATR.add(tr)

	st.Bars++
	st.LastTime = bar.Timestamp
	st.LastClose = bar.Close
	return nil
}

// Latest returns the current readings.
func (t *Tracker) Latest() Values {
	st := &t.st
	v := Values{
		Symbol:    st.Symbol,
		Bars:      st.Bars,
		Timestamp: st.LastTime,
		Close:     st.LastClose,
		EMA:       make(map[int]float64, len(st.EMAs)),
		OBV:       st.OBV,
	}
	for _, e := range st.EMAs {
		if e.ready() {
			v.EMA[e.Period] = e.Value
		}
	}
	if st.Signal.Started {
		v.MACDReady = true
		v.MACD = st.Fast.Value - st.Slow.Value
		v.MACDSignal = st.Signal.Value
		v.MACDHist = v.MACD - v.MACDSignal
	}
	if st.Gain.ready() {
		v.RSIReady = true
		v.RSI = indicators.RSIFromAverages(st.Gain.Value, st.Loss.Value)
	}
	if st.ATR.ready() {
		v.ATRReady = true
		v.ATR = st.ATR.Value
	}
	return v
}

// Snapshot encodes the tracker state with msgpack.
func (t *Tracker) Snapshot() ([]byte, error) {
	data, err := msgpack.Marshal(&t.st)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tracker state: %w", err)
	}
	return data, nil
}

// Restore decodes a Snapshot into a new tracker. The snapshot must have been
// taken with the periods in cfg.
func Restore(data []byte, cfg config.IndicatorConfig, log zerolog.Logger) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var st state
	if err := msgpack.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode tracker state: %w", err)
	}
	if st.Version != stateVersion {
		return nil, fmt.Errorf("unsupported tracker state version %d", st.Version)
	}
	if err := st.matches(cfg); err != nil {
		return nil, err
	}
	t := &Tracker{st: st, log: componentLogger(log, st.Symbol)}
	t.log.Debug().Int("bars", st.Bars).Msg("Tracker restored")
	return t, nil
}

func (st *state) matches(cfg config.IndicatorConfig) error {
	check := func(name string, got, want int) error {
		if got != want {
			return fmt.Errorf("%w: %s period %d, configured %d", ErrStateMismatch, name, got, want)
		}
		return nil
	}
	if err := errors.Join(
		check("macd fast", st.Fast.Period, cfg.MACDFast),
		check("macd slow", st.Slow.Period, cfg.MACDSlow),
		check("macd signal", st.Signal.Period, cfg.MACDSignal),
		check("rsi gain", st.Gain.Period, cfg.RSIPeriod),
		check("rsi loss", st.Loss.Period, cfg.RSIPeriod),
		check("atr", st.ATR.Period, cfg.ATRPeriod),
	); err != nil {
		return err
	}
	if len(st.EMAs) != len(cfg.EMAPeriods) {
		return fmt.Errorf("%w: %d ema periods, configured %d", ErrStateMismatch, len(st.EMAs), len(cfg.EMAPeriods))
	}
	for i, e := range st.EMAs {
		if err := check("ema", e.Period, cfg.EMAPeriods[i]); err != nil {
			return err
		}
	}
	return nil
}
