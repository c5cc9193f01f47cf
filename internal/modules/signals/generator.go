// Package signals fuses per-indicator votes into one composite decision.
package signals

import (
	"sort"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/modules/indicators"
	"github.com/rs/zerolog"
)

// Generator turns an indicator set into a Signal.
type Generator struct {
	cfg config.SignalConfig
	log zerolog.Logger
}

// NewGenerator validates cfg and returns a generator.
func NewGenerator(cfg config.SignalConfig, log zerolog.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg: cfg,
		log: log.With().Str("component", "signal_generator").Logger(),
	}, nil
}

// Generate collects one vote per source and applies the decision rule.
// An empty or nil set yields hold with low confidence.
func (g *Generator) Generate(set *indicators.Set) Signal {
	sig := Signal{Reasons: []string{}, Contributions: make([]Contribution, 0, len(Sources))}
	if set == nil || set.Length == 0 {
		sig.Action, sig.Confidence = ActionHold, ConfidenceLow
		return sig
	}

	for _, src := range Sources {
		c := src.Vote(set, g.cfg)
		sig.Contributions = append(sig.Contributions, c)
		sig.Strength += c.Vote
		switch {
		case c.Vote > 0:
			sig.BuyVotes++
		case c.Vote < 0:
			sig.SellVotes++
		}
	}

	switch {
	case sig.Strength > 0:
		sig.Agreement = sig.BuyVotes
	case sig.Strength < 0:
		sig.Agreement = sig.SellVotes
	}

	sig.Action = g.decide(sig.Strength, sig.Agreement)
	sig.Confidence = confidence(sig.Agreement)
	sig.Reasons = g.reasons(sig.Contributions)

	g.log.Debug().
		Str("symbol", set.Symbol).
		Str("action", string(sig.Action)).
		Int("strength", sig.Strength).
		Int("agreement", sig.Agreement).
		Msg("Signal generated")

	return sig
}

// decide applies the ordered decision rule.
func (g *Generator) decide(strength, agreement int) Action {
	switch {
	case strength >= g.cfg.StrongThreshold && agreement >= g.cfg.MinAgreement:
		return ActionStrongBuy
	case strength >= g.cfg.Threshold:
		return ActionBuy
	case strength <= -g.cfg.StrongThreshold && agreement >= g.cfg.MinAgreement:
		return ActionStrongSell
	case strength <= -g.cfg.Threshold:
		return ActionSell
	default:
		return ActionHold
	}
}

func confidence(agreement int) Confidence {
	switch {
	case agreement >= 3:
		return ConfidenceHigh
	case agreement == 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// reasons orders non-zero contributions by |vote| descending, keeping source
// order among equals, and truncates to MaxReasons.
func (g *Generator) reasons(contribs []Contribution) []string {
	voting := make([]Contribution, 0, len(contribs))
	for _, c := range contribs {
		if c.Vote != 0 && c.Reason != "" {
			voting = append(voting, c)
		}
	}
	sort.SliceStable(voting, func(i, j int) bool {
		return abs(voting[i].Vote) > abs(voting[j].Vote)
	})

	out := make([]string, 0, len(voting))
	for _, c := range voting {
		if len(out) == g.cfg.MaxReasons {
			break
		}
		out = append(out, c.Source.String()+": "+c.Reason)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
