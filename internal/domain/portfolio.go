package domain

import (
	"fmt"
	"math"
	"sort"
)

// Portfolio is a caller-supplied snapshot of holdings keyed by symbol.
type Portfolio struct {
	weights map[string]float64
}

// NewPortfolio validates weights (finite, >= 0) and copies them.
func NewPortfolio(weights map[string]float64) (*Portfolio, error) {
	owned := make(map[string]float64, len(weights))
	for symbol, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight for %s is not finite", ErrInvalidPortfolio, symbol)
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: weight for %s is negative (%.4f)", ErrInvalidPortfolio, symbol, w)
		}
		owned[symbol] = w
	}
	return &Portfolio{weights: owned}, nil
}

// Weight returns the weight held in symbol (0 if absent).
func (p *Portfolio) Weight(symbol string) float64 {
	return p.weights[symbol]
}

// Weights returns a copy of the weight map.
func (p *Portfolio) Weights() map[string]float64 {
	out := make(map[string]float64, len(p.weights))
	for k, v := range p.weights {
		out[k] = v
	}
	return out
}

// Symbols returns the held symbols in lexical order.
func (p *Portfolio) Symbols() []string {
	symbols := make([]string, 0, len(p.weights))
	for s := range p.weights {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Holdings counts symbols with a strictly positive weight.
func (p *Portfolio) Holdings() int {
	n := 0
	for _, w := range p.weights {
		if w > 0 {
			n++
		}
	}
	return n
}

// Largest returns the heaviest holding. Ties resolve to the lexically first
// symbol. An empty portfolio returns ("", 0).
func (p *Portfolio) Largest() (string, float64) {
	var symbol string
	weight := 0.0
	for _, s := range p.Symbols() {
		if w := p.weights[s]; w > weight {
			symbol, weight = s, w
		}
	}
	return symbol, weight
}
