// Package testing provides series and portfolio fixtures shared by the
// analysis module tests.
package testing

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/aristath/vigil/internal/domain"
)

// Day0 is the timestamp of the first fixture bar.
var Day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// MustSeries builds a series or panics; fixtures are always valid.
func MustSeries(symbol string, bars []domain.Bar) *domain.Series {
	s, err := domain.NewSeries(symbol, bars)
	if err != nil {
		panic(fmt.Sprintf("fixture series %s: %v", symbol, err))
	}
	return s
}

// FromCloses builds daily bars around the given closes. Open is the previous
// close and high/low extend spread (fraction of price) beyond the body.
func FromCloses(symbol string, closes []float64, spread float64) *domain.Series {
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		hi := math.Max(open, c)
		lo := math.Min(open, c)
		bars[i] = domain.Bar{
			Timestamp: Day0.AddDate(0, 0, i),
			Open:      open,
			High:      hi * (1 + spread),
			Low:       lo * (1 - spread),
			Close:     c,
			Volume:    1000 + float64(i%7)*100,
		}
	}
	return MustSeries(symbol, bars)
}

// Linear builds n bars whose closes step linearly from start.
func Linear(symbol string, n int, start, step float64) *domain.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return FromCloses(symbol, closes, 0.005)
}

// Flat builds n bars with every price equal to price.
func Flat(symbol string, n int, price, volume float64) *domain.Series {
	bars := make([]domain.Bar, n)
	for i := range bars {
		bars[i] = domain.Bar{
			Timestamp: Day0.AddDate(0, 0, i),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    volume,
		}
	}
	return MustSeries(symbol, bars)
}

// RandomWalk builds a reproducible geometric random walk with daily
// volatility vol.
func RandomWalk(symbol string, n int, seed int64, vol float64) *domain.Series {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		price *= math.Exp(rng.NormFloat64() * vol)
		closes[i] = price
	}
	return FromCloses(symbol, closes, vol/2)
}

// Oscillating builds closes following a sine wave around base.
func Oscillating(symbol string, n int, base, amplitude, periodBars float64) *domain.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = base + amplitude*math.Sin(2*math.Pi*float64(i)/periodBars)
	}
	return FromCloses(symbol, closes, 0.003)
}

// Portfolio builds a portfolio snapshot or panics.
func Portfolio(weights map[string]float64) *domain.Portfolio {
	p, err := domain.NewPortfolio(weights)
	if err != nil {
		panic(fmt.Sprintf("fixture portfolio: %v", err))
	}
	return p
}
