package trend

import (
	"math"
	"sort"

	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/indicators"
)

// levels finds swing lows/highs over the recent history, merges nearby ones
// and returns the NumLevels closest to the last close. Support comes back
// descending, resistance ascending.
func (a *Analyzer) levels(series *domain.Series) (support, resistance []float64) {
	recent := series.Tail(a.cfg.LevelHistory)
	lows := recent.Lows()
	highs := recent.Highs()
	price := recent.Last().Close

	var swingLows, swingHighs []float64
	for _, i := range extrema(lows, a.cfg.LevelWindow, false) {
		swingLows = append(swingLows, lows[i])
	}
	for _, i := range extrema(highs, a.cfg.LevelWindow, true) {
		swingHighs = append(swingHighs, highs[i])
	}

	support = nearest(cluster(swingLows, a.cfg.LevelTolerance), price, a.cfg.NumLevels)
	resistance = nearest(cluster(swingHighs, a.cfg.LevelTolerance), price, a.cfg.NumLevels)
	sort.Sort(sort.Reverse(sort.Float64Slice(support)))
	sort.Float64s(resistance)
	return support, resistance
}

// extrema returns indices i (with a full +/-window neighbourhood) whose value
// equals the neighbourhood max (or min).
func extrema(values []float64, window int, peak bool) []int {
	var idx []int
	for i := window; i < len(values)-window; i++ {
		extreme := true
		for j := i - window; j <= i+window; j++ {
			if (peak && values[j] > values[i]) || (!peak && values[j] < values[i]) {
				extreme = false
				break
			}
		}
		if extreme {
			idx = append(idx, i)
		}
	}
	return idx
}

// cluster merges sorted levels whose step to the previous member is within
// tolerance (relative) and returns each cluster's mean.
func cluster(levels []float64, tolerance float64) []float64 {
	if len(levels) == 0 {
		return nil
	}
	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)

	var out []float64
	sum, count, last := sorted[0], 1, sorted[0]
	for _, v := range sorted[1:] {
		if last != 0 && (v-last)/last <= tolerance {
			sum += v
			count++
		} else {
			out = append(out, sum/float64(count))
			sum, count = v, 1
		}
		last = v
	}
	return append(out, sum/float64(count))
}

func nearest(levels []float64, price float64, n int) []float64 {
	sort.SliceStable(levels, func(i, j int) bool {
		return math.Abs(levels[i]-price) < math.Abs(levels[j]-price)
	})
	if len(levels) > n {
		levels = levels[:n]
	}
	return levels
}

// divergence compares the last two swing lows/highs of closes within the
// divergence window against RSI at the same bars. Bullish wins when both
// patterns are present.
func (a *Analyzer) divergence(closes []float64, rsi *indicators.Line) (Divergence, string) {
	offset := 0
	if len(closes) > a.cfg.DivergenceLookback {
		offset = len(closes) - a.cfg.DivergenceLookback
	}
	window := closes[offset:]

	pick := func(peak bool) (prev, last int, ok bool) {
		var found []int
		for _, i := range extrema(window, a.cfg.ExtremaWindow, peak) {
			if _, avail := rsi.At(offset + i); avail {
				found = append(found, offset+i)
			}
		}
		if len(found) < 2 {
			return 0, 0, false
		}
		return found[len(found)-2], found[len(found)-1], true
	}

	verdict, note := DivergenceNone, "no divergence detected"

	if prev, last, ok := pick(true); ok {
		rPrev, _ := rsi.At(prev)
		rLast, _ := rsi.At(last)
		if closes[last] > closes[prev] && rLast < rPrev {
			verdict, note = DivergenceBearish, "price made a higher high while RSI made a lower high"
		}
	}
	if prev, last, ok := pick(false); ok {
		rPrev, _ := rsi.At(prev)
		rLast, _ := rsi.At(last)
		if closes[last] < closes[prev] && rLast > rPrev {
			verdict, note = DivergenceBullish, "price made a lower low while RSI made a higher low"
		}
	}
	return verdict, note
}
