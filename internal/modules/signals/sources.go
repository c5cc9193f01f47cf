package signals

import (
	"fmt"
	"math"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/modules/indicators"
)

// Source is the closed set of vote sources.
type Source int

const (
	SourceMA Source = iota
	SourceMACD
	SourceRSI
	SourceKDJ
)

// Sources lists every vote source in evaluation order.
var Sources = []Source{SourceMA, SourceMACD, SourceRSI, SourceKDJ}

func (s Source) String() string {
	switch s {
	case SourceMA:
		return "MA"
	case SourceMACD:
		return "MACD"
	case SourceRSI:
		return "RSI"
	case SourceKDJ:
		return "KDJ"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// MarshalText renders the source name in reports.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a source name.
func (s *Source) UnmarshalText(text []byte) error {
	for _, src := range Sources {
		if src.String() == string(text) {
			*s = src
			return nil
		}
	}
	return fmt.Errorf("unknown vote source %q", text)
}

// maxVote bounds a single source's vote.
const maxVote = 2

// Vote evaluates the source against the latest bars of set.
func (s Source) Vote(set *indicators.Set, cfg config.SignalConfig) Contribution {
	var c Contribution
	switch s {
	case SourceMA:
		c = voteMA(set)
	case SourceMACD:
		c = voteMACD(set)
	case SourceRSI:
		c = voteRSI(set, cfg)
	case SourceKDJ:
		c = voteKDJ(set, cfg)
	}
	c.Source = s
	if c.Vote > maxVote {
		c.Vote = maxVote
	} else if c.Vote < -maxVote {
		c.Vote = -maxVote
	}
	return c
}

// pair returns the latest and previous values of a line.
func pair(l *indicators.Line) (cur, prev float64, ok bool) {
	cur, ok1 := l.Back(0)
	prev, ok2 := l.Back(1)
	return cur, prev, ok1 && ok2
}

// voteMA: short/mid MA cross +/-1, short>mid>long alignment +/-1; when
// neither fires, close versus the long MA +/-1.
func voteMA(set *indicators.Set) Contribution {
	periods := set.MAPeriods
	if len(periods) < 3 {
		return Contribution{}
	}
	short := set.Line(indicators.MA(periods[0]))
	mid := set.Line(indicators.MA(periods[1]))
	long := set.Line(indicators.MA(periods[2]))

	s0, s1, okShort := pair(short)
	m0, m1, okMid := pair(mid)
	if !okShort || !okMid {
		return Contribution{}
	}

	c := Contribution{Available: true}
	var reasons []string

	switch {
	case s1 <= m1 && s0 > m0:
		c.Vote++
		reasons = append(reasons, fmt.Sprintf("MA%d crossed above MA%d (golden cross)", periods[0], periods[1]))
	case s1 >= m1 && s0 < m0:
		c.Vote--
		reasons = append(reasons, fmt.Sprintf("MA%d crossed below MA%d (death cross)", periods[0], periods[1]))
	}

	l0, okLong := long.Latest()
	if okLong {
		switch {
		case s0 > m0 && m0 > l0:
			c.Vote++
			reasons = append(reasons, "bullish MA alignment")
		case s0 < m0 && m0 < l0:
			c.Vote--
			reasons = append(reasons, "bearish MA alignment")
		}

		if c.Vote == 0 && len(reasons) == 0 {
			price, _ := set.Latest(indicators.Close)
			switch {
			case price > l0:
				c.Vote = 1
				reasons = append(reasons, fmt.Sprintf("price above MA%d", periods[2]))
			case price < l0:
				c.Vote = -1
				reasons = append(reasons, fmt.Sprintf("price below MA%d", periods[2]))
			}
		}
	}

	c.Reason = join(reasons)
	return c
}

// voteMACD: histogram sign flip +/-1 (+/-2 when the MACD line already sits
// on the same side of zero); otherwise a widening histogram +/-1.
func voteMACD(set *indicators.Set) Contribution {
	h0, h1, ok := pair(set.Line(indicators.MACDHist))
	if !ok {
		return Contribution{}
	}
	m0, _ := set.Latest(indicators.MACD)
	price, _ := set.Latest(indicators.Close)
	eps := 1e-9 * math.Max(1, math.Abs(price))

	c := Contribution{Available: true}
	cur, prev, line := sign(h0, eps), sign(h1, eps), sign(m0, eps)

	switch {
	case cur > 0 && prev <= 0:
		c.Vote = 1
		c.Reason = "MACD histogram turned positive"
		if line > 0 {
			c.Vote = 2
			c.Reason += " above the zero line"
		}
	case cur < 0 && prev >= 0:
		c.Vote = -1
		c.Reason = "MACD histogram turned negative"
		if line < 0 {
			c.Vote = -2
			c.Reason += " below the zero line"
		}
	case cur > 0 && h0 > h1:
		c.Vote = 1
		c.Reason = "MACD bullish momentum strengthening"
	case cur < 0 && h0 < h1:
		c.Vote = -1
		c.Reason = "MACD bearish momentum strengthening"
	}
	return c
}

func voteRSI(set *indicators.Set, cfg config.SignalConfig) Contribution {
	r, ok := set.Latest(indicators.RSI)
	if !ok {
		return Contribution{}
	}

	c := Contribution{Available: true}
	switch {
	case r > cfg.RSIExtremeHigh:
		c.Vote, c.Reason = -2, fmt.Sprintf("RSI=%.1f, extremely overbought", r)
	case r > cfg.RSIOverbought:
		c.Vote, c.Reason = -1, fmt.Sprintf("RSI=%.1f, overbought", r)
	case r < cfg.RSIExtremeLow:
		c.Vote, c.Reason = 2, fmt.Sprintf("RSI=%.1f, extremely oversold", r)
	case r < cfg.RSIOversold:
		c.Vote, c.Reason = 1, fmt.Sprintf("RSI=%.1f, oversold", r)
	}
	return c
}

// voteKDJ: K/D cross +/-1 plus J beyond its bounds +/-1.
func voteKDJ(set *indicators.Set, cfg config.SignalConfig) Contribution {
	k0, k1, okK := pair(set.Line(indicators.K))
	d0, d1, okD := pair(set.Line(indicators.D))
	if !okK || !okD {
		return Contribution{}
	}
	j0, _ := set.Latest(indicators.J)

	c := Contribution{Available: true}
	var reasons []string
	switch {
	case k1 <= d1 && k0 > d0:
		c.Vote++
		reasons = append(reasons, "KDJ golden cross")
	case k1 >= d1 && k0 < d0:
		c.Vote--
		reasons = append(reasons, "KDJ death cross")
	}
	switch {
	case j0 < cfg.KDJLower:
		c.Vote++
		reasons = append(reasons, fmt.Sprintf("J=%.1f oversold", j0))
	case j0 > cfg.KDJUpper:
		c.Vote--
		reasons = append(reasons, fmt.Sprintf("J=%.1f overbought", j0))
	}
	c.Reason = join(reasons)
	return c
}

func sign(v, eps float64) int {
	switch {
	case v > eps:
		return 1
	case v < -eps:
		return -1
	default:
		return 0
	}
}

func join(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "; "
		}
		out += p
	}
	return out
}
