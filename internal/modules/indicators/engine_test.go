package indicators

import (
	"encoding/json"
	"testing"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	testingpkg "github.com/aristath/vigil/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(config.Default().Indicators, zerolog.Nop())
	require.NoError(t, err)
	return e
}

func bars(rows [][4]float64) []domain.Bar {
	out := make([]domain.Bar, len(rows))
	for i, r := range rows {
		out[i] = domain.Bar{
			Timestamp: testingpkg.Day0.AddDate(0, 0, i),
			Open:      r[3],
			High:      r[1],
			Low:       r[2],
			Close:     r[3],
			Volume:    r[0],
		}
	}
	return out
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := config.Default().Indicators
	cfg.MACDFast = 40

	_, err := NewEngine(cfg, zerolog.Nop())
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestCompute_InsufficientData(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Compute(testingpkg.Flat("X", 1, 100, 1000))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestCompute_UnavailablePrefix(t *testing.T) {
	e := newTestEngine(t)
	set, err := e.Compute(testingpkg.RandomWalk("X", 80, 7, 0.01))
	require.NoError(t, err)

	tests := []struct {
		line     string
		expected int
	}{
		{MA(5), 4},
		{MA(10), 9},
		{MA(20), 19},
		{MA(60), 59},
		{EMA(12), 11},
		{EMA(26), 25},
		{MACD, 25},
		{MACDSignal, 25},
		{MACDHist, 25},
		{RSI, 13},
		{K, 8},
		{D, 8},
		{J, 8},
		{BollUpper, 19},
		{BollMiddle, 19},
		{BollLower, 19},
		{BollWidth, 19},
		{ATR, 13},
		{OBV, 0},
		{Close, 0},
		{PlusDI, 14},
		{MinusDI, 14},
		{ADX, 27},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			l := set.Line(tt.line)
			assert.Equal(t, 80, l.Len(), "line must align with the series")
			assert.Equal(t, tt.expected, l.Unavailable())

			_, ok := l.At(tt.expected - 1)
			assert.False(t, ok)
			_, ok = l.At(tt.expected)
			assert.True(t, ok)
		})
	}
}

func TestCompute_ShortSeriesPartialResults(t *testing.T) {
	e := newTestEngine(t)
	set, err := e.Compute(testingpkg.Linear("X", 12, 100, 1))
	require.NoError(t, err)

	_, ok := set.Latest(MA(5))
	assert.True(t, ok, "enough data for MA5")

	l := set.Line(MA(60))
	assert.Equal(t, 12, l.Unavailable(), "MA60 is fully unavailable")
	assert.Empty(t, l.Available())

	assert.Equal(t, 12, set.Line(MACDHist).Unavailable())
	assert.Equal(t, 12, set.Line(ADX).Unavailable())
}

func TestSMAAndEMAValues(t *testing.T) {
	e := newTestEngine(t)
	set, err := e.Compute(testingpkg.Linear("X", 30, 100, 1))
	require.NoError(t, err)

	v, ok := set.Line(MA(5)).At(4)
	require.True(t, ok)
	assert.InDelta(t, 102.0, v, 1e-9)

	v, _ = set.Latest(MA(10))
	assert.InDelta(t, 124.5, v, 1e-9)

	// EMA is seeded with the SMA of its first window.
	v, ok = set.Line(EMA(12)).At(11)
	require.True(t, ok)
	assert.InDelta(t, 105.5, v, 1e-9)

	// On a linear ramp EMA lags the price by (n-1)/2 steps once converged.
	v, _ = set.Latest(EMA(12))
	assert.InDelta(t, 129-5.5, v, 0.05)
}

func TestRSI_KnownValues(t *testing.T) {
	closes := []float64{10, 11, 10.5, 11.5, 11}
	line := rsi(closes, 3)

	assert.Equal(t, 2, line.Unavailable())
	expected := []float64{200.0 / 3, 250.0 / 3, 100 - 100/(33.0/13)}
	assert.InDeltaSlice(t, expected, line.Available(), 1e-9)
}

func TestRSI_Bounds(t *testing.T) {
	e := newTestEngine(t)
	for seed := int64(1); seed <= 5; seed++ {
		set, err := e.Compute(testingpkg.RandomWalk("X", 200, seed, 0.03))
		require.NoError(t, err)
		for _, v := range set.Line(RSI).Available() {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
		}
	}

	rising := rsi([]float64{1, 2, 3, 4, 5, 6}, 3)
	for _, v := range rising.Available() {
		assert.Equal(t, 100.0, v)
	}
	falling := rsi([]float64{6, 5, 4, 3, 2, 1}, 3)
	for _, v := range falling.Available() {
		assert.Equal(t, 0.0, v)
	}
}

func TestRSIFromAverages(t *testing.T) {
	assert.Equal(t, 50.0, RSIFromAverages(0, 0))
	assert.Equal(t, 100.0, RSIFromAverages(1, 0))
	assert.InDelta(t, 75.0, RSIFromAverages(3, 1), 1e-12)
}

func TestMACDHistogramIdentity(t *testing.T) {
	e := newTestEngine(t)
	set, err := e.Compute(testingpkg.RandomWalk("X", 150, 42, 0.02))
	require.NoError(t, err)

	line, sig, hist := set.Line(MACD), set.Line(MACDSignal), set.Line(MACDHist)
	for i := hist.Start; i < hist.Len(); i++ {
		m, ok1 := line.At(i)
		s, ok2 := sig.At(i)
		h, ok3 := hist.At(i)
		require.True(t, ok1 && ok2 && ok3)
		assert.InDelta(t, m-s, h, 1e-9)
	}
}

func TestFlatSeries(t *testing.T) {
	e := newTestEngine(t)
	set, err := e.Compute(testingpkg.Flat("X", 30, 100, 1000))
	require.NoError(t, err)

	for _, v := range set.Line(RSI).Available() {
		assert.Equal(t, 50.0, v)
	}
	h, ok := set.Latest(MACDHist)
	require.True(t, ok)
	assert.InDelta(t, 0, h, 1e-9)

	for _, name := range []string{K, D, J} {
		v, ok := set.Latest(name)
		require.True(t, ok)
		assert.InDelta(t, 50.0, v, 1e-9, name)
	}

	w, ok := set.Latest(BollWidth)
	require.True(t, ok)
	assert.InDelta(t, 0, w, 1e-9)

	a, ok := set.Latest(ATR)
	require.True(t, ok)
	assert.InDelta(t, 0, a, 1e-9)

	o, _ := set.Latest(OBV)
	assert.Equal(t, 0.0, o)
}

func TestATR_KnownValues(t *testing.T) {
	s := testingpkg.MustSeries("X", bars([][4]float64{
		{100, 10, 8, 9},
		{100, 11, 9, 10},
		{100, 12, 10, 11},
		{100, 11, 8, 9},
	}))

	tr := TrueRange(s.Highs(), s.Lows(), s.Closes())
	assert.InDeltaSlice(t, []float64{2, 2, 2, 3}, tr, 1e-12)

	line := atr(s.Highs(), s.Lows(), s.Closes(), 3)
	assert.Equal(t, 2, line.Unavailable())
	assert.InDeltaSlice(t, []float64{2, 7.0 / 3}, line.Available(), 1e-12)
}

func TestOBV(t *testing.T) {
	s := testingpkg.MustSeries("X", bars([][4]float64{
		{100, 10, 10, 10},
		{200, 11, 11, 11},
		{300, 10, 10, 10},
		{400, 10, 10, 10},
	}))

	line := obv(s.Closes(), s.Volumes())
	assert.Equal(t, []float64{0, 200, -100, -100}, line.Values)
}

func TestBollinger(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(i + 1)
	}

	upper, middle, lower, width := bollinger(closes, 20, 2)

	m, ok := middle.Latest()
	require.True(t, ok)
	assert.InDelta(t, 10.5, m, 1e-9)

	sd := 5.766281297335398 // population stdev of 1..20
	u, _ := upper.Latest()
	l, _ := lower.Latest()
	assert.InDelta(t, 10.5+2*sd, u, 1e-6)
	assert.InDelta(t, 10.5-2*sd, l, 1e-6)

	w, _ := width.Latest()
	assert.InDelta(t, (u-l)/m, w, 1e-12)
}

func TestKDJ(t *testing.T) {
	s := testingpkg.Linear("X", 20, 100, 1)
	k, d, j := kdj(s.Highs(), s.Lows(), s.Closes(), 9, 3)

	for i := k.Start; i < k.Len(); i++ {
		kv, _ := k.At(i)
		dv, _ := d.At(i)
		jv, _ := j.At(i)
		assert.InDelta(t, 3*kv-2*dv, jv, 1e-9)
	}

	// A steady climb keeps the close near the top of the range.
	kv, _ := k.Latest()
	assert.Greater(t, kv, 80.0)
}

func TestLineJSON(t *testing.T) {
	l := newLine("ma2", []float64{0, 1.5, 2.5}, 1)

	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ma2","values":[null,1.5,2.5]}`, string(data))

	back, ok := l.Back(1)
	assert.True(t, ok)
	assert.Equal(t, 1.5, back)
	_, ok = l.Back(2)
	assert.False(t, ok)
}

func TestSetLookups(t *testing.T) {
	e := newTestEngine(t)
	set, err := e.Compute(testingpkg.Linear("X", 70, 100, 1))
	require.NoError(t, err)

	assert.Equal(t, []int{5, 10, 20, 60}, set.MAPeriods)
	assert.Contains(t, set.Names(), RSI)

	missing := set.Line("does_not_exist")
	assert.Equal(t, 70, missing.Unavailable())
}
