package trend

import (
	"testing"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/indicators"
	testingpkg "github.com/aristath/vigil/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, series *domain.Series) *Result {
	t.Helper()
	cfg := config.Default()

	engine, err := indicators.NewEngine(cfg.Indicators, zerolog.Nop())
	require.NoError(t, err)
	set, err := engine.Compute(series)
	require.NoError(t, err)

	analyzer, err := NewAnalyzer(cfg.Trend, zerolog.Nop())
	require.NoError(t, err)
	res, err := analyzer.Analyze(series, set)
	require.NoError(t, err)
	return res
}

func TestAnalyze_RisingSeries(t *testing.T) {
	// 60 closes rising linearly from 100 to 159
	series := testingpkg.Linear("UP", 60, 100, 1)
	res := analyze(t, series)

	assert.True(t, res.Direction.IsBullish(), "got %s", res.Direction)
	assert.Equal(t, DirectionStrongUp, res.Direction)
	assert.Equal(t, 1, res.Alignment)
	assert.InDelta(t, 100.0/149.5, res.SlopePercent, 1e-6)
	assert.Greater(t, res.PriceChangePercent, 0.0)

	window := series.Tail(20)
	assert.Equal(t, minOf(window.Lows()), res.Support)
	assert.Equal(t, maxOf(window.Highs()), res.Resistance)
	assert.Less(t, res.Support, res.Resistance)
}

func TestAnalyze_FallingSeries(t *testing.T) {
	res := analyze(t, testingpkg.Linear("DOWN", 60, 160, -1))

	assert.Equal(t, DirectionStrongDown, res.Direction)
	assert.Equal(t, -1, res.Alignment)
	assert.True(t, res.Direction.IsBearish())
	assert.Equal(t, "bearish", res.Strength.Bias)
}

func TestAnalyze_FlatSeries(t *testing.T) {
	res := analyze(t, testingpkg.Flat("FLAT", 60, 100, 1000))

	assert.Equal(t, DirectionSideways, res.Direction)
	assert.Equal(t, 0, res.Alignment)
	assert.Equal(t, 0.0, res.SlopePercent)
	assert.Equal(t, DivergenceNone, res.Divergence)
	assert.Equal(t, 100.0, res.Support)
	assert.Equal(t, 100.0, res.Resistance)
}

func TestAnalyze_ShortSeriesHasNoAlignment(t *testing.T) {
	res := analyze(t, testingpkg.Linear("X", 8, 100, 1))

	assert.Equal(t, 0, res.Alignment, "fewer than three MAs available")
	assert.Equal(t, DirectionUp, res.Direction)
	assert.False(t, res.Strength.Available)
	assert.Equal(t, "weak", res.Strength.Label)
}

func TestAnalyze_Errors(t *testing.T) {
	cfg := config.Default()
	analyzer, err := NewAnalyzer(cfg.Trend, zerolog.Nop())
	require.NoError(t, err)

	engine, err := indicators.NewEngine(cfg.Indicators, zerolog.Nop())
	require.NoError(t, err)
	set, err := engine.Compute(testingpkg.Linear("X", 30, 100, 1))
	require.NoError(t, err)

	_, err = analyzer.Analyze(testingpkg.Linear("X", 31, 100, 1), set)
	assert.ErrorIs(t, err, domain.ErrMalformedSeries)

	_, err = analyzer.Analyze(testingpkg.Flat("X", 1, 100, 0), set)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	bad := cfg.Trend
	bad.SlopeThreshold = 1
	_, err = NewAnalyzer(bad, zerolog.Nop())
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score    int
		expected Direction
	}{
		{3, DirectionStrongUp},
		{2, DirectionUp},
		{1, DirectionUp},
		{0, DirectionSideways},
		{-1, DirectionDown},
		{-2, DirectionDown},
		{-3, DirectionStrongDown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, classify(tt.score), "score %d", tt.score)
	}
}

func divergenceCloses() []float64 {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + 0.5*float64(i)
	}
	closes[8] = 90
	closes[20] = 85
	return closes
}

func TestDivergence(t *testing.T) {
	a, err := NewAnalyzer(config.Default().Trend, zerolog.Nop())
	require.NoError(t, err)

	closes := divergenceCloses()
	rsiValues := make([]float64, len(closes))
	for i := range rsiValues {
		rsiValues[i] = 50
	}

	t.Run("bullish", func(t *testing.T) {
		values := append([]float64(nil), rsiValues...)
		values[8], values[20] = 25, 35
		verdict, note := a.divergence(closes, &indicators.Line{Name: indicators.RSI, Values: values})
		assert.Equal(t, DivergenceBullish, verdict)
		assert.Contains(t, note, "lower low")
	})

	t.Run("confirmed low is not divergence", func(t *testing.T) {
		values := append([]float64(nil), rsiValues...)
		values[8], values[20] = 35, 25
		verdict, _ := a.divergence(closes, &indicators.Line{Name: indicators.RSI, Values: values})
		assert.Equal(t, DivergenceNone, verdict)
	})

	t.Run("bearish", func(t *testing.T) {
		mirrored := make([]float64, len(closes))
		for i, c := range closes {
			mirrored[i] = 300 - c
		}
		values := append([]float64(nil), rsiValues...)
		values[8], values[20] = 75, 65
		verdict, note := a.divergence(mirrored, &indicators.Line{Name: indicators.RSI, Values: values})
		assert.Equal(t, DivergenceBearish, verdict)
		assert.Contains(t, note, "higher high")
	})

	t.Run("rsi unavailable at extrema", func(t *testing.T) {
		values := append([]float64(nil), rsiValues...)
		verdict, _ := a.divergence(closes, &indicators.Line{Name: indicators.RSI, Start: 10, Values: values})
		assert.Equal(t, DivergenceNone, verdict)
	})
}

func TestClusterAndNearest(t *testing.T) {
	clusters := cluster([]float64{100, 101, 150, 99.5, 151}, 0.02)
	require.Len(t, clusters, 2)
	assert.InDelta(t, (99.5+100+101)/3, clusters[0], 1e-9)
	assert.InDelta(t, 150.5, clusters[1], 1e-9)

	assert.Nil(t, cluster(nil, 0.02))
	assert.Equal(t, []float64{120, 90}, nearest([]float64{50, 90, 120}, 110, 2))
}

func TestLevels(t *testing.T) {
	cfg := config.Default().Trend
	cfg.LevelWindow = 5
	a, err := NewAnalyzer(cfg, zerolog.Nop())
	require.NoError(t, err)

	series := testingpkg.Oscillating("OSC", 100, 100, 10, 25)
	support, resistance := a.levels(series)

	require.NotEmpty(t, support)
	require.NotEmpty(t, resistance)
	assert.LessOrEqual(t, len(support), cfg.NumLevels)
	assert.Less(t, support[0], 95.0)
	assert.Greater(t, resistance[0], 105.0)
}
