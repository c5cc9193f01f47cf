package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeReturns(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestMeanAndStdDev(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		mean     float64
		sampleSD float64
	}{
		{"empty", nil, 0, 0},
		{"single value", []float64{3}, 3, 0},
		{"constant", []float64{5, 5, 5, 5}, 5, 0},
		{"textbook", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2.138},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.mean, Mean(tt.data), 1e-9)
			assert.InDelta(t, tt.sampleSD, StdDev(tt.data), 1e-3)
		})
	}
}

func TestQuantile(t *testing.T) {
	data := []float64{5, 1, 4, 2, 3}

	assert.Equal(t, 1.0, Quantile(0, data), "p=0 is the minimum")
	assert.Equal(t, 5.0, Quantile(1, data), "p=1 is the maximum")
	assert.Equal(t, 0.0, Quantile(0.5, nil))

	prev := math.Inf(-1)
	for p := 0.0; p <= 1.0; p += 0.05 {
		q := Quantile(p, data)
		assert.GreaterOrEqual(t, q, prev, "quantile must be monotonic in p")
		prev = q
	}

	// input must not be reordered
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, data)
}

func TestPercentileRank(t *testing.T) {
	data := []float64{1, 2, 3, 4}

	assert.InDelta(t, 0.0, PercentileRank(1, data), 1e-9)
	assert.InDelta(t, 50.0, PercentileRank(2.5, data), 1e-9)
	assert.InDelta(t, 100.0, PercentileRank(10, data), 1e-9)
	assert.InDelta(t, 0.0, PercentileRank(1, nil), 1e-9)
}

func TestLinearSlope(t *testing.T) {
	tests := []struct {
		name     string
		y        []float64
		expected float64
	}{
		{"rising line", []float64{100, 101, 102, 103, 104}, 1.0},
		{"falling line", []float64{10, 8, 6, 4}, -2.0},
		{"flat", []float64{7, 7, 7}, 0.0},
		{"too short", []float64{1}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, LinearSlope(tt.y), 1e-9)
		})
	}
}

func TestClampAndIsFinite(t *testing.T) {
	assert.Equal(t, 0.05, Clamp(0.01, 0.05, 0.3))
	assert.Equal(t, 0.3, Clamp(0.9, 0.05, 0.3))
	assert.Equal(t, 0.1, Clamp(0.1, 0.05, 0.3))

	assert.True(t, IsFinite(1.5))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(1)))
}
