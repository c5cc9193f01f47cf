package metrics

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := New(reg)
	require.NoError(t, err)

	p.ObserveAnalysis(2*time.Millisecond, nil)
	p.ObserveAnalysis(time.Millisecond, errors.New("boom"))
	p.ObserveSignal("buy")
	p.ObserveSignal("buy")
	p.ObserveAlert("warning")

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))
	out := buf.String()

	assert.Contains(t, out, `vigil_pipeline_analyses_total{outcome="ok"} 1`)
	assert.Contains(t, out, `vigil_pipeline_analyses_total{outcome="error"} 1`)
	assert.Contains(t, out, `vigil_signals_generated_total{action="buy"} 2`)
	assert.Contains(t, out, `vigil_monitor_alerts_total{category="warning"} 1`)
	assert.Contains(t, out, "vigil_pipeline_analysis_duration_seconds_count 2")
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NotPanics(t, func() {
		r.ObserveAnalysis(time.Second, nil)
		r.ObserveSignal("hold")
		r.ObserveAlert("info")
	})
}
