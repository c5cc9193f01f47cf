// Package metrics exposes pipeline activity as Prometheus collectors.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder receives pipeline events.
type Recorder interface {
	ObserveAnalysis(duration time.Duration, err error)
	ObserveSignal(action string)
	ObserveAlert(category string)
}

// Nop discards every event.
type Nop struct{}

func (Nop) ObserveAnalysis(time.Duration, error) {}
func (Nop) ObserveSignal(string)                 {}
func (Nop) ObserveAlert(string)                  {}

// Prometheus records events into collectors registered on a registry.
type Prometheus struct {
	analyses *prometheus.CounterVec
	duration prometheus.Histogram
	signals  *prometheus.CounterVec
	alerts   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vigil",
				Subsystem: "pipeline",
				Name:      "analyses_total",
				Help:      "Symbol analyses by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "vigil",
				Subsystem: "pipeline",
				Name:      "analysis_duration_seconds",
				Help:      "Time spent analysing one symbol",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vigil",
				Subsystem: "signals",
				Name:      "generated_total",
				Help:      "Composite signals by action",
			},
			[]string{"action"},
		),
		alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vigil",
				Subsystem: "monitor",
				Name:      "alerts_total",
				Help:      "Risk alerts by category",
			},
			[]string{"category"},
		),
	}

	for _, c := range []prometheus.Collector{p.analyses, p.duration, p.signals, p.alerts} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return p, nil
}

func (p *Prometheus) ObserveAnalysis(duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.analyses.WithLabelValues(outcome).Inc()
	p.duration.Observe(duration.Seconds())
}

func (p *Prometheus) ObserveSignal(action string) {
	p.signals.WithLabelValues(action).Inc()
}

func (p *Prometheus) ObserveAlert(category string) {
	p.alerts.WithLabelValues(category).Inc()
}

// WriteText encodes every family gathered from g in the text exposition
// format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
