// Package analysis runs the full decision-support pipeline for one or many
// symbols and assembles the report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/metrics"
	"github.com/aristath/vigil/internal/modules/indicators"
	"github.com/aristath/vigil/internal/modules/monitor"
	"github.com/aristath/vigil/internal/modules/risk"
	"github.com/aristath/vigil/internal/modules/signals"
	"github.com/aristath/vigil/internal/modules/sizing"
	"github.com/aristath/vigil/internal/modules/stoploss"
	"github.com/aristath/vigil/internal/modules/trend"
	"github.com/aristath/vigil/internal/modules/volatility"
	"github.com/aristath/vigil/internal/utils"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// slowAnalysis is the per-symbol duration above which a warning is logged.
const slowAnalysis = time.Second

// Pipeline wires every component built from one configuration.
type Pipeline struct {
	cfg        *config.Config
	engine     *indicators.Engine
	trend      *trend.Analyzer
	volatility *volatility.Analyzer
	signals    *signals.Generator
	risk       *risk.Measurement
	sizer      *sizing.Sizer
	planner    *stoploss.Planner
	monitor    *monitor.Monitor
	recorder   metrics.Recorder
	log        zerolog.Logger
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithRecorder reports pipeline activity to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// NewPipeline validates cfg and builds every component.
func NewPipeline(cfg *config.Config, log zerolog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:      cfg,
		recorder: metrics.Nop{},
		log:      log.With().Str("component", "pipeline").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	var err error
	if p.engine, err = indicators.NewEngine(cfg.Indicators, log); err != nil {
		return nil, fmt.Errorf("failed to create indicator engine: %w", err)
	}
	if p.trend, err = trend.NewAnalyzer(cfg.Trend, log); err != nil {
		return nil, fmt.Errorf("failed to create trend analyzer: %w", err)
	}
	if p.volatility, err = volatility.NewAnalyzer(cfg.Volatility, log); err != nil {
		return nil, fmt.Errorf("failed to create volatility analyzer: %w", err)
	}
	if p.signals, err = signals.NewGenerator(cfg.Signals, log); err != nil {
		return nil, fmt.Errorf("failed to create signal generator: %w", err)
	}
	if p.risk, err = risk.NewMeasurement(cfg.Risk, log); err != nil {
		return nil, fmt.Errorf("failed to create risk measurement: %w", err)
	}
	if p.sizer, err = sizing.NewSizer(cfg.Sizing, log); err != nil {
		return nil, fmt.Errorf("failed to create position sizer: %w", err)
	}
	if p.planner, err = stoploss.NewPlanner(cfg.StopLoss, log); err != nil {
		return nil, fmt.Errorf("failed to create stop-loss planner: %w", err)
	}
	if p.monitor, err = monitor.NewMonitor(cfg.Monitor, log); err != nil {
		return nil, fmt.Errorf("failed to create risk monitor: %w", err)
	}
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// partial reports whether err only means a stage has no answer for this
// input, so the rest of the report is still meaningful.
func partial(err error) bool {
	return errors.Is(err, domain.ErrInsufficientData) || errors.Is(err, domain.ErrDegenerateTarget)
}

// Run analyses one symbol. actx may be nil.
func (p *Pipeline) Run(actx *Context, req Request) (*Report, error) {
	if req.Series == nil {
		return nil, &domain.MalformedSeriesError{Index: -1, Reason: "no series supplied"}
	}

	timer := utils.NewTimer("analyze "+req.Series.Symbol(), slowAnalysis, p.log)
	report, err := p.run(actx, req)
	p.recorder.ObserveAnalysis(timer.Stop(), err)
	if err != nil {
		return nil, err
	}

	p.recorder.ObserveSignal(string(report.Signal.Action))
	for _, a := range report.Alerts {
		p.recorder.ObserveAlert(string(a.Category))
	}

	p.log.Info().
		Str("symbol", report.Symbol).
		Str("action", string(report.Signal.Action)).
		Str("confidence", string(report.Signal.Confidence)).
		Int("alerts", len(report.Alerts)).
		Int("warnings", len(report.Warnings)).
		Msg("Analysis complete")
	return report, nil
}

func (p *Pipeline) run(actx *Context, req Request) (*Report, error) {
	series := req.Series
	report := &Report{Symbol: series.Symbol(), Bars: series.Len(), Alerts: []monitor.Alert{}}

	warn := func(stage string, err error) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", stage, err))
		p.log.Warn().Err(err).Str("symbol", report.Symbol).Str("stage", stage).Msg("Stage skipped")
	}

	set, err := actx.indicators(p.engine, series)
	if err != nil {
		return nil, err
	}
	report.Indicators = set
	report.Signal = p.signals.Generate(set)

	if report.Trend, err = p.trend.Analyze(series, set); err != nil {
		return nil, err
	}
	if report.Volatility, err = p.volatility.Analyze(series, set); err != nil {
		return nil, err
	}

	if report.RiskMetrics, err = p.risk.Measure(series); err != nil {
		if !partial(err) {
			return nil, err
		}
		warn("risk", err)
	}

	report.StopLossTarget, err = p.planStop(req, set, warn)
	if err != nil {
		return nil, err
	}

	method := req.SizingMethod
	if method == "" {
		method = sizing.MethodComposite
	}
	in := sizing.Inputs{Symbol: report.Symbol, Priors: req.Priors}
	if report.Volatility != nil {
		in.RealizedVolatility = report.Volatility.Historical
	}
	if report.StopLossTarget != nil {
		in.StopLossFraction = report.StopLossTarget.StopPercent
	}
	if report.PositionRecommendation, err = p.sizer.Recommend(method, in); err != nil {
		return nil, err
	}

	alerts, err := p.monitor.Evaluate(monitor.Inputs{
		Symbol:     report.Symbol,
		Risk:       report.RiskMetrics,
		Volatility: report.Volatility,
		Position:   report.PositionRecommendation,
		Portfolio:  req.Portfolio,
	})
	if err != nil {
		return nil, err
	}
	report.Alerts = alerts
	return report, nil
}

// planStop uses the requested method. The default ATR method falls back to a
// fixed-percentage plan while ATR is still warming up.
func (p *Pipeline) planStop(req Request, set *indicators.Set, warn func(string, error)) (*stoploss.Target, error) {
	method := req.StopMethod
	explicit := method != ""
	if !explicit {
		method = stoploss.MethodATR
	}
	sreq := stoploss.Request{Side: req.Side, Entry: req.Entry, Series: req.Series, Indicators: set}

	target, err := p.planner.Plan(method, sreq)
	if err == nil {
		return target, nil
	}
	if !partial(err) {
		return nil, err
	}
	if explicit || !errors.Is(err, domain.ErrInsufficientData) {
		warn("stop_loss", err)
		return nil, nil
	}

	target, err = p.planner.Plan(stoploss.MethodFixed, sreq)
	if err != nil {
		if !partial(err) {
			return nil, err
		}
		warn("stop_loss", err)
		return nil, nil
	}
	return target, nil
}

// RunMany analyses every request with at most limit concurrent workers
// (limit <= 0 means one per request). Reports keep request order. The first
// failure cancels the remaining work.
func (p *Pipeline) RunMany(ctx context.Context, actx *Context, reqs []Request, limit int) ([]*Report, error) {
	reports := make([]*Report, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := p.Run(actx, req)
			if err != nil {
				symbol := ""
				if req.Series != nil {
					symbol = req.Series.Symbol()
				}
				return fmt.Errorf("analyze %s: %w", symbol, err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
