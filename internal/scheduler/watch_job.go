package scheduler

import (
	"context"
	"fmt"

	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/analysis"
	"github.com/aristath/vigil/internal/modules/stream"
	"github.com/rs/zerolog"
)

// SeriesSource supplies the latest bars for every watched symbol.
type SeriesSource interface {
	Load(ctx context.Context) ([]*domain.Series, error)
}

// SeriesSourceFunc adapts a function to SeriesSource.
type SeriesSourceFunc func(ctx context.Context) ([]*domain.Series, error)

// Load calls f.
func (f SeriesSourceFunc) Load(ctx context.Context) ([]*domain.Series, error) { return f(ctx) }

// StateStore persists tracker snapshots between runs.
type StateStore interface {
	Load(symbol string) ([]byte, bool, error)
	Save(symbol string, data []byte) error
}

// Update is emitted for every symbol that received new bars.
type Update struct {
	Report  *analysis.Report `json:"report" msgpack:"report"`
	Stream  stream.Values    `json:"stream" msgpack:"stream"`
	NewBars int              `json:"new_bars" msgpack:"new_bars"`
}

// WatchJob re-analyses symbols whose bars advanced since the previous run.
type WatchJob struct {
	pipeline  *analysis.Pipeline
	actx      *analysis.Context
	source    SeriesSource
	store     StateStore
	trackers map[string]*stream.Tracker
	template analysis.Request
	limit    int
	emit     func(Update) error
	log      zerolog.Logger
}

// WatchConfig holds configuration for the watch job
type WatchConfig struct {
	Pipeline *analysis.Pipeline
	Source   SeriesSource
	Store    StateStore // optional
	// Template is copied for every symbol; its Series is replaced.
	Template analysis.Request
	Limit    int
	Emit     func(Update) error
	Log      zerolog.Logger
}

// NewWatchJob creates a new watch job
func NewWatchJob(cfg WatchConfig) (*WatchJob, error) {
	if cfg.Pipeline == nil || cfg.Source == nil || cfg.Emit == nil {
		return nil, fmt.Errorf("watch job needs a pipeline, a source and an emitter")
	}
	return &WatchJob{
		pipeline: cfg.Pipeline,
		actx:     analysis.NewContext(),
		source:   cfg.Source,
		store:    cfg.Store,
		trackers: make(map[string]*stream.Tracker),
		template: cfg.Template,
		limit:    cfg.Limit,
		emit:     cfg.Emit,
		log:      cfg.Log.With().Str("job", "watch").Logger(),
	}, nil
}

// Name returns the job name
func (j *WatchJob) Name() string {
	return "watch"
}

// Run loads the source, advances each tracker and analyses the symbols that
// moved. A tracker is only replaced once its update has been emitted, so a
// failed tick leaves the bars pending for the next one.
func (j *WatchJob) Run(ctx context.Context) error {
	all, err := j.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load bars: %w", err)
	}

	var (
		reqs   []analysis.Request
		moved  []*stream.Tracker
		counts []int
	)
	for _, series := range all {
		current, err := j.tracker(series.Symbol())
		if err != nil {
			return err
		}
		next := current.Clone()
		added, err := next.Seed(series)
		if err != nil {
			return fmt.Errorf("failed to advance %s: %w", series.Symbol(), err)
		}
		if added == 0 {
			continue
		}
		req := j.template
		req.Series = series
		reqs = append(reqs, req)
		moved = append(moved, next)
		counts = append(counts, added)
	}

	j.log.Info().Int("symbols", len(all)).Int("updated", len(reqs)).Msg("Watch tick")
	if len(reqs) == 0 {
		return nil
	}

	// Memo entries from earlier ticks are keyed by shorter series.
	j.actx.Reset()
	reports, err := j.pipeline.RunMany(ctx, j.actx, reqs, j.limit)
	if err != nil {
		return err
	}

	for i, report := range reports {
		if err := j.emit(Update{Report: report, Stream: moved[i].Latest(), NewBars: counts[i]}); err != nil {
			return fmt.Errorf("failed to emit %s: %w", report.Symbol, err)
		}
		j.trackers[report.Symbol] = moved[i]
		if err := j.save(report.Symbol, moved[i]); err != nil {
			return err
		}
	}
	return nil
}

func (j *WatchJob) tracker(symbol string) (*stream.Tracker, error) {
	if t, ok := j.trackers[symbol]; ok {
		return t, nil
	}

	var t *stream.Tracker
	if j.store != nil {
		data, ok, err := j.store.Load(symbol)
		if err != nil {
			return nil, err
		}
		if ok {
			if t, err = stream.Restore(data, j.pipeline.Config().Indicators, j.log); err != nil {
				j.log.Warn().Err(err).Str("symbol", symbol).Msg("Discarding tracker state")
				t = nil
			}
		}
	}
	if t == nil {
		var err error
		t, err = stream.NewTracker(symbol, j.pipeline.Config().Indicators, j.log)
		if err != nil {
			return nil, err
		}
	}
	j.trackers[symbol] = t
	return t, nil
}

func (j *WatchJob) save(symbol string, t *stream.Tracker) error {
	if j.store == nil {
		return nil
	}
	data, err := t.Snapshot()
	if err != nil {
		return err
	}
	return j.store.Save(symbol, data)
}
