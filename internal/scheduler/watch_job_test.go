package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/analysis"
	"github.com/aristath/vigil/internal/modules/sizing"
	"github.com/aristath/vigil/internal/modules/stoploss"
	"github.com/aristath/vigil/internal/modules/stream"
	testingpkg "github.com/aristath/vigil/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type watchHarness struct {
	series   []*domain.Series
	updates  []Update
	template analysis.Request
}

func (h *watchHarness) job(t *testing.T, store StateStore) *WatchJob {
	t.Helper()
	pipeline, err := analysis.NewPipeline(config.Default(), zerolog.Nop())
	require.NoError(t, err)
	job, err := NewWatchJob(WatchConfig{
		Pipeline: pipeline,
		Source: SeriesSourceFunc(func(ctx context.Context) ([]*domain.Series, error) {
			return h.series, nil
		}),
		Store:    store,
		Template: h.template,
		Limit:    2,
		Emit: func(u Update) error {
			h.updates = append(h.updates, u)
			return nil
		},
		Log: zerolog.Nop(),
	})
	require.NoError(t, err)
	return job
}

func appendDay(t *testing.T, s *domain.Series) *domain.Series {
	t.Helper()
	last := s.Last()
	next := last
	next.Timestamp = last.Timestamp.AddDate(0, 0, 1)
	out, err := s.Append(next)
	require.NoError(t, err)
	return out
}

func TestWatchJob_AnalysesOnlyAdvancedSymbols(t *testing.T) {
	h := &watchHarness{series: []*domain.Series{
		testingpkg.RandomWalk("AAA", 80, 1, 0.01),
		testingpkg.RandomWalk("BBB", 80, 2, 0.01),
	}}
	job := h.job(t, nil)
	ctx := context.Background()

	require.NoError(t, job.Run(ctx))
	require.Len(t, h.updates, 2)
	assert.Equal(t, "AAA", h.updates[0].Report.Symbol)
	assert.Equal(t, 80, h.updates[0].NewBars)
	assert.Equal(t, 80, h.updates[0].Stream.Bars)

	h.updates = nil
	require.NoError(t, job.Run(ctx))
	assert.Empty(t, h.updates)

	h.series[1] = appendDay(t, h.series[1])
	require.NoError(t, job.Run(ctx))
	require.Len(t, h.updates, 1)
	assert.Equal(t, "BBB", h.updates[0].Report.Symbol)
	assert.Equal(t, 1, h.updates[0].NewBars)
	assert.Equal(t, 81, h.updates[0].Stream.Bars)
	assert.Equal(t, 81, h.updates[0].Report.Bars)
}

func TestWatchJob_ResumesFromStore(t *testing.T) {
	store := stream.FileStore{Dir: t.TempDir()}
	h := &watchHarness{series: []*domain.Series{testingpkg.RandomWalk("AAA", 60, 4, 0.01)}}

	require.NoError(t, h.job(t, store).Run(context.Background()))
	require.Len(t, h.updates, 1)

	h.updates = nil
	resumed := h.job(t, store)
	require.NoError(t, resumed.Run(context.Background()))
	assert.Empty(t, h.updates)

	h.series[0] = appendDay(t, h.series[0])
	require.NoError(t, resumed.Run(context.Background()))
	require.Len(t, h.updates, 1)
	assert.Equal(t, 61, h.updates[0].Stream.Bars)
}

func TestWatchJob_Errors(t *testing.T) {
	_, err := NewWatchJob(WatchConfig{})
	assert.Error(t, err)

	h := &watchHarness{series: []*domain.Series{testingpkg.RandomWalk("AAA", 30, 4, 0.01)}}
	job := h.job(t, nil)
	job.source = SeriesSourceFunc(func(ctx context.Context) ([]*domain.Series, error) {
		return nil, errors.New("disk gone")
	})
	assert.ErrorContains(t, job.Run(context.Background()), "disk gone")

	job = h.job(t, nil)
	job.emit = func(Update) error { return errors.New("sink closed") }
	assert.ErrorContains(t, job.Run(context.Background()), "sink closed")
}

func TestWatchJob_StoreErrors(t *testing.T) {
	store := testingpkg.NewMockStateStore()
	h := &watchHarness{series: []*domain.Series{testingpkg.RandomWalk("AAA", 40, 9, 0.01)}}

	job := h.job(t, store)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, store.Saves())

	store.SetError(errors.New("read only"))
	h.series[0] = appendDay(t, h.series[0])
	assert.ErrorContains(t, job.Run(context.Background()), "read only")

	assert.ErrorContains(t, h.job(t, store).Run(context.Background()), "read only")
}

func TestWatchJob_FailedTickKeepsBarsPending(t *testing.T) {
	h := &watchHarness{series: []*domain.Series{
		testingpkg.RandomWalk("AAA", 80, 1, 0.01),
		testingpkg.RandomWalk("ZZZ", 1, 2, 0.01),
	}}
	job := h.job(t, nil)
	ctx := context.Background()

	err := job.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
	assert.Empty(t, h.updates)

	h.series = h.series[:1]
	require.NoError(t, job.Run(ctx))
	require.Len(t, h.updates, 1)
	assert.Equal(t, "AAA", h.updates[0].Report.Symbol)
	assert.Equal(t, 80, h.updates[0].NewBars)
	assert.Equal(t, 80, h.updates[0].Stream.Bars)
}

func TestWatchJob_FailedEmitKeepsBarsPending(t *testing.T) {
	store := testingpkg.NewMockStateStore()
	h := &watchHarness{series: []*domain.Series{testingpkg.RandomWalk("AAA", 60, 3, 0.01)}}
	job := h.job(t, store)
	ctx := context.Background()

	sink := job.emit
	job.emit = func(Update) error { return errors.New("sink closed") }
	require.Error(t, job.Run(ctx))
	assert.Equal(t, 0, store.Saves())

	job.emit = sink
	require.NoError(t, job.Run(ctx))
	require.Len(t, h.updates, 1)
	assert.Equal(t, 60, h.updates[0].NewBars)
	assert.Equal(t, 1, store.Saves())
}

func TestWatchJob_AppliesRequestTemplate(t *testing.T) {
	h := &watchHarness{
		series: []*domain.Series{testingpkg.RandomWalk("AAA", 80, 5, 0.01)},
		template: analysis.Request{
			Side:         domain.SideShort,
			StopMethod:   stoploss.MethodFixed,
			SizingMethod: sizing.MethodVolatility,
		},
	}
	require.NoError(t, h.job(t, nil).Run(context.Background()))
	require.Len(t, h.updates, 1)

	report := h.updates[0].Report
	require.NotNil(t, report.StopLossTarget)
	assert.Equal(t, domain.SideShort, report.StopLossTarget.Side)
	assert.Equal(t, stoploss.MethodFixed, report.StopLossTarget.Method)
	assert.Greater(t, report.StopLossTarget.Stop, report.StopLossTarget.Entry)
	require.NotNil(t, report.PositionRecommendation)
	assert.Equal(t, sizing.MethodVolatility, report.PositionRecommendation.Method)
}

func TestWatchJob_DiscardsStateFromOtherPeriods(t *testing.T) {
	store := stream.FileStore{Dir: t.TempDir()}
	old := config.Default().Indicators
	old.RSIPeriod = 7
	tr, err := stream.NewTracker("AAA", old, zerolog.Nop())
	require.NoError(t, err)
	series := testingpkg.RandomWalk("AAA", 60, 6, 0.01)
	_, err = tr.Seed(series)
	require.NoError(t, err)
	data, err := tr.Snapshot()
	require.NoError(t, err)
	require.NoError(t, store.Save("AAA", data))

	h := &watchHarness{series: []*domain.Series{series}}
	require.NoError(t, h.job(t, store).Run(context.Background()))
	require.Len(t, h.updates, 1)
	assert.Equal(t, 60, h.updates[0].NewBars)
}
