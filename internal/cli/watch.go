package cli

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/stream"
	"github.com/aristath/vigil/internal/scheduler"
	"github.com/aristath/vigil/internal/utils"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
)

// timedJob records the duration of every run.
type timedJob struct {
	scheduler.Job
	stats *utils.Stats
}

func (j timedJob) Run(ctx context.Context) error {
	start := time.Now()
	err := j.Job.Run(ctx)
	j.stats.Add(time.Since(start))
	return err
}

// newWatchCmd creates the watch command
func newWatchCmd(a *app) *cobra.Command {
	var (
		sf       screenFlags
		schedule string
		stateDir string
		format   string
		once     bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-screen a directory of bar files on a schedule",
		Long: `Reload the bar files on every tick and print one update per symbol whose bars advanced.
Example: vigil watch --bars-dir data --schedule "@every 5m" --state-dir .vigil`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatJSON, formatMsgpack); err != nil {
				return err
			}
			template, err := sf.template(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			emit := func(u scheduler.Update) error { return json.NewEncoder(out).Encode(u) }
			if format == formatMsgpack {
				enc := msgpack.NewEncoder(out)
				emit = func(u scheduler.Update) error { return enc.Encode(u) }
			}

			var store scheduler.StateStore
			if stateDir != "" {
				store = stream.FileStore{Dir: stateDir}
			}

			watch, err := scheduler.NewWatchJob(scheduler.WatchConfig{
				Pipeline: a.pipeline,
				Source: scheduler.SeriesSourceFunc(func(ctx context.Context) ([]*domain.Series, error) {
					reqs, err := sf.requests(template)
					if err != nil {
						return nil, err
					}
					series := make([]*domain.Series, len(reqs))
					for i, r := range reqs {
						series[i] = r.Series
					}
					return series, nil
				}),
				Store:    store,
				Template: template,
				Limit:    sf.concurrency,
				Emit:     emit,
				Log:      a.log,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stats := &utils.Stats{OperationName: "watch"}
			defer stats.Log(a.log)
			job := timedJob{Job: watch, stats: stats}

			s := scheduler.New(ctx, a.log)
			if err := s.RunNow(job); err != nil || once {
				return err
			}
			if err := s.AddJob(schedule, job); err != nil {
				return err
			}
			s.Start()
			<-ctx.Done()
			s.Stop()
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVar(&schedule, "schedule", "@every 1m", "cron schedule or descriptor such as @every 5m")
	cmd.Flags().StringVar(&stateDir, "state-dir", "", "directory for incremental tracker snapshots")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json (one object per line) or msgpack")
	cmd.Flags().BoolVar(&once, "once", false, "run a single tick and exit")
	return cmd
}
