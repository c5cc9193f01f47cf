package cli

import (
	"fmt"
	"time"

	"github.com/aristath/vigil/internal/loader"
	"github.com/aristath/vigil/internal/modules/analysis"
	"github.com/aristath/vigil/internal/utils"
	"github.com/spf13/cobra"
)

const slowScreen = 10 * time.Second

// screenFlags select the bar files of a multi-symbol run.
type screenFlags struct {
	requestFlags
	barsDir     string
	symbols     string
	concurrency int
}

func (f *screenFlags) register(cmd *cobra.Command) {
	f.requestFlags.register(cmd)
	cmd.Flags().StringVar(&f.barsDir, "bars-dir", "", "directory of <SYMBOL>.csv / <SYMBOL>.json bar files")
	cmd.Flags().StringVar(&f.symbols, "symbols", "", "comma-separated symbols to include (default all files)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 4, "symbols analysed in parallel")
	_ = cmd.MarkFlagRequired("bars-dir")
}

func (f *screenFlags) requests(template analysis.Request) ([]analysis.Request, error) {
	all, err := loader.LoadBarsDir(f.barsDir, utils.ParseCSV(f.symbols))
	if err != nil {
		return nil, err
	}
	reqs := make([]analysis.Request, len(all))
	for i, series := range all {
		reqs[i] = template
		reqs[i].Series = series
	}
	return reqs, nil
}

// newScreenCmd creates the screen command
func newScreenCmd(a *app) *cobra.Command {
	var (
		sf     screenFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Analyse every symbol in a directory of bar files",
		Long: `Analyse several symbols concurrently and print a summary table or the full reports.
Example: vigil screen --bars-dir data --portfolio portfolio.yaml --symbols AAPL,MSFT`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatTable, formatJSON, formatMsgpack); err != nil {
				return err
			}
			template, err := sf.template(cmd)
			if err != nil {
				return err
			}
			reqs, err := sf.requests(template)
			if err != nil {
				return err
			}

			timer := utils.NewTimer("screen", slowScreen, a.log)
			reports, err := a.pipeline.RunMany(cmd.Context(), analysis.NewContext(), reqs, sf.concurrency)
			elapsed := timer.Stop()
			if err != nil {
				return fmt.Errorf("screen failed: %w", err)
			}
			a.log.Info().Int("symbols", len(reports)).Dur("elapsed", elapsed).Msg("Screen complete")

			if format == formatTable {
				return writeTable(cmd.OutOrStdout(), reports)
			}
			return encode(cmd.OutOrStdout(), format, reports)
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table, json or msgpack")
	return cmd
}
