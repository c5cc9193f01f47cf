package cli

import (
	"fmt"

	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/loader"
	"github.com/aristath/vigil/internal/modules/analysis"
	"github.com/aristath/vigil/internal/modules/sizing"
	"github.com/aristath/vigil/internal/modules/stoploss"
	"github.com/spf13/cobra"
)

// requestFlags are the per-symbol options shared by analyze, screen and watch.
type requestFlags struct {
	portfolio string
	winRate   float64
	payoff    float64
	side      string
	sizing    string
	stop      string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.portfolio, "portfolio", "", "YAML portfolio snapshot (symbol: weight)")
	cmd.Flags().Float64Var(&f.winRate, "win-rate", 0, "historical win rate for Kelly sizing (0..1)")
	cmd.Flags().Float64Var(&f.payoff, "payoff", 0, "average win / average loss for Kelly sizing")
	cmd.Flags().StringVar(&f.side, "side", string(domain.SideLong), "position side: long or short")
	cmd.Flags().StringVar(&f.sizing, "sizing", string(sizing.MethodComposite), "sizing method: kelly, volatility, fixed_risk or composite")
	cmd.Flags().StringVar(&f.stop, "stop", "", "stop method: fixed, atr or support_resistance (default atr with fixed fallback)")
}

func (f *requestFlags) priors(cmd *cobra.Command) (*sizing.Priors, error) {
	win, pay := cmd.Flags().Changed("win-rate"), cmd.Flags().Changed("payoff")
	if !win && !pay {
		return nil, nil
	}
	if win != pay {
		return nil, fmt.Errorf("--win-rate and --payoff must be given together")
	}
	return &sizing.Priors{WinRate: f.winRate, PayoffRatio: f.payoff}, nil
}

// template builds a request without a series.
func (f *requestFlags) template(cmd *cobra.Command) (analysis.Request, error) {
	var req analysis.Request

	side := domain.Side(f.side)
	if !side.Valid() {
		return req, fmt.Errorf("unknown side %q", f.side)
	}
	method, err := sizing.ParseMethod(f.sizing)
	if err != nil {
		return req, err
	}
	var stop stoploss.Method
	if f.stop != "" {
		if stop, err = stoploss.ParseMethod(f.stop); err != nil {
			return req, err
		}
	}
	priors, err := f.priors(cmd)
	if err != nil {
		return req, err
	}

	var portfolio *domain.Portfolio
	if f.portfolio != "" {
		if portfolio, err = loader.LoadPortfolio(f.portfolio); err != nil {
			return req, err
		}
	}

	return analysis.Request{
		Portfolio:    portfolio,
		Priors:       priors,
		Side:         side,
		SizingMethod: method,
		StopMethod:   stop,
	}, nil
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		rf     requestFlags
		bars   string
		entry  float64
		format string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse one symbol from a CSV or JSON bars file",
		Long: `Analyse one symbol and print the full report.
Example: vigil analyze --bars data/aapl.csv --portfolio portfolio.yaml --win-rate 0.55 --payoff 1.8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatJSON, formatMsgpack); err != nil {
				return err
			}
			req, err := rf.template(cmd)
			if err != nil {
				return err
			}
			if req.Series, err = loader.LoadBars(bars); err != nil {
				return err
			}
			req.Entry = entry

			report, err := a.pipeline.Run(analysis.NewContext(), req)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			return encode(cmd.OutOrStdout(), format, report)
		},
	}

	rf.register(cmd)
	cmd.Flags().StringVar(&bars, "bars", "", "bars file (.csv or .json)")
	cmd.Flags().Float64Var(&entry, "entry", 0, "entry price (defaults to the last close)")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or msgpack")
	_ = cmd.MarkFlagRequired("bars")

	return cmd
}
