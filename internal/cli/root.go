// Package cli implements the vigil command line.
package cli

import (
	"fmt"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/metrics"
	"github.com/aristath/vigil/internal/modules/analysis"
	"github.com/aristath/vigil/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	logLevel   string
	logPretty  bool
	metrics    bool

	cfg      *config.Config
	log      zerolog.Logger
	registry *prometheus.Registry
	pipeline *analysis.Pipeline
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "vigil",
		Short: "vigil - technical analysis and risk decision support",
		Long: `vigil computes indicators, trend, volatility, trading signals, risk metrics,
position sizes, stop-loss targets and risk alerts from OHLCV bar files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !a.metrics || a.registry == nil {
				return nil
			}
			return metrics.WriteText(cmd.ErrOrStderr(), a.registry)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(a))
	rootCmd.AddCommand(newScreenCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file (defaults to $VIGIL_CONFIG)")
	flags.StringVar(&a.logLevel, "log-level", "", "trace, debug, info, warn, error or disabled")
	flags.BoolVar(&a.logPretty, "log-pretty", false, "human readable logs")
	flags.BoolVar(&a.metrics, "metrics", false, "dump Prometheus metrics to stderr on exit")

	return rootCmd
}

// setup loads configuration, builds the logger and the pipeline.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("log-pretty") {
		cfg.LogPretty = a.logPretty
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: cmd.ErrOrStderr(),
	})
	logger.SetGlobalLogger(a.log)

	a.registry = prometheus.NewRegistry()
	recorder, err := metrics.New(a.registry)
	if err != nil {
		return err
	}

	a.pipeline, err = analysis.NewPipeline(cfg, a.log, analysis.WithRecorder(recorder))
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath == "" {
		return config.FromEnv()
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// newConfigCmd creates the config command
func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.cfg.YAML()
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
