package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/vigil/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []int{5, 10, 20, 60}, cfg.Indicators.MAPeriods)
	assert.Equal(t, []int{12, 26}, cfg.Indicators.EMAPeriods)
	assert.Equal(t, 9, cfg.Indicators.MACDSignal)
	assert.Equal(t, 14, cfg.Indicators.RSIPeriod)
	assert.Equal(t, 2.0, cfg.Indicators.BollStdDev)
	assert.Equal(t, 20, cfg.Trend.Lookback)
	assert.Equal(t, 252.0, cfg.Volatility.AnnualizationFactor)
	assert.Equal(t, 20.0, cfg.Volatility.SqueezePercentile)
	assert.Equal(t, 0.3, cfg.Risk.Weights.Drawdown)
	assert.Equal(t, Breakpoints{Floor: 0.05, Ceiling: 0.40}, cfg.Risk.DrawdownBreakpoints)
	assert.Equal(t, Breakpoints{Floor: 0, Ceiling: 2}, cfg.Risk.SharpeBreakpoints)
	assert.Equal(t, 0.05, cfg.Sizing.MinPosition)
	assert.Equal(t, 0.30, cfg.Sizing.MaxPosition)
	assert.Equal(t, 0.25, cfg.Sizing.KellyFraction)
	assert.Equal(t, 0.4, cfg.Sizing.Composite.Kelly)
	assert.Equal(t, 2.0, cfg.StopLoss.ATRStopMultiplier)
	assert.Equal(t, 3.0, cfg.StopLoss.ATRTargetMultiplier)
	assert.Equal(t, 0.20, cfg.Monitor.MaxDrawdown)
	assert.Equal(t, 3, cfg.Monitor.MinDiversification)
	assert.True(t, cfg.Monitor.AlertOnRiskLevel)
	assert.Equal(t, "info", cfg.LogLevel)

	require.NoError(t, cfg.Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"weights do not sum to one", func(c *Config) { c.Risk.Weights.Sharpe = 0.5 }, "risk.weights"},
		{"negative weight", func(c *Config) { c.Risk.Weights.VaR = -0.1 }, "risk.weights.var"},
		{"zero rsi period", func(c *Config) { c.Indicators.RSIPeriod = 0 }, "indicators.rsi_period"},
		{"fast not below slow", func(c *Config) { c.Indicators.MACDFast = 30 }, "indicators.macd_fast"},
		{"min above max position", func(c *Config) { c.Sizing.MinPosition = 0.5 }, "sizing.min_position"},
		{"short window not below long", func(c *Config) { c.Volatility.ShortWindow = 90 }, "volatility.short_window"},
		{"inverted breakpoints", func(c *Config) { c.Risk.VaRBreakpoints = Breakpoints{Floor: 0.1, Ceiling: 0.01} }, "risk.var_breakpoints"},
		{"rsi thresholds out of order", func(c *Config) { c.Signals.RSIOversold = 75 }, "signals.rsi_oversold"},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }, "log_level"},
		{"zero ma period", func(c *Config) { c.Indicators.MAPeriods = []int{5, 0} }, "indicators.ma_periods[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration))
			assert.True(t, IsInvalid(err))

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			fields := make([]string, 0, len(verrs))
			for _, v := range verrs {
				fields = append(fields, v.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vigil.yaml")
	content := `
indicators:
  rsi_period: 21
  ma_periods: [10, 30]
sizing:
  max_position: 0.25
monitor:
  alert_on_risk_level: false
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 21, cfg.Indicators.RSIPeriod)
	assert.Equal(t, []int{10, 30}, cfg.Indicators.MAPeriods)
	assert.Equal(t, 0.25, cfg.Sizing.MaxPosition)
	assert.Equal(t, 0.05, cfg.Sizing.MinPosition, "untouched fields keep defaults")
	assert.False(t, cfg.Monitor.AlertOnRiskLevel)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("risk:\n  weights:\n    drawdown: 0.9\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("VIGIL_LOG_LEVEL", "warn")
	t.Setenv("VIGIL_RISK_FREE_RATE", "0.05")
	t.Setenv("VIGIL_MAX_POSITION", "0.2")
	t.Setenv("VIGIL_MIN_DIVERSIFICATION", "not-a-number")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 0.05, cfg.Risk.RiskFreeRate)
	assert.Equal(t, 0.05, cfg.Volatility.RiskFreeRate)
	assert.Equal(t, 0.2, cfg.Sizing.MaxPosition)
	assert.Equal(t, 3, cfg.Monitor.MinDiversification, "unparsable values are ignored")
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	data, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "rsi_period: 14")

	path := filepath.Join(t.TempDir(), "roundtrip.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
