// Package config provides configuration management functionality.
//
// Every tunable of the analysis pipeline lives in Config. Defaults come from
// `default` struct tags, a YAML file may override them, and a handful of
// environment variables (optionally from a .env file) override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Indicators IndicatorConfig  `yaml:"indicators"`
	Trend      TrendConfig      `yaml:"trend"`
	Volatility VolatilityConfig `yaml:"volatility"`
	Signals    SignalConfig     `yaml:"signals"`
	Risk       RiskConfig       `yaml:"risk"`
	Sizing     SizingConfig     `yaml:"sizing"`
	StopLoss   StopLossConfig   `yaml:"stop_loss"`
	Monitor    MonitorConfig    `yaml:"monitor"`

	LogLevel  string `yaml:"log_level" default:"info" validate:"oneof=trace debug info warn error disabled"`
	LogPretty bool   `yaml:"log_pretty"`
}

// IndicatorConfig holds the look-back periods of the indicator engine.
type IndicatorConfig struct {
	MAPeriods    []int   `yaml:"ma_periods" default:"[5,10,20,60]" validate:"min=1,dive,min=1"`
	EMAPeriods   []int   `yaml:"ema_periods" default:"[12,26]" validate:"dive,min=1"`
	MACDFast     int     `yaml:"macd_fast" default:"12" validate:"min=1"`
	MACDSlow     int     `yaml:"macd_slow" default:"26" validate:"min=2"`
	MACDSignal   int     `yaml:"macd_signal" default:"9" validate:"min=1"`
	RSIPeriod    int     `yaml:"rsi_period" default:"14" validate:"min=2"`
	KDJPeriod    int     `yaml:"kdj_period" default:"9" validate:"min=2"`
	KDJSmoothing int     `yaml:"kdj_smoothing" default:"3" validate:"min=1"`
	BollPeriod   int     `yaml:"boll_period" default:"20" validate:"min=2"`
	BollStdDev   float64 `yaml:"boll_std_dev" default:"2.0" validate:"gt=0"`
	ATRPeriod    int     `yaml:"atr_period" default:"14" validate:"min=1"`
	ADXPeriod    int     `yaml:"adx_period" default:"14" validate:"min=2"`
}

// TrendConfig tunes trend classification, levels and divergence.
type TrendConfig struct {
	Lookback             int     `yaml:"lookback" default:"20" validate:"min=2"`
	SlopeThreshold       float64 `yaml:"slope_threshold" default:"0.1" validate:"gt=0"`        // % of mean close per bar
	StrongSlopeThreshold float64 `yaml:"strong_slope_threshold" default:"0.5" validate:"gt=0"` // % of mean close per bar
	ADXModerate          float64 `yaml:"adx_moderate" default:"25" validate:"gte=0,lte=100"`
	ADXStrong            float64 `yaml:"adx_strong" default:"40" validate:"gte=0,lte=100"`
	DivergenceLookback   int     `yaml:"divergence_lookback" default:"50" validate:"min=3"`
	ExtremaWindow        int     `yaml:"extrema_window" default:"5" validate:"min=1"`
	LevelWindow          int     `yaml:"level_window" default:"20" validate:"min=1"`
	LevelHistory         int     `yaml:"level_history" default:"100" validate:"min=3"`
	LevelTolerance       float64 `yaml:"level_tolerance" default:"0.02" validate:"gt=0,lt=1"`
	NumLevels            int     `yaml:"num_levels" default:"3" validate:"min=1"`
}

// VolatilityConfig tunes volatility estimators, regime and squeeze detection.
type VolatilityConfig struct {
	Window              int     `yaml:"window" default:"20" validate:"min=2"`
	ShortWindow         int     `yaml:"short_window" default:"10" validate:"min=2"`
	LongWindow          int     `yaml:"long_window" default:"60" validate:"min=2"`
	AnnualizationFactor float64 `yaml:"annualization_factor" default:"252" validate:"gt=0"`
	ExpandingRatio      float64 `yaml:"expanding_ratio" default:"1.2" validate:"gt=0"`
	ContractingRatio    float64 `yaml:"contracting_ratio" default:"0.8" validate:"gt=0"`
	SqueezePercentile   float64 `yaml:"squeeze_percentile" default:"20" validate:"gt=0,lt=100"`
	SqueezeLookback     int     `yaml:"squeeze_lookback" default:"120" validate:"min=2"`
	StrongSqueezeRatio  float64 `yaml:"strong_squeeze_ratio" default:"0.5" validate:"gt=0"`
	SqueezeRatio        float64 `yaml:"squeeze_ratio" default:"0.7" validate:"gt=0"`
	ExpansionRatio      float64 `yaml:"expansion_ratio" default:"1.5" validate:"gt=0"`
	RiskFreeRate        float64 `yaml:"risk_free_rate" default:"0.03" validate:"gte=0,lt=1"` // annual
	Confidence          float64 `yaml:"confidence" default:"0.95" validate:"gt=0,lt=1"`
}

// SignalConfig tunes the per-indicator voting rules.
type SignalConfig struct {
	RSIOverbought   float64 `yaml:"rsi_overbought" default:"70" validate:"gt=0,lt=100"`
	RSIOversold     float64 `yaml:"rsi_oversold" default:"30" validate:"gt=0,lt=100"`
	RSIExtremeHigh  float64 `yaml:"rsi_extreme_high" default:"80" validate:"gt=0,lte=100"`
	RSIExtremeLow   float64 `yaml:"rsi_extreme_low" default:"20" validate:"gte=0,lt=100"`
	KDJUpper        float64 `yaml:"kdj_upper" default:"100"`
	KDJLower        float64 `yaml:"kdj_lower" default:"0"`
	StrongThreshold int     `yaml:"strong_threshold" default:"5" validate:"min=1"`
	Threshold       int     `yaml:"threshold" default:"3" validate:"min=1"`
	MinAgreement    int     `yaml:"min_agreement" default:"3" validate:"min=1,max=4"`
	MaxReasons      int     `yaml:"max_reasons" default:"5" validate:"min=1,max=5"`
}

// RiskWeights are the score weights of the four risk sub-scores.
type RiskWeights struct {
	Drawdown   float64 `yaml:"drawdown" default:"0.3" validate:"gte=0,lte=1"`
	Volatility float64 `yaml:"volatility" default:"0.3" validate:"gte=0,lte=1"`
	VaR        float64 `yaml:"var" default:"0.2" validate:"gte=0,lte=1"`
	Sharpe     float64 `yaml:"sharpe" default:"0.2" validate:"gte=0,lte=1"`
}

// Breakpoints map a raw metric linearly onto 0..100 between Floor and Ceiling.
type Breakpoints struct {
	Floor   float64 `yaml:"floor"`
	Ceiling float64 `yaml:"ceiling"`
}

// RiskConfig tunes RiskMeasurement.
type RiskConfig struct {
	Weights               RiskWeights `yaml:"weights"`
	DrawdownBreakpoints   Breakpoints `yaml:"drawdown_breakpoints" default:"{\"Floor\":0.05,\"Ceiling\":0.40}"`
	VolatilityBreakpoints Breakpoints `yaml:"volatility_breakpoints" default:"{\"Floor\":0.10,\"Ceiling\":0.50}"`
	VaRBreakpoints        Breakpoints `yaml:"var_breakpoints" default:"{\"Floor\":0.01,\"Ceiling\":0.05}"`
	SharpeBreakpoints     Breakpoints `yaml:"sharpe_breakpoints" default:"{\"Floor\":0,\"Ceiling\":2}"`
	Confidence            float64     `yaml:"confidence" default:"0.95" validate:"gt=0,lt=1"`
	RiskFreeRate          float64     `yaml:"risk_free_rate" default:"0.03" validate:"gte=0,lt=1"`
	AnnualizationFactor   float64     `yaml:"annualization_factor" default:"252" validate:"gt=0"`
	MinReturns            int         `yaml:"min_returns" default:"2" validate:"min=2"`
}

// CompositeWeights weight the three base sizing methods.
type CompositeWeights struct {
	Kelly      float64 `yaml:"kelly" default:"0.4" validate:"gte=0,lte=1"`
	Volatility float64 `yaml:"volatility" default:"0.4" validate:"gte=0,lte=1"`
	FixedRisk  float64 `yaml:"fixed_risk" default:"0.2" validate:"gte=0,lte=1"`
}

// SizingConfig tunes PositionSizer.
type SizingConfig struct {
	MinPosition      float64          `yaml:"min_position" default:"0.05" validate:"gte=0,lte=1"`
	MaxPosition      float64          `yaml:"max_position" default:"0.30" validate:"gt=0,lte=1"`
	KellyFraction    float64          `yaml:"kelly_fraction" default:"0.25" validate:"gt=0,lte=1"`
	TargetVolatility float64          `yaml:"target_volatility" default:"0.15" validate:"gt=0"`
	RiskPerTrade     float64          `yaml:"risk_per_trade" default:"0.02" validate:"gt=0,lt=1"`
	DefaultStopLoss  float64          `yaml:"default_stop_loss" default:"0.05" validate:"gt=0,lt=1"`
	Composite        CompositeWeights `yaml:"composite"`
}

// StopLossConfig tunes StopLossPlanner.
type StopLossConfig struct {
	StopPercent         float64 `yaml:"stop_percent" default:"0.05" validate:"gt=0,lt=1"`
	TargetPercent       float64 `yaml:"target_percent" default:"0.15" validate:"gt=0"`
	ATRStopMultiplier   float64 `yaml:"atr_stop_multiplier" default:"2.0" validate:"gt=0"`
	ATRTargetMultiplier float64 `yaml:"atr_target_multiplier" default:"3.0" validate:"gt=0"`
	LevelBuffer         float64 `yaml:"level_buffer" default:"0.01" validate:"gte=0,lt=1"`
	LevelLookback       int     `yaml:"level_lookback" default:"20" validate:"min=2"`
	TickSize            float64 `yaml:"tick_size" validate:"gte=0"` // 0 disables rounding
}

// MonitorConfig holds the RiskMonitor thresholds.
type MonitorConfig struct {
	MaxDrawdown        float64 `yaml:"max_drawdown" default:"0.20" validate:"gt=0,lt=1"`
	MaxVolatility      float64 `yaml:"max_volatility" default:"0.40" validate:"gt=0"`
	MaxVaR             float64 `yaml:"max_var" default:"0.05" validate:"gt=0,lt=1"`
	MinSharpe          float64 `yaml:"min_sharpe" default:"0.5"`
	MaxPositionWeight  float64 `yaml:"max_position_weight" default:"0.30" validate:"gt=0,lte=1"`
	MinDiversification int     `yaml:"min_diversification" default:"3" validate:"min=1"`
	SeverityStep       float64 `yaml:"severity_step" default:"0.5" validate:"gt=0"`
	AlertOnRiskLevel   bool    `yaml:"alert_on_risk_level" default:"true"`
}

// Default returns a configuration populated from the `default` tags.
func Default() *Config {
	cfg := &Config{}
	defaults.MustSet(cfg)
	return cfg
}

// Load reads a YAML file on top of the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads an optional .env file, reads VIGIL_CONFIG for a YAML path and
// applies the environment overrides.
func FromEnv() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := Load(getEnv("VIGIL_CONFIG", ""))
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides selected fields from environment variables.
func (c *Config) ApplyEnv() {
	c.LogLevel = getEnv("VIGIL_LOG_LEVEL", c.LogLevel)
	c.LogPretty = getEnvAsBool("VIGIL_LOG_PRETTY", c.LogPretty)

	rf := getEnvAsFloat("VIGIL_RISK_FREE_RATE", c.Risk.RiskFreeRate)
	c.Risk.RiskFreeRate = rf
	c.Volatility.RiskFreeRate = rf

	c.Sizing.MinPosition = getEnvAsFloat("VIGIL_MIN_POSITION", c.Sizing.MinPosition)
	c.Sizing.MaxPosition = getEnvAsFloat("VIGIL_MAX_POSITION", c.Sizing.MaxPosition)
	c.Monitor.MaxDrawdown = getEnvAsFloat("VIGIL_MAX_DRAWDOWN", c.Monitor.MaxDrawdown)
	c.Monitor.MinDiversification = getEnvAsInt("VIGIL_MIN_DIVERSIFICATION", c.Monitor.MinDiversification)
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// IsInvalid reports whether err is a configuration error.
func IsInvalid(err error) bool {
	var verrs ValidationErrors
	return errors.As(err, &verrs)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
