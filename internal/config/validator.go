package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/aristath/vigil/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors. It matches
// domain.ErrInvalidConfiguration under errors.Is.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return domain.ErrInvalidConfiguration.Error() + ": " + strings.Join(messages, "; ")
}

func (e ValidationErrors) Unwrap() error { return domain.ErrInvalidConfiguration }

func (e *ValidationErrors) add(field, format string, args ...any) {
	*e = append(*e, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e ValidationErrors) prefixed(prefix string) ValidationErrors {
	out := make(ValidationErrors, len(e))
	for i, v := range e {
		out[i] = ValidationError{Field: prefix + "." + v.Field, Message: v.Message}
	}
	return out
}

func (e ValidationErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// structErrors runs the struct-tag rules and converts the failures.
func structErrors(v any) ValidationErrors {
	var errs ValidationErrors
	err := validate.Struct(v)
	if err == nil {
		return errs
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		errs.add("config", "%v", err)
		return errs
	}
	for _, fe := range fieldErrors {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		errs.add(field, "failed %q rule (got %v)", tagRule(fe), fe.Value())
	}
	return errs
}

func tagRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// Validate checks every section and returns ValidationErrors listing all
// problems found.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if err := validate.Var(c.LogLevel, "oneof=trace debug info warn error disabled"); err != nil {
		errs.add("log_level", "unknown level %q", c.LogLevel)
	}

	sections := []struct {
		name string
		v    interface{ Validate() error }
	}{
		{"indicators", &c.Indicators},
		{"trend", &c.Trend},
		{"volatility", &c.Volatility},
		{"signals", &c.Signals},
		{"risk", &c.Risk},
		{"sizing", &c.Sizing},
		{"stop_loss", &c.StopLoss},
		{"monitor", &c.Monitor},
	}
	for _, s := range sections {
		var verrs ValidationErrors
		if errors.As(s.v.Validate(), &verrs) {
			errs = append(errs, verrs.prefixed(s.name)...)
		}
	}

	return errs.orNil()
}

// Validate checks the indicator periods.
func (c *IndicatorConfig) Validate() error {
	errs := structErrors(c)
	if c.MACDFast >= c.MACDSlow {
		errs.add("macd_fast", "must be less than macd_slow (%d >= %d)", c.MACDFast, c.MACDSlow)
	}
	return errs.orNil()
}

// Validate checks the trend settings.
func (c *TrendConfig) Validate() error {
	errs := structErrors(c)
	if c.SlopeThreshold >= c.StrongSlopeThreshold {
		errs.add("slope_threshold", "must be less than strong_slope_threshold")
	}
	if c.ADXModerate >= c.ADXStrong {
		errs.add("adx_moderate", "must be less than adx_strong")
	}
	return errs.orNil()
}

// Validate checks the volatility settings.
func (c *VolatilityConfig) Validate() error {
	errs := structErrors(c)
	if c.ShortWindow >= c.LongWindow {
		errs.add("short_window", "must be less than long_window (%d >= %d)", c.ShortWindow, c.LongWindow)
	}
	if c.ContractingRatio >= c.ExpandingRatio {
		errs.add("contracting_ratio", "must be less than expanding_ratio")
	}
	if c.StrongSqueezeRatio >= c.SqueezeRatio || c.SqueezeRatio >= c.ExpansionRatio {
		errs.add("squeeze_ratio", "ratios must satisfy strong_squeeze < squeeze < expansion")
	}
	return errs.orNil()
}

// Validate checks the vote thresholds.
func (c *SignalConfig) Validate() error {
	errs := structErrors(c)
	if !(c.RSIExtremeLow < c.RSIOversold && c.RSIOversold < c.RSIOverbought && c.RSIOverbought < c.RSIExtremeHigh) {
		errs.add("rsi_oversold", "RSI thresholds must satisfy extreme_low < oversold < overbought < extreme_high")
	}
	if c.KDJLower >= c.KDJUpper {
		errs.add("kdj_lower", "must be less than kdj_upper")
	}
	if c.Threshold > c.StrongThreshold {
		errs.add("threshold", "must not exceed strong_threshold (%d > %d)", c.Threshold, c.StrongThreshold)
	}
	return errs.orNil()
}

// Validate checks weights and breakpoints. Weights must sum to 1.
func (c *RiskConfig) Validate() error {
	errs := structErrors(c)
	w := c.Weights
	if sum := w.Drawdown + w.Volatility + w.VaR + w.Sharpe; math.Abs(sum-1) > 1e-6 {
		errs.add("weights", "must sum to 1 (got %.4f)", sum)
	}
	for _, bp := range []struct {
		name string
		b    Breakpoints
	}{
		{"drawdown_breakpoints", c.DrawdownBreakpoints},
		{"volatility_breakpoints", c.VolatilityBreakpoints},
		{"var_breakpoints", c.VaRBreakpoints},
		{"sharpe_breakpoints", c.SharpeBreakpoints},
	} {
		if bp.b.Floor >= bp.b.Ceiling {
			errs.add(bp.name, "floor must be below ceiling (%.4f >= %.4f)", bp.b.Floor, bp.b.Ceiling)
		}
	}
	return errs.orNil()
}

// Validate checks position bounds and composite weights.
func (c *SizingConfig) Validate() error {
	errs := structErrors(c)
	if c.MinPosition > c.MaxPosition {
		errs.add("min_position", "must not exceed max_position (%.4f > %.4f)", c.MinPosition, c.MaxPosition)
	}
	cw := c.Composite
	if cw.Kelly+cw.Volatility+cw.FixedRisk <= 0 {
		errs.add("composite", "weights must not all be zero")
	}
	return errs.orNil()
}

// Validate checks the stop-loss settings.
func (c *StopLossConfig) Validate() error {
	return structErrors(c).orNil()
}

// Validate checks the monitor thresholds.
func (c *MonitorConfig) Validate() error {
	return structErrors(c).orNil()
}
