// Package monitor screens risk metrics and portfolio composition against
// configured thresholds.
package monitor

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/aristath/vigil/internal/config"
	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/modules/risk"
	"github.com/aristath/vigil/internal/modules/sizing"
	"github.com/aristath/vigil/internal/modules/volatility"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// alertNamespace seeds name-based alert IDs so equal breaches share an ID.
var alertNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/aristath/vigil/alerts"))

// Inputs are the outputs of earlier stages. Any of them may be nil, but at
// least one must be set.
type Inputs struct {
	Symbol     string
	Risk       *risk.Metrics
	Volatility *volatility.Result
	Position   *sizing.Recommendation
	Portfolio  *domain.Portfolio
}

// Monitor evaluates Inputs against MonitorConfig.
type Monitor struct {
	cfg config.MonitorConfig
	log zerolog.Logger
}

// NewMonitor validates cfg and returns a monitor.
func NewMonitor(cfg config.MonitorConfig, log zerolog.Logger) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Monitor{
		cfg: cfg,
		log: log.With().Str("component", "risk_monitor").Logger(),
	}, nil
}

// check is one threshold rule.
type check struct {
	kind      AlertType
	base      int
	value     float64
	threshold float64
	lower     bool // breach when value falls below threshold
	title     string
	message   string
	action    string
}

// Evaluate runs one stateless pass and returns alerts ordered by descending
// severity.
func (m *Monitor) Evaluate(in Inputs) ([]Alert, error) {
	if in.Risk == nil && in.Volatility == nil && in.Portfolio == nil && in.Position == nil {
		return nil, fmt.Errorf("%w: risk monitor needs metrics or a portfolio", domain.ErrInsufficientData)
	}

	symbol := in.Symbol
	if symbol == "" && in.Risk != nil {
		symbol = in.Risk.Symbol
	}

	var checks []check
	checks = append(checks, m.metricChecks(in)...)
	checks = append(checks, m.portfolioChecks(in)...)

	alerts := make([]Alert, 0, len(checks)+1)
	for _, c := range checks {
		if a, ok := m.evaluate(symbol, c); ok {
			alerts = append(alerts, a)
		}
	}
	if a, ok := m.riskLevel(symbol, in.Risk); ok {
		alerts = append(alerts, a)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity > alerts[j].Severity
	})

	for _, a := range alerts {
		m.log.Info().
			Str("symbol", a.Symbol).
			Str("type", string(a.Type)).
			Int("severity", a.Severity).
			Str("category", string(a.Category)).
			Msg(a.Message)
	}
	return alerts, nil
}

func (m *Monitor) metricChecks(in Inputs) []check {
	var checks []check

	drawdown, vol, vaR, sharpe := math.NaN(), math.NaN(), math.NaN(), math.NaN()
	if in.Risk != nil {
		drawdown, vol, vaR, sharpe = in.Risk.MaxDrawdown, in.Risk.Volatility, in.Risk.VaR, in.Risk.Sharpe
	} else if in.Volatility != nil {
		r := in.Volatility.Risk
		drawdown, vaR, sharpe = r.MaxDrawdown, r.VaR, r.Sharpe
	}
	if in.Volatility != nil {
		vol = in.Volatility.Historical
	}

	if !math.IsNaN(drawdown) {
		checks = append(checks, check{
			kind: AlertDrawdown, base: 3, value: drawdown, threshold: m.cfg.MaxDrawdown,
			title:   "Max drawdown above limit",
			message: fmt.Sprintf("max drawdown %.1f%% exceeds threshold %.1f%%", drawdown*100, m.cfg.MaxDrawdown*100),
			action:  "reduce exposure or tighten stop-loss levels",
		})
	}
	if !math.IsNaN(vol) {
		checks = append(checks, check{
			kind: AlertVolatility, base: 3, value: vol, threshold: m.cfg.MaxVolatility,
			title:   "Volatility above limit",
			message: fmt.Sprintf("annualized volatility %.1f%% exceeds threshold %.1f%%", vol*100, m.cfg.MaxVolatility*100),
			action:  "reduce position size or hedge while volatility is elevated",
		})
	}
	if !math.IsNaN(vaR) {
		checks = append(checks, check{
			kind: AlertVaR, base: 2, value: vaR, threshold: m.cfg.MaxVaR,
			title:   "Value at risk above limit",
			message: fmt.Sprintf("value at risk %.2f%% exceeds threshold %.2f%%", vaR*100, m.cfg.MaxVaR*100),
			action:  "reduce exposure to limit the expected tail loss",
		})
	}
	if !math.IsNaN(sharpe) {
		checks = append(checks, check{
			kind: AlertSharpe, base: 2, value: sharpe, threshold: m.cfg.MinSharpe, lower: true,
			title:   "Sharpe ratio below minimum",
			message: fmt.Sprintf("Sharpe ratio %.2f is below minimum %.2f", sharpe, m.cfg.MinSharpe),
			action:  "risk-adjusted return is weak; review the strategy",
		})
	}
	return checks
}

func (m *Monitor) portfolioChecks(in Inputs) []check {
	var checks []check

	largestSymbol, largest := "", math.NaN()
	if in.Portfolio != nil {
		largestSymbol, largest = in.Portfolio.Largest()
	} else if in.Position != nil {
		largestSymbol, largest = in.Position.Symbol, in.Position.Fraction
	}
	if !math.IsNaN(largest) && largestSymbol != "" {
		checks = append(checks, check{
			kind: AlertConcentration, base: 3, value: largest, threshold: m.cfg.MaxPositionWeight,
			title:   "Position concentration too high",
			message: fmt.Sprintf("%s weight %.1f%% exceeds threshold %.1f%%", largestSymbol, largest*100, m.cfg.MaxPositionWeight*100),
			action:  "rebalance to reduce single-asset exposure",
		})
	}

	if in.Portfolio != nil {
		holdings := in.Portfolio.Holdings()
		checks = append(checks, check{
			kind: AlertDiversification, base: 2, value: float64(holdings), threshold: float64(m.cfg.MinDiversification), lower: true,
			title:   "Portfolio under-diversified",
			message: fmt.Sprintf("portfolio holds %d assets, minimum is %d", holdings, m.cfg.MinDiversification),
			action:  "add holdings to improve diversification",
		})
	}
	return checks
}

// Excess is the relative distance past threshold, or 0 when not breached.
// For lower-bound rules the distance is measured below the threshold.
func Excess(value, threshold float64, lower bool) float64 {
	diff := value - threshold
	if lower {
		diff = -diff
	}
	if diff <= 0 {
		return 0
	}
	scale := math.Abs(threshold)
	if scale == 0 {
		scale = 1
	}
	return diff / scale
}

// Severity scales base by how far past the threshold the value is.
func Severity(base int, excess, step float64) int {
	s := base + int(math.Floor(excess/step))
	if s > MaxSeverity {
		return MaxSeverity
	}
	if s < 1 {
		return 1
	}
	return s
}

func breached(c check) bool {
	if c.lower {
		return c.value < c.threshold
	}
	return c.value > c.threshold
}

func (m *Monitor) evaluate(symbol string, c check) (Alert, bool) {
	if !breached(c) {
		return Alert{}, false
	}
	severity := Severity(c.base, Excess(c.value, c.threshold, c.lower), m.cfg.SeverityStep)
	return newAlert(symbol, c.kind, severity, c.title, c.message, c.value, c.threshold, c.action), true
}

func (m *Monitor) riskLevel(symbol string, metrics *risk.Metrics) (Alert, bool) {
	if !m.cfg.AlertOnRiskLevel || metrics == nil {
		return Alert{}, false
	}
	var severity int
	switch metrics.Level {
	case risk.LevelExtreme:
		severity = 5
	case risk.LevelHigh:
		severity = 4
	default:
		return Alert{}, false
	}
	return newAlert(symbol, AlertRiskLevel, severity,
		fmt.Sprintf("Risk level %s", metrics.Level),
		fmt.Sprintf("composite risk score %.0f/100, level %s", metrics.Score, metrics.Level),
		metrics.Score, risk.HighScore,
		"high-risk environment; trade cautiously or stay flat",
	), true
}

func newAlert(symbol string, kind AlertType, severity int, title, message string, value, threshold float64, action string) Alert {
	name := symbol + "|" + string(kind) + "|" + strconv.Itoa(severity) + "|" + strconv.FormatFloat(value, 'g', -1, 64)
	return Alert{
		ID:              uuid.NewSHA1(alertNamespace, []byte(name)).String(),
		Type:            kind,
		Symbol:          symbol,
		Severity:        severity,
		Category:        CategoryFor(severity),
		Title:           title,
		Message:         message,
		Value:           value,
		Threshold:       threshold,
		SuggestedAction: action,
	}
}
