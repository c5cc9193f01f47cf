package volatility

// Regime classifies short- versus long-window volatility.
type Regime string

const (
	RegimeExpanding   Regime = "expanding"
	RegimeContracting Regime = "contracting"
	RegimeStable      Regime = "stable"
)

// SqueezeStatus grades the current Bollinger bandwidth against its mean.
type SqueezeStatus string

const (
	SqueezeStrong    SqueezeStatus = "strong_squeeze"
	SqueezeModerate  SqueezeStatus = "squeeze"
	SqueezeExpansion SqueezeStatus = "expansion"
	SqueezeNormal    SqueezeStatus = "normal"
)

// Squeeze describes Bollinger bandwidth compression.
type Squeeze struct {
	Active    bool          `json:"active" msgpack:"active"`
	Status    SqueezeStatus `json:"status" msgpack:"status"`
	Bandwidth float64       `json:"bandwidth" msgpack:"bandwidth"`
	Threshold float64       `json:"threshold" msgpack:"threshold"` // percentile of trailing bandwidths
	MeanRatio float64       `json:"mean_ratio" msgpack:"mean_ratio"`
	Available bool          `json:"available" msgpack:"available"`
}

// RiskRatios are return-distribution statistics over the whole series.
// VaR, CVaR and drawdowns are positive loss fractions.
type RiskRatios struct {
	MaxDrawdown        float64 `json:"max_drawdown" msgpack:"max_drawdown"`
	Sharpe             float64 `json:"sharpe" msgpack:"sharpe"`
	Sortino            float64 `json:"sortino" msgpack:"sortino"`
	Calmar             float64 `json:"calmar" msgpack:"calmar"`
	VaR                float64 `json:"var" msgpack:"var"`
	CVaR               float64 `json:"cvar" msgpack:"cvar"`
	Confidence         float64 `json:"confidence" msgpack:"confidence"`
	AnnualizedReturn   float64 `json:"annualized_return" msgpack:"annualized_return"`
	DownsideVolatility float64 `json:"downside_volatility" msgpack:"downside_volatility"`
	UpsideVolatility   float64 `json:"upside_volatility" msgpack:"upside_volatility"`
}

// Result is the VolatilityAnalyzer output. Volatilities are annualized.
type Result struct {
	Historical float64    `json:"historical" msgpack:"historical"`
	Parkinson  float64    `json:"parkinson" msgpack:"parkinson"`
	Short      float64    `json:"short" msgpack:"short"`
	Long       float64    `json:"long" msgpack:"long"`
	Ratio      float64    `json:"ratio" msgpack:"ratio"`
	Regime     Regime     `json:"regime" msgpack:"regime"`
	Percentile float64    `json:"percentile" msgpack:"percentile"` // 0-100 rank of the current window among rolling windows
	Squeeze    Squeeze    `json:"squeeze" msgpack:"squeeze"`
	Risk       RiskRatios `json:"risk" msgpack:"risk"`
}
