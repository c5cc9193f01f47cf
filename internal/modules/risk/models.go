package risk

// Level is the coarse risk classification.
type Level string

const (
	LevelLow     Level = "low"
	LevelMedium  Level = "medium"
	LevelHigh    Level = "high"
	LevelExtreme Level = "extreme"
)

// Level breakpoints on the 0..100 score; each is inclusive at its low end.
const (
	MediumScore  = 30.0
	HighScore    = 50.0
	ExtremeScore = 70.0
)

// Classify maps a score onto a level.
func Classify(score float64) Level {
	switch {
	case score >= ExtremeScore:
		return LevelExtreme
	case score >= HighScore:
		return LevelHigh
	case score >= MediumScore:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Rank orders levels from 0 (low) to 3 (extreme).
func (l Level) Rank() int {
	switch l {
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	case LevelExtreme:
		return 3
	default:
		return 0
	}
}

// SubScores are the normalized 0..100 components of Score.
type SubScores struct {
	Drawdown   float64 `json:"drawdown" msgpack:"drawdown"`
	Volatility float64 `json:"volatility" msgpack:"volatility"`
	VaR        float64 `json:"var" msgpack:"var"`
	Sharpe     float64 `json:"sharpe" msgpack:"sharpe"` // higher is better; enters the score inverted
}

// Metrics is a risk snapshot of one return series.
type Metrics struct {
	Symbol       string `json:"symbol" msgpack:"symbol"`
	Observations int    `json:"observations" msgpack:"observations"`

	TotalReturn      float64 `json:"total_return" msgpack:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return" msgpack:"annualized_return"`

	Volatility         float64 `json:"volatility" msgpack:"volatility"`
	DownsideVolatility float64 `json:"downside_volatility" msgpack:"downside_volatility"`
	MaxDrawdown        float64 `json:"max_drawdown" msgpack:"max_drawdown"`
	CurrentDrawdown    float64 `json:"current_drawdown" msgpack:"current_drawdown"`
	VaR                float64 `json:"var" msgpack:"var"`
	CVaR               float64 `json:"cvar" msgpack:"cvar"`
	Confidence         float64 `json:"confidence" msgpack:"confidence"`

	Sharpe  float64 `json:"sharpe" msgpack:"sharpe"`
	Sortino float64 `json:"sortino" msgpack:"sortino"`
	Calmar  float64 `json:"calmar" msgpack:"calmar"`

	WinRate         float64 `json:"win_rate" msgpack:"win_rate"`
	ProfitLossRatio float64 `json:"profit_loss_ratio" msgpack:"profit_loss_ratio"`
	BestPeriod      float64 `json:"best_period" msgpack:"best_period"`
	WorstPeriod     float64 `json:"worst_period" msgpack:"worst_period"`

	SubScores SubScores `json:"sub_scores" msgpack:"sub_scores"`
	Score     float64   `json:"score" msgpack:"score"`
	Level     Level     `json:"level" msgpack:"level"`
}
