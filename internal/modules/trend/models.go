package trend

// Direction is the five-level trend classification.
type Direction string

const (
	DirectionStrongUp   Direction = "strong_up"
	DirectionUp         Direction = "up"
	DirectionSideways   Direction = "sideways"
	DirectionDown       Direction = "down"
	DirectionStrongDown Direction = "strong_down"
)

// IsBullish reports whether d points up.
func (d Direction) IsBullish() bool { return d == DirectionUp || d == DirectionStrongUp }

// IsBearish reports whether d points down.
func (d Direction) IsBearish() bool { return d == DirectionDown || d == DirectionStrongDown }

// Divergence is the price/RSI divergence verdict.
type Divergence string

const (
	DivergenceNone    Divergence = "none"
	DivergenceBullish Divergence = "bullish"
	DivergenceBearish Divergence = "bearish"
)

// Strength describes ADX-based trend strength.
type Strength struct {
	ADX       float64 `json:"adx" msgpack:"adx"` // 0-100
	PlusDI    float64 `json:"plus_di" msgpack:"plus_di"`
	MinusDI   float64 `json:"minus_di" msgpack:"minus_di"`
	Label     string  `json:"label" msgpack:"label"` // weak, moderate, strong
	Bias      string  `json:"bias" msgpack:"bias"`   // bullish, bearish, neutral
	Available bool    `json:"available" msgpack:"available"`
}

// Result is the TrendAnalyzer output.
type Result struct {
	Direction          Direction  `json:"direction" msgpack:"direction"`
	Score              int        `json:"score" msgpack:"score"`
	Alignment          int        `json:"alignment" msgpack:"alignment"` // +1 bullish, -1 bearish, 0 mixed/unknown
	SlopePercent       float64    `json:"slope_percent" msgpack:"slope_percent"`
	PriceChangePercent float64    `json:"price_change_percent" msgpack:"price_change_percent"`
	Support            float64    `json:"support" msgpack:"support"`
	Resistance         float64    `json:"resistance" msgpack:"resistance"`
	SupportLevels      []float64  `json:"support_levels" msgpack:"support_levels"`
	ResistanceLevels   []float64  `json:"resistance_levels" msgpack:"resistance_levels"`
	Strength           Strength   `json:"strength" msgpack:"strength"`
	Divergence         Divergence `json:"divergence" msgpack:"divergence"`
	DivergenceNote     string     `json:"divergence_note" msgpack:"divergence_note"`
}
