package signals

// Action is the composite trading decision.
type Action string

const (
	ActionStrongBuy  Action = "strong_buy"
	ActionBuy        Action = "buy"
	ActionHold       Action = "hold"
	ActionSell       Action = "sell"
	ActionStrongSell Action = "strong_sell"
)

// Confidence grades how many indicators back the decision.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Contribution is one source's signed vote.
type Contribution struct {
	Source    Source `json:"source" msgpack:"source"`
	Vote      int    `json:"vote" msgpack:"vote"` // -2..+2
	Reason    string `json:"reason,omitempty" msgpack:"reason,omitempty"`
	Available bool   `json:"available" msgpack:"available"`
}

// Signal is the fused decision.
type Signal struct {
	Action        Action         `json:"action" msgpack:"action"`
	Confidence    Confidence     `json:"confidence" msgpack:"confidence"`
	Strength      int            `json:"strength" msgpack:"strength"`
	Agreement     int            `json:"agreement" msgpack:"agreement"`
	BuyVotes      int            `json:"buy_votes" msgpack:"buy_votes"`
	SellVotes     int            `json:"sell_votes" msgpack:"sell_votes"`
	Reasons       []string       `json:"reasons" msgpack:"reasons"`
	Contributions []Contribution `json:"contributions" msgpack:"contributions"`
}
