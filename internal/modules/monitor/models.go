package monitor

// AlertType names the threshold an alert reports on.
type AlertType string

const (
	AlertDrawdown        AlertType = "drawdown"
	AlertVolatility      AlertType = "volatility"
	AlertVaR             AlertType = "var"
	AlertSharpe          AlertType = "sharpe"
	AlertConcentration   AlertType = "concentration"
	AlertDiversification AlertType = "diversification"
	AlertRiskLevel       AlertType = "risk_level"
)

// Category is the coarse urgency of an alert.
type Category string

const (
	CategoryInfo     Category = "info"
	CategoryWarning  Category = "warning"
	CategoryCritical Category = "critical"
)

// MaxSeverity caps alert severity.
const MaxSeverity = 5

// CategoryFor maps severity 1-2 to info, 3 to warning and 4-5 to critical.
func CategoryFor(severity int) Category {
	switch {
	case severity >= 4:
		return CategoryCritical
	case severity == 3:
		return CategoryWarning
	default:
		return CategoryInfo
	}
}

// Alert is one threshold breach found during an evaluation pass.
type Alert struct {
	ID              string    `json:"id" msgpack:"id"`
	Type            AlertType `json:"type" msgpack:"type"`
	Symbol          string    `json:"symbol" msgpack:"symbol"`
	Severity        int       `json:"severity" msgpack:"severity"`
	Category        Category  `json:"category" msgpack:"category"`
	Title           string    `json:"title" msgpack:"title"`
	Message         string    `json:"message" msgpack:"message"`
	Value           float64   `json:"value" msgpack:"value"`
	Threshold       float64   `json:"threshold" msgpack:"threshold"`
	SuggestedAction string    `json:"suggested_action" msgpack:"suggested_action"`
}
