package loader

import (
	"fmt"
	"os"

	"github.com/aristath/vigil/internal/domain"
	"github.com/aristath/vigil/internal/utils"
	"gopkg.in/yaml.v3"
)

// LoadPortfolio reads a YAML (or JSON) portfolio snapshot. Both a flat
// "SYMBOL: weight" mapping and a document with a "holdings" key are accepted.
func LoadPortfolio(path string) (*domain.Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio file: %w", err)
	}
	return ParsePortfolio(data)
}

// ParsePortfolio decodes a portfolio document; see LoadPortfolio.
func ParsePortfolio(data []byte) (*domain.Portfolio, error) {
	var doc struct {
		Holdings map[string]float64 `yaml:"holdings"`
	}
	weights := map[string]float64{}
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Holdings) > 0 {
		weights = doc.Holdings
	} else if err := yaml.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPortfolio, err)
	}

	normalized := make(map[string]float64, len(weights))
	for symbol, w := range weights {
		key := utils.NormalizeSymbol(symbol)
		if _, dup := normalized[key]; dup {
			return nil, fmt.Errorf("%w: %s listed twice", domain.ErrInvalidPortfolio, key)
		}
		normalized[key] = w
	}
	return domain.NewPortfolio(normalized)
}
