package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PlanPrices holds the display price for each membership plan.
type PlanPrices struct {
	Basic   string `yaml:"basic"`
	Premium string `yaml:"premium"`
}

// GenderPrices keys plan prices by client gender.
type GenderPrices struct {
	Male   PlanPrices `yaml:"male"`
	Female PlanPrices `yaml:"female"`
}

// Pricing is the fee table keyed by {gender x cohort-is-promotional}.
type Pricing struct {
	Regular     GenderPrices `yaml:"regular"`
	Promotional GenderPrices `yaml:"promotional"`
}

// DefaultPricing returns the standard fee table.
func DefaultPricing() Pricing {
	return Pricing{
		Regular: GenderPrices{
			Male:   PlanPrices{Basic: "18만원", Premium: "32만원"},
			Female: PlanPrices{Basic: "12만원", Premium: "21만원"},
		},
		Promotional: GenderPrices{
			Male:   PlanPrices{Basic: "13만원", Premium: "21만원"},
			Female: PlanPrices{Basic: "8만원", Premium: "14만원"},
		},
	}
}

// LoadPricing reads a YAML pricing file. Missing entries keep their defaults.
// An empty path returns the defaults.
func LoadPricing(path string) (Pricing, error) {
	pricing := DefaultPricing()
	if path == "" {
		return pricing, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pricing, fmt.Errorf("config: read pricing file: %w", err)
	}
	if err := yaml.Unmarshal(data, &pricing); err != nil {
		return DefaultPricing(), fmt.Errorf("config: parse pricing file: %w", err)
	}
	if err := pricing.validate(); err != nil {
		return DefaultPricing(), err
	}
	return pricing, nil
}

func (p Pricing) validate() error {
	for _, prices := range []PlanPrices{p.Regular.Male, p.Regular.Female, p.Promotional.Male, p.Promotional.Female} {
		if prices.Basic == "" || prices.Premium == "" {
			return errors.New("config: pricing file leaves a plan price empty")
		}
	}
	return nil
}
