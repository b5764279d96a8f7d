// internal/roi/rules/config.go
package rules

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrInvalidConfig = errors.New("INVALID_RULES_CONFIG")

// ScaleTier grants Bonus to any clamped investment at or above Threshold.
type ScaleTier struct {
	Threshold float64 `mapstructure:"threshold" json:"threshold"`
	Bonus     float64 `mapstructure:"bonus" json:"bonus"`
}

// Config holds every tunable constant used by the rule functions.
type Config struct {
	MinInvestment     float64     `mapstructure:"min_investment" json:"minInvestment"`
	MaxInvestment     float64     `mapstructure:"max_investment" json:"maxInvestment"`
	ScaleTiers        []ScaleTier `mapstructure:"scale_tiers" json:"scaleTiers"`
	SynergyIncrement  float64     `mapstructure:"synergy_increment" json:"synergyIncrement"`
	DiminishingFactor float64     `mapstructure:"diminishing_factor" json:"diminishingFactor"`
	TimeSavingsCap    float64     `mapstructure:"time_savings_cap" json:"timeSavingsCap"`
	PaybackCapMonths  int         `mapstructure:"payback_cap_months" json:"paybackCapMonths"`
	ProjectionYears   int         `mapstructure:"projection_years" json:"projectionYears"`
}

func DefaultConfig() Config {
	return Config{
		MinInvestment: 1_000,
		MaxInvestment: 250_000,
		ScaleTiers: []ScaleTier{
			{Threshold: 100_000, Bonus: 0.35},
			{Threshold: 50_000, Bonus: 0.20},
			{Threshold: 10_000, Bonus: 0.10},
		},
		SynergyIncrement:  0.08,
		DiminishingFactor: 0.85,
		TimeSavingsCap:    65,
		PaybackCapMonths:  60,
		ProjectionYears:   5,
	}
}

// Validate checks the table and returns a copy with tiers ordered highest
// threshold first.
func (c Config) Validate() (Config, error) {
	fields := []struct {
		name  string
		value float64
	}{
		{"min_investment", c.MinInvestment},
		{"max_investment", c.MaxInvestment},
		{"synergy_increment", c.SynergyIncrement},
		{"diminishing_factor", c.DiminishingFactor},
		{"time_savings_cap", c.TimeSavingsCap},
	}
	for _, f := range fields {
		if !finite(f.value) {
			return c, fmt.Errorf("%w: %s must be a finite number, got %v", ErrInvalidConfig, f.name, f.value)
		}
	}
	for _, tier := range c.ScaleTiers {
		if !finite(tier.Threshold) || !finite(tier.Bonus) {
			return c, fmt.Errorf("%w: scale tier {%v, %v} must be finite", ErrInvalidConfig, tier.Threshold, tier.Bonus)
		}
	}

	if c.MinInvestment <= 0 {
		return c, fmt.Errorf("%w: min_investment must be positive", ErrInvalidConfig)
	}
	if c.MaxInvestment < c.MinInvestment {
		return c, fmt.Errorf("%w: max_investment %v below min_investment %v", ErrInvalidConfig, c.MaxInvestment, c.MinInvestment)
	}
	if c.SynergyIncrement < 0 {
		return c, fmt.Errorf("%w: synergy_increment must not be negative", ErrInvalidConfig)
	}
	if c.DiminishingFactor <= 0 || c.DiminishingFactor > 1 {
		return c, fmt.Errorf("%w: diminishing_factor must be in (0, 1]", ErrInvalidConfig)
	}
	if c.TimeSavingsCap <= 0 || c.TimeSavingsCap > 100 {
		return c, fmt.Errorf("%w: time_savings_cap must be in (0, 100]", ErrInvalidConfig)
	}
	if c.PaybackCapMonths <= 0 {
		return c, fmt.Errorf("%w: payback_cap_months must be positive", ErrInvalidConfig)
	}
	if c.ProjectionYears <= 0 {
		return c, fmt.Errorf("%w: projection_years must be positive", ErrInvalidConfig)
	}

	tiers := make([]ScaleTier, len(c.ScaleTiers))
	copy(tiers, c.ScaleTiers)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Threshold > tiers[j].Threshold })

	for i, tier := range tiers {
		if tier.Bonus < 0 {
			return c, fmt.Errorf("%w: scale tier %v has negative bonus", ErrInvalidConfig, tier.Threshold)
		}
		if i > 0 && tier.Threshold == tiers[i-1].Threshold {
			return c, fmt.Errorf("%w: duplicate scale tier threshold %v", ErrInvalidConfig, tier.Threshold)
		}
		// a larger investment must never earn a smaller bonus
		if i > 0 && tier.Bonus >= tiers[i-1].Bonus {
			return c, fmt.Errorf("%w: scale tier bonuses must grow with threshold", ErrInvalidConfig)
		}
	}

	c.ScaleTiers = tiers
	return c, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
