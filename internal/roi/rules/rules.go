// internal/roi/rules/rules.go
package rules

import "math"

// ClampInvestment silently forces v into [MinInvestment, MaxInvestment].
// NaN is treated as the floor.
func (c Config) ClampInvestment(v float64) float64 {
	if math.IsNaN(v) || v < c.MinInvestment {
		return c.MinInvestment
	}
	if v > c.MaxInvestment {
		return c.MaxInvestment
	}
	return v
}

// ScaleBonus returns the bonus of the highest tier whose threshold the
// investment reaches, or 0 below every tier.
func (c Config) ScaleBonus(investment float64) float64 {
	bonus := 0.0
	best := math.Inf(-1)
	for _, tier := range c.ScaleTiers {
		if investment >= tier.Threshold && tier.Threshold > best {
			best = tier.Threshold
			bonus = tier.Bonus
		}
	}
	return bonus
}

func (c Config) SynergyBonus(solutionCount int) float64 {
	if solutionCount <= 1 {
		return 0
	}
	return float64(solutionCount-1) * c.SynergyIncrement
}

func Multiplier(base, synergyBonus, scaleBonus float64) float64 {
	return base * (1 + synergyBonus) * (1 + scaleBonus)
}

// TimeSavings aggregates individual savings percentages. A single solution
// keeps its own figure; two or more are discounted for overlap and capped.
func (c Config) TimeSavings(percents []float64) float64 {
	switch len(percents) {
	case 0:
		return 0
	case 1:
		return percents[0]
	}

	sum := 0.0
	for _, p := range percents {
		sum += p
	}
	return math.Min(sum*c.DiminishingFactor, c.TimeSavingsCap)
}

type YearProjection struct {
	Year             int     `json:"year"`
	Value            float64 `json:"value"`
	CumulativeReturn float64 `json:"cumulativeReturn"`
}

type Projection struct {
	AnnualRate   float64          `json:"annualRate"`
	AnnualReturn float64          `json:"annualReturn"`
	TotalReturn  float64          `json:"totalReturn"`
	Years        []YearProjection `json:"years"`
}

// Project treats multiplier as the gross growth multiple over the projection
// horizon. The implied annual rate is compounded year by year, so TotalReturn
// always exceeds AnnualReturn*years when the rate is positive.
func (c Config) Project(investment, multiplier float64) Projection {
	years := c.ProjectionYears
	if years <= 0 || investment <= 0 || multiplier <= 0 {
		return Projection{}
	}

	rate := math.Pow(multiplier, 1/float64(years)) - 1
	if math.IsNaN(rate) || rate < 0 {
		rate = 0
	}

	p := Projection{
		AnnualRate:   rate,
		AnnualReturn: investment * rate,
		Years:        make([]YearProjection, 0, years),
	}

	value := investment
	for year := 1; year <= years; year++ {
		value *= 1 + rate
		p.Years = append(p.Years, YearProjection{
			Year:             year,
			Value:            value,
			CumulativeReturn: value - investment,
		})
	}
	p.TotalReturn = value - investment

	return p
}

// PaybackMonths is the whole number of months needed for annualReturn to
// recoup investment, capped at PaybackCapMonths. A non-positive return yields 0.
func (c Config) PaybackMonths(investment, annualReturn float64) int {
	if annualReturn <= 0 || math.IsNaN(annualReturn) || investment <= 0 {
		return 0
	}

	months := math.Ceil(investment / (annualReturn / 12))
	if math.IsNaN(months) || months > float64(c.PaybackCapMonths) {
		return c.PaybackCapMonths
	}
	return int(months)
}

func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

func RoundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
