// internal/roi/engine/engine.go
package engine

import (
	"errors"
	"math"

	"roi-workers/internal/roi/catalog"
	"roi-workers/internal/roi/rules"
)

var ErrNilCatalog = errors.New("engine requires a catalog")

// Engine orchestrates the rule functions over an injected catalog. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	rules   rules.Config
}

func New(cat *catalog.Catalog, cfg rules.Config) (*Engine, error) {
	if cat == nil {
		return nil, ErrNilCatalog
	}
	validated, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &Engine{catalog: cat, rules: validated}, nil
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

func (e *Engine) Rules() rules.Config {
	return e.rules
}

// Calculate runs one ROI calculation. Unknown identifiers fail with
// catalog.UnknownIndustryError or catalog.UnknownSolutionError; out-of-range
// investments are clamped and an empty selection yields an all-zero result.
func (e *Engine) Calculate(industryName string, investmentAmount float64, selectedSolutions []string) (*Result, error) {
	industry, err := e.catalog.Industry(industryName)
	if err != nil {
		return nil, err
	}

	names := dedupe(selectedSolutions)
	percents := make([]float64, 0, len(names))
	for _, name := range names {
		sol, err := e.catalog.Solution(industry.Name, name)
		if err != nil {
			return nil, err
		}
		percents = append(percents, sol.TimeSavingsPercent)
	}

	investment := e.rules.ClampInvestment(investmentAmount)

	if len(names) == 0 {
		return &Result{
			Industry:          industry.Name,
			Investment:        rules.RoundCurrency(investment),
			SelectedSolutions: []string{},
			Breakdown:         Breakdown{BaseMultiplier: industry.BaseMultiplier},
		}, nil
	}

	scale := e.rules.ScaleBonus(investment)
	synergy := e.rules.SynergyBonus(len(names))
	multiplier := rules.Multiplier(industry.BaseMultiplier, synergy, scale)
	timeSavings := e.rules.TimeSavings(percents)
	projection := e.rules.Project(investment, multiplier)
	payback := e.rules.PaybackMonths(investment, projection.AnnualReturn)

	years := make([]rules.YearProjection, len(projection.Years))
	for i, y := range projection.Years {
		years[i] = rules.YearProjection{
			Year:             y.Year,
			Value:            rules.RoundCurrency(y.Value),
			CumulativeReturn: rules.RoundCurrency(y.CumulativeReturn),
		}
	}

	return &Result{
		Industry:           industry.Name,
		Investment:         rules.RoundCurrency(investment),
		SelectedSolutions:  names,
		FiveYearROI:        rules.RoundCurrency(projection.TotalReturn),
		TimeSavingsPercent: rules.RoundPercent(timeSavings),
		AnnualReturn:       rules.RoundCurrency(projection.AnnualReturn),
		PaybackMonths:      payback,
		ROIMultiplier:      rules.RoundPercent(multiplier),
		Breakdown: Breakdown{
			BaseMultiplier: industry.BaseMultiplier,
			SynergyBonus:   rules.RoundPercent(synergy),
			ScaleBonus:     scale,
			SolutionCount:  len(names),
			AnnualRate:     math.Round(projection.AnnualRate*10_000) / 10_000,
		},
		Projection: years,
	}, nil
}

// dedupe keeps the first occurrence of every name, preserving order.
func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
