// Package validate runs the engine's behavioral properties against a live
// engine, so a custom catalog or rule table can be checked before deploy.
package validate

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"roi-workers/internal/roi/catalog"
	"roi-workers/internal/roi/engine"
)

// Check is the outcome of one property.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

func (r Report) Failed() int {
	n := 0
	for _, c := range r.Checks {
		if !c.Passed {
			n++
		}
	}
	return n
}

// InvestmentGrid spans both clamp bounds and every default tier edge.
var InvestmentGrid = []float64{0, 500, 1_000, 5_000, 9_999, 10_000, 25_000, 49_999, 50_000, 75_000, 99_999, 100_000, 175_000, 250_000, 300_000}

type property struct {
	name string
	run  func(e *engine.Engine) error
}

var properties = []property{
	{"catalog shape", catalogShape},
	{"synergy monotonicity", synergyMonotonicity},
	{"diminishing returns", diminishingReturns},
	{"scale tiers", scaleTiers},
	{"zero solutions", zeroSolutions},
	{"investment clamping", investmentClamping},
	{"payback cap", paybackCap},
	{"compound exceeds simple", compoundExceedsSimple},
	{"unknown identifiers", unknownIdentifiers},
	{"determinism", determinism},
	{"duplicate solutions", duplicateSolutions},
}

// Run evaluates every property. A property that panics is reported as failed.
func Run(e *engine.Engine) Report {
	report := Report{Checks: make([]Check, 0, len(properties))}
	for _, p := range properties {
		report.Checks = append(report.Checks, runOne(e, p))
	}
	return report
}

func runOne(e *engine.Engine, p property) (c Check) {
	c.Name = p.name
	defer func() {
		if r := recover(); r != nil {
			c.Passed = false
			c.Detail = fmt.Sprintf("panic: %v", r)
		}
	}()

	if err := p.run(e); err != nil {
		c.Detail = err.Error()
		return c
	}
	c.Passed = true
	return c
}

func catalogShape(e *engine.Engine) error {
	industries := e.Catalog().Industries()
	if len(industries) != catalog.IndustryCount {
		return fmt.Errorf("expected %d industries, got %d", catalog.IndustryCount, len(industries))
	}
	for _, name := range industries {
		sols, err := e.Catalog().Solutions(name)
		if err != nil {
			return err
		}
		if len(sols) != catalog.SolutionsPerIndustry {
			return fmt.Errorf("%s: expected %d solutions, got %d", name, catalog.SolutionsPerIndustry, len(sols))
		}
	}
	return nil
}

func synergyMonotonicity(e *engine.Engine) error {
	inc := e.Rules().SynergyIncrement
	for _, name := range e.Catalog().Industries() {
		sols, _ := e.Catalog().Solutions(name)
		prev := 0.0
		for k := 1; k <= len(sols); k++ {
			res, err := e.Calculate(name, 50_000, sols[:k])
			if err != nil {
				return err
			}
			if k > 1 {
				if res.ROIMultiplier <= prev && inc > 0 {
					return fmt.Errorf("%s: multiplier did not grow from %d to %d solutions", name, k-1, k)
				}
				want := (1 + inc*float64(k-1)) / (1 + inc*float64(k-2))
				if got := res.ROIMultiplier / prev; math.Abs(got-want) > 0.02 {
					return fmt.Errorf("%s: growth %0.4f at %d solutions, want %0.4f", name, got, k, want)
				}
			}
			prev = res.ROIMultiplier
		}
	}
	return nil
}

func diminishingReturns(e *engine.Engine) error {
	r := e.Rules()
	return eachSubset(e, func(name string, amount float64, res *engine.Result) error {
		sum := 0.0
		for _, sol := range res.SelectedSolutions {
			s, err := e.Catalog().Solution(name, sol)
			if err != nil {
				return err
			}
			sum += s.TimeSavingsPercent
		}

		want := sum
		if len(res.SelectedSolutions) > 1 {
			want = math.Min(sum*r.DiminishingFactor, r.TimeSavingsCap)
		}
		// percentages are reported to two decimals
		if math.Abs(res.TimeSavingsPercent-want) > 0.005 {
			return fmt.Errorf("%s %v: time savings %v, want %0.2f", name, res.SelectedSolutions, res.TimeSavingsPercent, want)
		}
		return nil
	})
}

func scaleTiers(e *engine.Engine) error {
	r := e.Rules()
	sols, err := e.Catalog().Solutions(catalog.DefaultIndustryName)
	if err != nil {
		return err
	}
	sel := sols[:1]

	mult := func(amount float64) (float64, error) {
		res, err := e.Calculate(catalog.DefaultIndustryName, amount, sel)
		if err != nil {
			return 0, err
		}
		return res.ROIMultiplier, nil
	}

	for _, tier := range r.ScaleTiers {
		if tier.Threshold <= r.MinInvestment || tier.Threshold > r.MaxInvestment {
			continue
		}
		below, err := mult(tier.Threshold - 1)
		if err != nil {
			return err
		}
		at, err := mult(tier.Threshold)
		if err != nil {
			return err
		}
		if at <= below && tier.Bonus > r.ScaleBonus(tier.Threshold-1) {
			return fmt.Errorf("no increase at tier %v (%v -> %v)", tier.Threshold, below, at)
		}
	}

	// flat strictly between tiers
	for i := 1; i < len(InvestmentGrid); i++ {
		a, b := InvestmentGrid[i-1], InvestmentGrid[i]
		if r.ScaleBonus(r.ClampInvestment(a)) != r.ScaleBonus(r.ClampInvestment(b)) {
			continue
		}
		ma, err := mult(a)
		if err != nil {
			return err
		}
		mb, err := mult(b)
		if err != nil {
			return err
		}
		if ma != mb {
			return fmt.Errorf("multiplier changed within a tier (%v: %v, %v: %v)", a, ma, b, mb)
		}
	}
	return nil
}

func zeroSolutions(e *engine.Engine) error {
	for _, name := range e.Catalog().Industries() {
		for _, amount := range InvestmentGrid {
			res, err := e.Calculate(name, amount, nil)
			if err != nil {
				return err
			}
			if res.FiveYearROI != 0 || res.TimeSavingsPercent != 0 || res.AnnualReturn != 0 ||
				res.ROIMultiplier != 0 || res.PaybackMonths != 0 {
				return fmt.Errorf("%s at %v: non-zero result for empty selection", name, amount)
			}
		}
	}
	return nil
}

func investmentClamping(e *engine.Engine) error {
	r := e.Rules()
	pairs := [][2]float64{
		{r.MinInvestment / 2, r.MinInvestment},
		{r.MaxInvestment * 1.2, r.MaxInvestment},
	}
	for _, name := range e.Catalog().Industries() {
		sols, _ := e.Catalog().Solutions(name)
		for _, p := range pairs {
			out, err := e.Calculate(name, p[0], sols[:2])
			if err != nil {
				return err
			}
			bound, err := e.Calculate(name, p[1], sols[:2])
			if err != nil {
				return err
			}
			if !reflect.DeepEqual(out, bound) {
				return fmt.Errorf("%s: %v and %v differ", name, p[0], p[1])
			}
		}
	}
	return nil
}

func paybackCap(e *engine.Engine) error {
	limit := e.Rules().PaybackCapMonths
	return eachSubset(e, func(name string, amount float64, res *engine.Result) error {
		if res.PaybackMonths > limit || res.PaybackMonths < 0 {
			return fmt.Errorf("%s at %v: payback %d months outside [0, %d]", name, amount, res.PaybackMonths, limit)
		}
		return nil
	})
}

func compoundExceedsSimple(e *engine.Engine) error {
	years := float64(e.Rules().ProjectionYears)
	return eachSubset(e, func(name string, amount float64, res *engine.Result) error {
		if res.ROIMultiplier <= 1 {
			return nil
		}
		if res.FiveYearROI <= res.AnnualReturn*years {
			return fmt.Errorf("%s at %v: compound %v below simple %v", name, amount, res.FiveYearROI, res.AnnualReturn*years)
		}
		return nil
	})
}

func unknownIdentifiers(e *engine.Engine) error {
	if _, err := e.Calculate("No Such Industry", 10_000, nil); !errors.Is(err, catalog.ErrUnknownIndustry) {
		return fmt.Errorf("unknown industry returned %v", err)
	}
	if _, err := e.Calculate(catalog.DefaultIndustryName, 10_000, []string{"No Such Solution"}); !errors.Is(err, catalog.ErrUnknownSolution) {
		return fmt.Errorf("unknown solution returned %v", err)
	}
	return nil
}

func determinism(e *engine.Engine) error {
	return eachSubset(e, func(name string, amount float64, res *engine.Result) error {
		again, err := e.Calculate(name, amount, res.SelectedSolutions)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(res, again) {
			return fmt.Errorf("%s at %v: repeated call differs", name, amount)
		}
		return nil
	})
}

func duplicateSolutions(e *engine.Engine) error {
	for _, name := range e.Catalog().Industries() {
		sols, _ := e.Catalog().Solutions(name)
		once, err := e.Calculate(name, 75_000, sols[:2])
		if err != nil {
			return err
		}
		twice, err := e.Calculate(name, 75_000, []string{sols[0], sols[1], sols[0]})
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(once, twice) {
			return fmt.Errorf("%s: duplicated selection changed the result", name)
		}
	}
	return nil
}

// eachSubset calls fn for every non-empty solution subset of every industry
// at every grid amount.
func eachSubset(e *engine.Engine, fn func(name string, amount float64, res *engine.Result) error) error {
	for _, name := range e.Catalog().Industries() {
		sols, _ := e.Catalog().Solutions(name)
		for mask := 1; mask < 1<<len(sols); mask++ {
			var sel []string
			for i, s := range sols {
				if mask&(1<<i) != 0 {
					sel = append(sel, s)
				}
			}
			for _, amount := range InvestmentGrid {
				res, err := e.Calculate(name, amount, sel)
				if err != nil {
					return err
				}
				if err := fn(name, amount, res); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
