// internal/roi/catalog/catalog.go
package catalog

import (
	"fmt"
	"math"
	"strings"
)

const (
	IndustryCount         = 22
	SolutionsPerIndustry  = 4
	DefaultIndustryName   = "All Industries"
	minBaseMultiplier     = 0.0
	maxTimeSavingsPercent = 100.0
)

// AnchorIndustries must be present in every catalog.
var AnchorIndustries = []string{DefaultIndustryName, "Healthcare", "Financial Services", "Government"}

type Industry struct {
	Name           string     `json:"name" yaml:"name"`
	BaseMultiplier float64    `json:"baseMultiplier" yaml:"base_multiplier"`
	Solutions      []Solution `json:"solutions" yaml:"solutions"`
}

type Solution struct {
	Name               string  `json:"name" yaml:"name"`
	TimeSavingsPercent float64 `json:"individualTimeSavingsPercent" yaml:"time_savings_percent"`
}

// Catalog is the read-only industry/solution lookup table. It is built once
// and shared by reference; nothing mutates it after New returns.
type Catalog struct {
	industries []Industry
	byName     map[string]int
}

// New validates the table shape and returns an immutable catalog. The input
// slice is copied.
func New(industries []Industry) (*Catalog, error) {
	if len(industries) != IndustryCount {
		return nil, fmt.Errorf("%w: expected %d industries, got %d", ErrInvalidCatalog, IndustryCount, len(industries))
	}

	c := &Catalog{
		industries: make([]Industry, 0, len(industries)),
		byName:     make(map[string]int, len(industries)),
	}

	for _, ind := range industries {
		if err := validateIndustry(ind); err != nil {
			return nil, err
		}
		if _, dup := c.byName[ind.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate industry %q", ErrInvalidCatalog, ind.Name)
		}
		c.byName[ind.Name] = len(c.industries)
		c.industries = append(c.industries, copyIndustry(ind))
	}

	for _, anchor := range AnchorIndustries {
		if _, ok := c.byName[anchor]; !ok {
			return nil, fmt.Errorf("%w: required industry %q is missing", ErrInvalidCatalog, anchor)
		}
	}

	return c, nil
}

func validateIndustry(ind Industry) error {
	if strings.TrimSpace(ind.Name) == "" {
		return fmt.Errorf("%w: industry name is empty", ErrInvalidCatalog)
	}
	if math.IsNaN(ind.BaseMultiplier) || math.IsInf(ind.BaseMultiplier, 0) || ind.BaseMultiplier <= minBaseMultiplier {
		return fmt.Errorf("%w: industry %q has non-positive base multiplier %v", ErrInvalidCatalog, ind.Name, ind.BaseMultiplier)
	}
	if len(ind.Solutions) != SolutionsPerIndustry {
		return fmt.Errorf("%w: industry %q has %d solutions, expected %d", ErrInvalidCatalog, ind.Name, len(ind.Solutions), SolutionsPerIndustry)
	}

	seen := make(map[string]struct{}, len(ind.Solutions))
	for _, sol := range ind.Solutions {
		if strings.TrimSpace(sol.Name) == "" {
			return fmt.Errorf("%w: industry %q has a solution without a name", ErrInvalidCatalog, ind.Name)
		}
		if _, dup := seen[sol.Name]; dup {
			return fmt.Errorf("%w: industry %q lists solution %q twice", ErrInvalidCatalog, ind.Name, sol.Name)
		}
		seen[sol.Name] = struct{}{}
		if math.IsNaN(sol.TimeSavingsPercent) || sol.TimeSavingsPercent <= 0 || sol.TimeSavingsPercent > maxTimeSavingsPercent {
			return fmt.Errorf("%w: solution %q of %q has time savings %v outside (0, 100]", ErrInvalidCatalog, sol.Name, ind.Name, sol.TimeSavingsPercent)
		}
	}
	return nil
}

func copyIndustry(ind Industry) Industry {
	out := Industry{
		Name:           ind.Name,
		BaseMultiplier: ind.BaseMultiplier,
		Solutions:      make([]Solution, len(ind.Solutions)),
	}
	copy(out.Solutions, ind.Solutions)
	return out
}

// Industries returns all industry names in catalog order.
func (c *Catalog) Industries() []string {
	names := make([]string, len(c.industries))
	for i, ind := range c.industries {
		names[i] = ind.Name
	}
	return names
}

// Solutions returns the solution names of one industry in catalog order.
func (c *Catalog) Solutions(industry string) ([]string, error) {
	ind, err := c.lookup(industry)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ind.Solutions))
	for i, sol := range ind.Solutions {
		names[i] = sol.Name
	}
	return names, nil
}

func (c *Catalog) Industry(name string) (Industry, error) {
	ind, err := c.lookup(name)
	if err != nil {
		return Industry{}, err
	}
	return copyIndustry(*ind), nil
}

func (c *Catalog) Solution(industry, solution string) (Solution, error) {
	ind, err := c.lookup(industry)
	if err != nil {
		return Solution{}, err
	}
	for _, sol := range ind.Solutions {
		if sol.Name == solution {
			return sol, nil
		}
	}
	return Solution{}, &UnknownSolutionError{Industry: industry, Solution: solution}
}

// Len reports the number of industries.
func (c *Catalog) Len() int {
	return len(c.industries)
}

func (c *Catalog) lookup(name string) (*Industry, error) {
	idx, ok := c.byName[name]
	if !ok {
		return nil, &UnknownIndustryError{Industry: name}
	}
	return &c.industries[idx], nil
}
