// internal/workers/roi/catalog-lookup/models.go
package cataloglookup

import "roi-workers/internal/roi/catalog"

const (
	LookupIndustries = "industries"
	LookupSolutions  = "solutions"
	LookupIndustry   = "industry"
)

type Input struct {
	LookupType string `json:"lookupType"`
	Industry   string `json:"industry,omitempty"`
}

// Output carries exactly one of the lookup results, keyed by lookup type.
type Output struct {
	LookupType string            `json:"lookupType"`
	Industries []string          `json:"industries,omitempty"`
	Solutions  []string          `json:"solutions,omitempty"`
	Industry   *catalog.Industry `json:"industry,omitempty"`
	Count      int               `json:"count"`
}
