// internal/workers/roi/index-calculation/models.go
package indexcalculation

import "roi-workers/internal/roi/engine"

type Input struct {
	CalculationID     string         `json:"calculationId"`
	Industry          string         `json:"industry"`
	InvestmentAmount  float64        `json:"investmentAmount"`
	SelectedSolutions []string       `json:"selectedSolutions"`
	ROI               *engine.Result `json:"roi,omitempty"`
}

type Output struct {
	Indexed    bool   `json:"indexed"`
	DocumentID string `json:"documentId"`
	Index      string `json:"index"`
	Result     string `json:"indexResult,omitempty"`
}

type indexResponse struct {
	ID      string `json:"_id"`
	Index   string `json:"_index"`
	Result  string `json:"result"`
	Version int    `json:"_version"`
}
