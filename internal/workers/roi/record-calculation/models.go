// internal/workers/roi/record-calculation/models.go
package recordcalculation

import "roi-workers/internal/roi/engine"

type Input struct {
	RequestID         string   `json:"requestId"`
	LeadEmail         string   `json:"leadEmail,omitempty"`
	Industry          string   `json:"industry"`
	InvestmentAmount  float64  `json:"investmentAmount"`
	SelectedSolutions []string `json:"selectedSolutions"`
	// ROI is the calculate-roi output. When absent the result is recomputed.
	ROI *engine.Result `json:"roi,omitempty"`
}

type Output struct {
	CalculationID string `json:"calculationId"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt,omitempty"`
}
