// internal/models/calculation.go
package models

import (
	"time"

	"roi-workers/internal/roi/engine"
)

const (
	CalculationStatusRecorded  = "recorded"
	CalculationStatusDuplicate = "duplicate"
)

// CalculationRequest is the caller-supplied part of a calculation, shared by
// the job workers and the HTTP API.
type CalculationRequest struct {
	RequestID         string   `json:"requestId,omitempty"`
	Industry          string   `json:"industry"`
	InvestmentAmount  float64  `json:"investmentAmount"`
	SelectedSolutions []string `json:"selectedSolutions"`
}

// Calculation is a persisted calculation as stored in roi_calculations.
type Calculation struct {
	ID                string        `json:"id"`
	RequestID         string        `json:"requestId"`
	LeadEmail         string        `json:"leadEmail,omitempty"`
	Industry          string        `json:"industry"`
	Investment        float64       `json:"investment"`
	SelectedSolutions []string      `json:"selectedSolutions"`
	Result            engine.Result `json:"result"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// CalculationDocument is the flattened search document for the dashboard.
type CalculationDocument struct {
	CalculationID      string    `json:"calculationId"`
	Industry           string    `json:"industry"`
	Investment         float64   `json:"investment"`
	SelectedSolutions  []string  `json:"selectedSolutions"`
	SolutionCount      int       `json:"solutionCount"`
	FiveYearROI        float64   `json:"fiveYearRoi"`
	AnnualReturn       float64   `json:"annualReturn"`
	TimeSavingsPercent float64   `json:"timeSavingsPercent"`
	PaybackMonths      int       `json:"paybackMonths"`
	ROIMultiplier      float64   `json:"roiMultiplier"`
	IndexedAt          time.Time `json:"indexedAt"`
}

func NewCalculationDocument(calculationID string, r engine.Result, indexedAt time.Time) CalculationDocument {
	solutions := r.SelectedSolutions
	if solutions == nil {
		solutions = []string{}
	}
	return CalculationDocument{
		CalculationID:      calculationID,
		Industry:           r.Industry,
		Investment:         r.Investment,
		SelectedSolutions:  solutions,
		SolutionCount:      len(solutions),
		FiveYearROI:        r.FiveYearROI,
		AnnualReturn:       r.AnnualReturn,
		TimeSavingsPercent: r.TimeSavingsPercent,
		PaybackMonths:      r.PaybackMonths,
		ROIMultiplier:      r.ROIMultiplier,
		IndexedAt:          indexedAt.UTC(),
	}
}

// CalculationRequestSchema validates a CalculationRequest document.
const CalculationRequestSchema = `{
	"type": "object",
	"required": ["industry", "investmentAmount", "selectedSolutions"],
	"properties": {
		"requestId": {"type": "string"},
		"industry": {"type": "string", "minLength": 1},
		"investmentAmount": {"type": "number"},
		"selectedSolutions": {
			"type": "array",
			"items": {"type": "string"}
		}
	}
}`
