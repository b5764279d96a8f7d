// internal/roi/engine/models.go
package engine

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"roi-workers/internal/roi/rules"
)

// Result is the outcome of one calculation. It is built fresh per call and
// never shared.
type Result struct {
	Industry           string                 `json:"industry"`
	Investment         float64                `json:"investment"`
	SelectedSolutions  []string               `json:"selectedSolutions"`
	FiveYearROI        float64                `json:"fiveYearRoi"`
	TimeSavingsPercent float64                `json:"timeSavingsPercent"`
	AnnualReturn       float64                `json:"annualReturn"`
	PaybackMonths      int                    `json:"paybackMonths"`
	ROIMultiplier      float64                `json:"roiMultiplier"`
	Breakdown          Breakdown              `json:"breakdown"`
	Projection         []rules.YearProjection `json:"projection,omitempty"`
}

// Breakdown exposes the intermediate rule outputs behind ROIMultiplier.
type Breakdown struct {
	BaseMultiplier float64 `json:"baseMultiplier"`
	SynergyBonus   float64 `json:"synergyBonus"`
	ScaleBonus     float64 `json:"scaleBonus"`
	SolutionCount  int     `json:"solutionCount"`
	AnnualRate     float64 `json:"annualRate"`
}

// Display holds presentation-ready strings for a Result.
type Display struct {
	FiveYearROI        string `json:"fiveYearRoi"`
	TimeSavingsPercent string `json:"timeSavingsPercent"`
	AnnualReturn       string `json:"annualReturn"`
	PaybackPeriod      string `json:"paybackPeriod"`
	ROIMultiplier      string `json:"roiMultiplier"`
	Investment         string `json:"investment"`
}

func (r *Result) Display() Display {
	p := message.NewPrinter(language.English)

	payback := "n/a"
	switch {
	case r.PaybackMonths == 1:
		payback = "1 month"
	case r.PaybackMonths > 1:
		payback = p.Sprintf("%d months", r.PaybackMonths)
	}

	return Display{
		FiveYearROI:        currency(p, r.FiveYearROI),
		TimeSavingsPercent: p.Sprintf("%v%%", number.Decimal(r.TimeSavingsPercent, number.MaxFractionDigits(2))),
		AnnualReturn:       currency(p, r.AnnualReturn),
		PaybackPeriod:      payback,
		ROIMultiplier:      p.Sprintf("%vx", number.Decimal(r.ROIMultiplier, number.Scale(2))),
		Investment:         currency(p, r.Investment),
	}
}

func currency(p *message.Printer, v float64) string {
	return p.Sprintf("$%v", number.Decimal(v, number.Scale(2)))
}
