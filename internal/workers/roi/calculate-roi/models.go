// internal/workers/roi/calculate-roi/models.go
package calculateroi

import (
	"roi-workers/internal/models"
	"roi-workers/internal/roi/engine"
)

type Input = models.CalculationRequest

type Output struct {
	RequestID string         `json:"requestId,omitempty"`
	ROI       *engine.Result `json:"roi"`
	Display   engine.Display `json:"display"`
}
