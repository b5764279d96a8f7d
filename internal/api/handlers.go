// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "roi-workers/internal/common/errors"
	"roi-workers/internal/common/logger"
	"roi-workers/internal/common/metrics"
	"roi-workers/internal/common/observability"
	"roi-workers/internal/common/validation"
	"roi-workers/internal/models"
	"roi-workers/internal/roi/engine"
)

const readinessTimeout = 2 * time.Second

var requestSchema = validation.MustCompile(models.CalculationRequestSchema)

// ReadinessCheck reports whether a backing service is reachable.
type ReadinessCheck func(ctx context.Context) error

// Handlers serves the presentation layer from one shared engine.
type Handlers struct {
	engine *engine.Engine
	obs    *observability.Observability
	logger logger.Logger
	checks map[string]ReadinessCheck
}

func NewHandlers(eng *engine.Engine, obs *observability.Observability, log logger.Logger, checks map[string]ReadinessCheck) *Handlers {
	return &Handlers{
		engine: eng,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "api"}),
		checks: checks,
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type calculateResponse struct {
	ROI     *engine.Result `json:"roi"`
	Display engine.Display `json:"display"`
}

func (h *Handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) ready(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		err := h.checks[name](ctx)
		cancel()

		if err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			h.logger.Warn("readiness check failed", map[string]interface{}{
				"check": name,
				"error": err.Error(),
			})
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": results,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) listIndustries(c *gin.Context) {
	names := h.engine.Catalog().Industries()
	c.JSON(http.StatusOK, gin.H{"industries": names, "count": len(names)})
}

func (h *Handlers) getIndustry(c *gin.Context) {
	ind, err := h.engine.Catalog().Industry(c.Param("industry"))
	if err != nil {
		h.abortWithError(c, apperrors.FromCalculationError(err))
		return
	}
	c.JSON(http.StatusOK, ind)
}

func (h *Handlers) listSolutions(c *gin.Context) {
	industry := c.Param("industry")
	names, err := h.engine.Catalog().Solutions(industry)
	if err != nil {
		h.abortWithError(c, apperrors.FromCalculationError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"industry": industry, "solutions": names, "count": len(names)})
}

func (h *Handlers) calculate(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		h.abortWithError(c, apperrors.NewInvalidInputError(err.Error()))
		return
	}
	if result := requestSchema.ValidateJSON(raw); !result.Valid {
		h.abortWithError(c, apperrors.NewInvalidInputError(result.Error()))
		return
	}

	var req models.CalculationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.abortWithError(c, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	ctx, span := h.obs.StartSpan(c.Request.Context(), "api.roi.calculate",
		attribute.String("industry", req.Industry),
		attribute.Int("solutions", len(req.SelectedSolutions)),
	)
	defer span.End()

	result, err := h.engine.Calculate(req.Industry, req.InvestmentAmount, req.SelectedSolutions)
	if err != nil {
		std := apperrors.FromCalculationError(err)
		outcome := outcomeFor(std.Code)
		metrics.RecordCalculation(req.Industry, outcome, 0)
		h.obs.RecordCalculation(ctx, req.Industry, outcome, 0)
		span.SetStatus(codes.Error, std.Message)
		h.abortWithError(c, std)
		return
	}

	metrics.RecordCalculation(result.Industry, metrics.OutcomeSuccess, result.ROIMultiplier)
	h.obs.RecordCalculation(ctx, result.Industry, metrics.OutcomeSuccess, result.ROIMultiplier)

	c.JSON(http.StatusOK, calculateResponse{ROI: result, Display: result.Display()})
}

func (h *Handlers) abortWithError(c *gin.Context, std *apperrors.StandardError) {
	_ = c.Error(std)
	c.AbortWithStatusJSON(statusFor(std.Code), gin.H{"error": errorBody{
		Code:    string(std.Code),
		Message: std.Message,
		Details: std.Details,
	}})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeUnknownIndustry, apperrors.ErrCodeUnknownSolution:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func outcomeFor(code apperrors.ErrorCode) string {
	switch code {
	case apperrors.ErrCodeUnknownIndustry:
		return metrics.OutcomeUnknownIndustry
	case apperrors.ErrCodeUnknownSolution:
		return metrics.OutcomeUnknownSolution
	default:
		return metrics.OutcomeError
	}
}
