// internal/workers/roi/calculate-roi/handler.go
package calculateroi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"roi-workers/internal/common/camunda"
	apperrors "roi-workers/internal/common/errors"
	"roi-workers/internal/common/logger"
	"roi-workers/internal/common/metrics"
	"roi-workers/internal/common/observability"
	"roi-workers/internal/common/validation"
	"roi-workers/internal/models"
	"roi-workers/internal/roi/catalog"
	"roi-workers/internal/roi/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	TaskType = "calculate-roi"
)

var (
	ErrNilEngine = errors.New("calculate-roi requires an engine")

	schema = validation.MustCompile(models.CalculationRequestSchema)
)

type Handler struct {
	config     *Config
	engine     *engine.Engine
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, eng *engine.Engine, obs *observability.Observability, log logger.Logger) (*Handler, error) {
	if eng == nil {
		return nil, ErrNilEngine
	}
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     eng,
		obs:        obs,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	done := metrics.JobStarted(TaskType)

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err != nil {
		done(string(apperrors.CodeOf(err)))
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		done(string(apperrors.CodeOf(err)))
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		done(string(apperrors.ErrCodeInternal))
		return
	}
	done("")
}

// parseInput validates raw job variables against the input schema before
// decoding them.
func parseInput(variables string) (*Input, error) {
	if result := schema.ValidateJSON([]byte(variables)); !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Error())
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

// Execute runs one calculation. Engine errors are returned as StandardErrors.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := h.obs.StartSpan(ctx, "roi.calculate",
		attribute.String("industry", input.Industry),
		attribute.Int("solutions", len(input.SelectedSolutions)),
	)
	defer span.End()

	result, err := h.engine.Calculate(input.Industry, input.InvestmentAmount, input.SelectedSolutions)
	if err != nil {
		outcome := outcomeOf(err)
		metrics.RecordCalculation(input.Industry, outcome, 0)
		h.obs.RecordCalculation(ctx, input.Industry, outcome, 0)
		span.SetStatus(codes.Error, err.Error())

		h.logger.Warn("calculation rejected", map[string]interface{}{
			"requestId": input.RequestID,
			"industry":  input.Industry,
			"error":     err.Error(),
		})
		return nil, apperrors.FromCalculationError(err)
	}

	metrics.RecordCalculation(result.Industry, metrics.OutcomeSuccess, result.ROIMultiplier)
	h.obs.RecordCalculation(ctx, result.Industry, metrics.OutcomeSuccess, result.ROIMultiplier)

	if !h.config.IncludeProjection {
		result.Projection = nil
	}

	h.logger.Info("roi calculated", map[string]interface{}{
		"requestId":     input.RequestID,
		"industry":      result.Industry,
		"solutions":     len(result.SelectedSolutions),
		"investment":    result.Investment,
		"roiMultiplier": result.ROIMultiplier,
		"paybackMonths": result.PaybackMonths,
	})

	return &Output{
		RequestID: input.RequestID,
		ROI:       result,
		Display:   result.Display(),
	}, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, catalog.ErrUnknownIndustry):
		return metrics.OutcomeUnknownIndustry
	case errors.Is(err, catalog.ErrUnknownSolution):
		return metrics.OutcomeUnknownSolution
	default:
		return metrics.OutcomeError
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":        job.Key,
		"roiMultiplier": output.ROI.ROIMultiplier,
	})
	return nil
}
