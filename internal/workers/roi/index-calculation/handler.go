// internal/workers/roi/index-calculation/handler.go
package indexcalculation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"roi-workers/internal/common/camunda"
	apperrors "roi-workers/internal/common/errors"
	"roi-workers/internal/common/logger"
	"roi-workers/internal/common/metrics"
	"roi-workers/internal/models"
	"roi-workers/internal/roi/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	TaskType = "index-calculation"
)

var (
	ErrMissingDependency = errors.New("index-calculation requires engine and elasticsearch client")
)

type Handler struct {
	config     *Config
	engine     *engine.Engine
	client     *elasticsearch.Client
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, eng *engine.Engine, client *elasticsearch.Client, log logger.Logger) (*Handler, error) {
	if eng == nil || client == nil {
		return nil, ErrMissingDependency
	}
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     eng,
		client:     client,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
		now:        time.Now,
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

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		err = apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
		done(string(apperrors.CodeOf(err)))
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		done(string(apperrors.CodeOf(err)))
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		done(string(apperrors.ErrCodeInternal))
		return
	}
	done("")
}

// Execute writes the calculation document under its calculation id, so a
// redelivered job overwrites rather than duplicates.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CalculationID == "" {
		return nil, apperrors.NewInvalidInputError("calculationId is required")
	}

	result := input.ROI
	if result == nil {
		var err error
		result, err = h.engine.Calculate(input.Industry, input.InvestmentAmount, input.SelectedSolutions)
		if err != nil {
			return nil, apperrors.FromCalculationError(err)
		}
	}

	doc := models.NewCalculationDocument(input.CalculationID, *result, h.now())
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, apperrors.NewIndexFailedError(h.config.IndexName, err)
	}

	req := esapi.IndexRequest{
		Index:      h.config.IndexName,
		DocumentID: input.CalculationID,
		Body:       bytes.NewReader(body),
		Refresh:    h.config.Refresh,
	}

	res, err := req.Do(ctx, h.client)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewIndexTimeoutError(h.config.IndexName)
		}
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		h.logger.Error("index request rejected", map[string]interface{}{
			"calculationId": input.CalculationID,
			"status":        res.StatusCode,
			"body":          string(msg),
		})
		return nil, apperrors.NewIndexFailedError(h.config.IndexName, fmt.Errorf("%s: %s", res.Status(), msg))
	}

	var ir indexResponse
	if err := json.NewDecoder(res.Body).Decode(&ir); err != nil {
		return nil, apperrors.NewIndexFailedError(h.config.IndexName, fmt.Errorf("decode response: %w", err))
	}

	h.logger.Info("calculation indexed", map[string]interface{}{
		"calculationId": input.CalculationID,
		"index":         h.config.IndexName,
		"result":        ir.Result,
		"version":       ir.Version,
	})

	return &Output{
		Indexed:    true,
		DocumentID: ir.ID,
		Index:      h.config.IndexName,
		Result:     ir.Result,
	}, nil
}
