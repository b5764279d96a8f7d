// internal/workers/roi/catalog-lookup/handler.go
package cataloglookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"roi-workers/internal/common/camunda"
	apperrors "roi-workers/internal/common/errors"
	"roi-workers/internal/common/logger"
	"roi-workers/internal/common/metrics"
	"roi-workers/internal/roi/catalog"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "catalog-lookup"
)

var (
	ErrNilCatalog = errors.New("catalog-lookup requires a catalog")
)

type Handler struct {
	config     *Config
	catalog    *catalog.Catalog
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, cat *catalog.Catalog, log logger.Logger) (*Handler, error) {
	if cat == nil {
		return nil, ErrNilCatalog
	}
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		catalog:    cat,
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

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"lookupType": output.LookupType,
		"count":      output.Count,
	})
	done("")
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	switch input.LookupType {
	case LookupIndustries:
		names := h.catalog.Industries()
		return &Output{LookupType: input.LookupType, Industries: names, Count: len(names)}, nil

	case LookupSolutions:
		names, err := h.catalog.Solutions(h.industryOrDefault(input.Industry))
		if err != nil {
			return nil, apperrors.FromCalculationError(err)
		}
		return &Output{LookupType: input.LookupType, Solutions: names, Count: len(names)}, nil

	case LookupIndustry:
		ind, err := h.catalog.Industry(h.industryOrDefault(input.Industry))
		if err != nil {
			return nil, apperrors.FromCalculationError(err)
		}
		return &Output{LookupType: input.LookupType, Industry: &ind, Count: len(ind.Solutions)}, nil

	default:
		h.logger.Warn("unsupported lookup type", map[string]interface{}{
			"lookupType": input.LookupType,
		})
		return nil, apperrors.NewInvalidLookupTypeError(input.LookupType)
	}
}

// industryOrDefault falls back to the generic row when no industry was chosen
// yet, the same default the presentation layer starts from.
func (h *Handler) industryOrDefault(name string) string {
	if name == "" {
		return catalog.DefaultIndustryName
	}
	return name
}
