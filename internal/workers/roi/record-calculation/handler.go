// internal/workers/roi/record-calculation/handler.go
package recordcalculation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roi-workers/internal/common/camunda"
	apperrors "roi-workers/internal/common/errors"
	"roi-workers/internal/common/logger"
	"roi-workers/internal/common/metrics"
	"roi-workers/internal/models"
	"roi-workers/internal/roi/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "record-calculation"

	// pendingMarker holds the idempotency key while the insert is in flight.
	pendingMarker = "pending"
)

var (
	ErrMissingDependency = errors.New("record-calculation requires engine, database and redis")
)

type Handler struct {
	config     *Config
	engine     *engine.Engine
	db         *sql.DB
	redis      *redis.Client
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, eng *engine.Engine, db *sql.DB, redis *redis.Client, log logger.Logger) (*Handler, error) {
	if eng == nil || db == nil || redis == nil {
		return nil, ErrMissingDependency
	}
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     eng,
		db:         db,
		redis:      redis,
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

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":        job.Key,
		"calculationId": output.CalculationID,
		"status":        output.Status,
	})
	done("")
}

// Execute stores one calculation at most once per request id. A request id
// that was already recorded yields status "duplicate" with the original id;
// one still in flight on another worker fails with DUPLICATE_CALCULATION.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RequestID == "" {
		return nil, apperrors.NewInvalidInputError("requestId is required")
	}

	result, err := h.resolveResult(input)
	if err != nil {
		return nil, err
	}

	key := h.config.KeyPrefix + input.RequestID
	acquired, err := h.redis.SetNX(ctx, key, pendingMarker, h.config.IdempotencyTTL).Result()
	if err != nil {
		return nil, apperrors.NewCacheUnavailableError(err)
	}
	if !acquired {
		return h.duplicate(ctx, key, input.RequestID)
	}

	calc := models.Calculation{
		ID:                uuid.New().String(),
		RequestID:         input.RequestID,
		LeadEmail:         input.LeadEmail,
		Industry:          result.Industry,
		Investment:        result.Investment,
		SelectedSolutions: result.SelectedSolutions,
		Result:            *result,
		CreatedAt:         h.now().UTC(),
	}

	inserted, err := h.insert(ctx, &calc)
	if err != nil {
		h.release(key)
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}
	if !inserted {
		// the row outlived its idempotency key
		existing, err := h.existingID(ctx, input.RequestID)
		if err != nil {
			h.release(key)
			return nil, apperrors.NewDatabaseInsertFailedError(err)
		}
		h.remember(ctx, key, existing)
		return &Output{CalculationID: existing, Status: models.CalculationStatusDuplicate}, nil
	}

	h.audit(ctx, &calc)
	h.remember(ctx, key, calc.ID)

	h.logger.Info("calculation recorded", map[string]interface{}{
		"calculationId": calc.ID,
		"requestId":     calc.RequestID,
		"industry":      calc.Industry,
		"roiMultiplier": result.ROIMultiplier,
	})

	return &Output{
		CalculationID: calc.ID,
		Status:        models.CalculationStatusRecorded,
		CreatedAt:     calc.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) resolveResult(input *Input) (*engine.Result, error) {
	if input.ROI != nil {
		return input.ROI, nil
	}
	if input.Industry == "" {
		return nil, apperrors.NewInvalidInputError("either roi or industry is required")
	}
	result, err := h.engine.Calculate(input.Industry, input.InvestmentAmount, input.SelectedSolutions)
	if err != nil {
		return nil, apperrors.FromCalculationError(err)
	}
	return result, nil
}

func (h *Handler) duplicate(ctx context.Context, key, requestID string) (*Output, error) {
	val, err := h.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) || val == pendingMarker {
		h.logger.Warn("calculation in flight elsewhere", map[string]interface{}{
			"requestId": requestID,
		})
		return nil, apperrors.NewDuplicateCalculationError(requestID)
	}
	if err != nil {
		return nil, apperrors.NewCacheUnavailableError(err)
	}

	h.logger.Info("calculation already recorded", map[string]interface{}{
		"requestId":     requestID,
		"calculationId": val,
	})
	return &Output{CalculationID: val, Status: models.CalculationStatusDuplicate}, nil
}

func (h *Handler) insert(ctx context.Context, calc *models.Calculation) (bool, error) {
	solutionsJSON, err := json.Marshal(calc.SelectedSolutions)
	if err != nil {
		return false, fmt.Errorf("marshal solutions: %w", err)
	}
	resultJSON, err := json.Marshal(calc.Result)
	if err != nil {
		return false, fmt.Errorf("marshal result: %w", err)
	}

	var leadEmail sql.NullString
	if calc.LeadEmail != "" {
		leadEmail = sql.NullString{String: calc.LeadEmail, Valid: true}
	}

	res, err := h.db.ExecContext(ctx, `
		INSERT INTO roi_calculations (
			id, request_id, lead_email, industry, investment, selected_solutions,
			five_year_roi, annual_return, time_savings_percent, payback_months,
			roi_multiplier, result, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (request_id) DO NOTHING`,
		calc.ID,
		calc.RequestID,
		leadEmail,
		calc.Industry,
		calc.Investment,
		solutionsJSON,
		calc.Result.FiveYearROI,
		calc.Result.AnnualReturn,
		calc.Result.TimeSavingsPercent,
		calc.Result.PaybackMonths,
		calc.Result.ROIMultiplier,
		resultJSON,
		calc.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert calculation: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

func (h *Handler) existingID(ctx context.Context, requestID string) (string, error) {
	var id string
	err := h.db.QueryRowContext(ctx,
		`SELECT id FROM roi_calculations WHERE request_id = $1`, requestID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("lookup existing calculation: %w", err)
	}
	return id, nil
}

// audit is best effort; a failed audit row never fails the job.
func (h *Handler) audit(ctx context.Context, calc *models.Calculation) {
	details, err := json.Marshal(map[string]interface{}{
		"requestId":     calc.RequestID,
		"industry":      calc.Industry,
		"investment":    calc.Investment,
		"solutionCount": len(calc.SelectedSolutions),
		"roiMultiplier": calc.Result.ROIMultiplier,
	})
	if err != nil {
		details = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"roi_calculation_recorded",
		"roi_calculation",
		calc.ID,
		details,
		calc.CreatedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err.Error(),
			"calculationId": calc.ID,
		})
	}
}

func (h *Handler) remember(ctx context.Context, key, calculationID string) {
	if err := h.redis.Set(ctx, key, calculationID, h.config.IdempotencyTTL).Err(); err != nil {
		h.logger.Warn("failed to store idempotency key", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// release drops a pending key so a retried job can claim it again.
func (h *Handler) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.redis.Del(ctx, key).Err(); err != nil {
		h.logger.Warn("failed to release idempotency key", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
