// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler handles job errors with standardized error handling
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// jobErrorPlan is what HandleJobError will send for a failed job.
type jobErrorPlan struct {
	stdErr  *StandardError
	bpmnErr *BPMNError
	throw   bool
	retries int32
}

// HandleJobError fails the job with a decremented retry budget when the error
// is transient, and throws a BPMN error otherwise.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	p := h.plan(job, err)
	h.logError(job, p)

	if p.throw {
		h.throwBPMNError(ctx, client, job, p.bpmnErr)
		return
	}
	h.failJobWithRetries(ctx, client, job, p.bpmnErr, p.retries)
}

func (h *ErrorHandler) plan(job entities.Job, err error) jobErrorPlan {
	stdErr := normalizeError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	p := jobErrorPlan{stdErr: stdErr, bpmnErr: bpmnErr, throw: true}
	if bpmnErr.Retries > 0 && job.Retries > 0 {
		remaining := job.Retries - 1
		if limit := int32(bpmnErr.Retries); remaining > limit {
			remaining = limit
		}
		p.throw = false
		p.retries = remaining
	}
	return p
}

// normalizeError ensures we always have a StandardError
func normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("worker", err)
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func variablesJSON(bpmnErr *BPMNError) (string, bool) {
	data, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil || string(data) == "null" {
		return "", false
	}
	return string(data), true
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int32) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(bpmnErr.Message)

	if vars, ok := variablesJSON(bpmnErr); ok {
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logger.Error("failed to send fail job command", map[string]interface{}{"jobKey": job.Key, "error": err})
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send fail job command", map[string]interface{}{"jobKey": job.Key, "error": err})
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if vars, ok := variablesJSON(bpmnErr); ok {
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logger.Error("failed to throw error", map[string]interface{}{"jobKey": job.Key, "error": err})
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"jobKey": job.Key, "error": err})
	}
}

func (h *ErrorHandler) logError(job entities.Job, p jobErrorPlan) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(p.stdErr.Code),
		"bpmnErrorCode":    p.bpmnErr.Code,
		"message":          p.bpmnErr.Message,
		"details":          p.stdErr.Details,
		"retryable":        p.stdErr.Retryable,
		"thrown":           p.throw,
		"retriesLeft":      p.retries,
		"errorCategory":    GetErrorCategory(p.stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
