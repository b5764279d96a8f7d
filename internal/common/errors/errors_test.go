package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roi-workers/internal/roi/catalog"
	"roi-workers/internal/roi/rules"
)

// ==========================
// Test Helper Functions
// ==========================

type captureLogger struct {
	messages []string
	fields   []map[string]interface{}
}

func (c *captureLogger) Error(msg string, fields map[string]interface{}) {
	c.messages = append(c.messages, msg)
	c.fields = append(c.fields, fields)
}

func createMockJob(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                42,
		Type:               "calculate-roi",
		ProcessInstanceKey: 420,
		Retries:            retries,
		Variables:          "{}",
	}}
}

// ==========================
// Conversion Tests
// ==========================

func TestFromCalculationError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      ErrorCode
		retryable bool
		sentinel  error
	}{
		{
			name:     "unknown industry",
			err:      &catalog.UnknownIndustryError{Industry: "Space Mining"},
			code:     ErrCodeUnknownIndustry,
			sentinel: catalog.ErrUnknownIndustry,
		},
		{
			name:     "wrapped unknown solution",
			err:      fmt.Errorf("calculate: %w", &catalog.UnknownSolutionError{Industry: "Healthcare", Solution: "Fraud Detection"}),
			code:     ErrCodeUnknownSolution,
			sentinel: catalog.ErrUnknownSolution,
		},
		{
			name:     "invalid rules",
			err:      fmt.Errorf("%w: bad factor", rules.ErrInvalidConfig),
			code:     ErrCodeCalculationFailed,
			sentinel: rules.ErrInvalidConfig,
		},
		{
			name: "anything else",
			err:  stderrors.New("boom"),
			code: ErrCodeCalculationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			std := FromCalculationError(tt.err)
			require.NotNil(t, std)
			assert.Equal(t, tt.code, std.Code)
			assert.Equal(t, tt.retryable, std.Retryable)
			if tt.sentinel != nil {
				assert.ErrorIs(t, std, tt.sentinel)
			}
		})
	}

	assert.Nil(t, FromCalculationError(nil))

	already := NewInvalidInputError("missing industry")
	assert.Same(t, already, FromCalculationError(fmt.Errorf("wrap: %w", already)))
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewUnknownSolutionError("Retail", "Fraud Detection"))
	assert.Equal(t, "UNKNOWN_SOLUTION", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
	assert.False(t, bpmn.Retryable)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "UNKNOWN_SOLUTION", vars["errorCode"])
	assert.Equal(t, "Fraud Detection", vars["solution"])
	assert.Equal(t, "UNKNOWN_SOLUTION", vars["originalErrorCode"])

	insert := ConvertToBPMNError(NewDatabaseInsertFailedError(stderrors.New("conn reset")))
	assert.Equal(t, 3, insert.Retries)
	assert.True(t, insert.Retryable)

	lookup := ConvertToBPMNError(NewInvalidLookupTypeError("everything"))
	assert.Equal(t, "INVALID_INPUT", lookup.Code)
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeUnknownIndustry:               "CATALOG",
		ErrCodeUnknownSolution:               "CATALOG",
		ErrCodeCalculationFailed:             "CALCULATION",
		ErrCodeDuplicateCalculation:          "DATABASE",
		ErrCodeDatabaseInsertFailed:          "DATABASE",
		ErrCodeCacheUnavailable:              "CACHE",
		ErrCodeIndexTimeout:                  "SEARCH",
		ErrCodeElasticsearchConnectionFailed: "SEARCH",
		ErrCodeInvalidInput:                  "VALIDATION",
		ErrCodeInternal:                      "OTHER",
	}
	for code, expected := range tests {
		assert.Equal(t, expected, GetErrorCategory(code), string(code))
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeCacheUnavailable))
	assert.True(t, IsRetryableErrorCode(ErrCodeIndexTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeUnknownIndustry))
	assert.False(t, IsRetryableErrorCode(ErrCodeDuplicateCalculation))
}

// ==========================
// Job Error Handling Tests
// ==========================

func TestErrorHandler_Plan(t *testing.T) {
	h := NewErrorHandler(&captureLogger{})

	tests := []struct {
		name        string
		err         error
		jobRetries  int32
		wantThrow   bool
		wantRetries int32
		wantCode    string
	}{
		{"business error is thrown", NewUnknownIndustryError("Space"), 3, true, 0, "UNKNOWN_INDUSTRY"},
		{"transient error retries", NewDatabaseInsertFailedError(stderrors.New("reset")), 3, false, 2, "DATABASE_INSERT_FAILED"},
		{"retry budget capped by code", NewIndexTimeoutError("roi-calculations"), 10, false, 2, "INDEX_TIMEOUT"},
		{"last attempt leaves zero retries", NewCacheUnavailableError(stderrors.New("down")), 1, false, 0, "CACHE_UNAVAILABLE"},
		{"no retries left is thrown", NewCacheUnavailableError(stderrors.New("down")), 0, true, 0, "CACHE_UNAVAILABLE"},
		{"plain error is internal", stderrors.New("nil pointer"), 3, true, 0, "INTERNAL_ERROR"},
		{"deadline becomes timeout", fmt.Errorf("execute: %w", context.DeadlineExceeded), 3, false, 2, "TIMEOUT_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := h.plan(createMockJob(tt.jobRetries), tt.err)
			assert.Equal(t, tt.wantThrow, p.throw)
			assert.Equal(t, tt.wantRetries, p.retries)
			assert.Equal(t, tt.wantCode, p.bpmnErr.Code)
		})
	}
}

func TestErrorHandler_LogError(t *testing.T) {
	log := &captureLogger{}
	h := NewErrorHandler(log)

	job := createMockJob(3)
	h.logError(job, h.plan(job, NewDuplicateCalculationError("req-1")))

	require.Len(t, log.messages, 1)
	assert.Equal(t, "job failed", log.messages[0])
	assert.Equal(t, "DUPLICATE_CALCULATION", log.fields[0]["errorCode"])
	assert.Equal(t, "DATABASE", log.fields[0]["errorCategory"])
	assert.Equal(t, true, log.fields[0]["thrown"])
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeIndexTimeout, CodeOf(fmt.Errorf("wrap: %w", NewIndexTimeoutError("roi"))))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))
}

func TestBPMNCodes(t *testing.T) {
	codes := BPMNCodes()
	assert.IsIncreasing(t, codes)
	assert.Contains(t, codes, "UNKNOWN_INDUSTRY")
	assert.Contains(t, codes, "TIMEOUT_ERROR")
	assert.NotContains(t, codes, "INVALID_LOOKUP_TYPE")
}
