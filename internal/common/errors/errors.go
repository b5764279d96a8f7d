// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"roi-workers/internal/roi/catalog"
	"roi-workers/internal/roi/rules"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnknownIndustry   ErrorCode = "UNKNOWN_INDUSTRY"
	ErrCodeUnknownSolution   ErrorCode = "UNKNOWN_SOLUTION"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidLookupType ErrorCode = "INVALID_LOOKUP_TYPE"
	ErrCodeCalculationFailed ErrorCode = "CALCULATION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDuplicateCalculation     ErrorCode = "DUPLICATE_CALCULATION"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeIndexFailed                   ErrorCode = "INDEX_FAILED"
	ErrCodeIndexTimeout                  ErrorCode = "INDEX_TIMEOUT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause so errors.Is keeps working across the
// conversion.
func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewUnknownIndustryError(industry string) *StandardError {
	e := newError(ErrCodeUnknownIndustry, "Industry is not in the catalog",
		fmt.Sprintf("industry: %s", industry), false, &catalog.UnknownIndustryError{Industry: industry})
	e.Metadata = map[string]interface{}{"industry": industry}
	return e
}

func NewUnknownSolutionError(industry, solution string) *StandardError {
	e := newError(ErrCodeUnknownSolution, "Solution is not offered for the industry",
		fmt.Sprintf("industry: %s, solution: %s", industry, solution), false,
		&catalog.UnknownSolutionError{Industry: industry, Solution: solution})
	e.Metadata = map[string]interface{}{"industry": industry, "solution": solution}
	return e
}

// NewInvalidInputError creates a non-retryable job input error.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Job input failed validation", details, false, nil)
}

func NewInvalidLookupTypeError(lookupType string) *StandardError {
	return newError(ErrCodeInvalidLookupType, "Unsupported catalog lookup type",
		fmt.Sprintf("lookupType: %s", lookupType), false, nil)
}

// NewCalculationFailedError wraps an engine failure that is not an unknown
// identifier. Retrying cannot change a deterministic result.
func NewCalculationFailedError(err error) *StandardError {
	return newError(ErrCodeCalculationFailed, "ROI calculation failed", err.Error(), false, err)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true, err)
}

func NewDuplicateCalculationError(requestID string) *StandardError {
	return newError(ErrCodeDuplicateCalculation, "Calculation was already recorded",
		fmt.Sprintf("requestId: %s", requestID), false, nil)
}

// NewCacheUnavailableError creates a retryable Redis error.
func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Idempotency cache unavailable", err.Error(), true, err)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true, err)
}

func NewIndexFailedError(index string, err error) *StandardError {
	return newError(ErrCodeIndexFailed, "Elasticsearch index request failed",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true, err)
}

func NewIndexTimeoutError(index string) *StandardError {
	return newError(ErrCodeIndexTimeout, "Elasticsearch index request timed out",
		fmt.Sprintf("index: %s", index), true, nil)
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return newError("BUSINESS_RULE_VIOLATION", message, details, false, nil)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR", fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR", fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError("RESOURCE_NOT_FOUND", fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

func NewAuthenticationError(details string) *StandardError {
	return newError("AUTHENTICATION_ERROR", "Authentication failed", details, false, nil)
}

// FromCalculationError maps an engine error to its standard form.
func FromCalculationError(err error) *StandardError {
	if err == nil {
		return nil
	}

	var std *StandardError
	if stderrors.As(err, &std) {
		return std
	}

	var indErr *catalog.UnknownIndustryError
	if stderrors.As(err, &indErr) {
		return NewUnknownIndustryError(indErr.Industry)
	}

	var solErr *catalog.UnknownSolutionError
	if stderrors.As(err, &solErr) {
		return NewUnknownSolutionError(solErr.Industry, solErr.Solution)
	}

	if stderrors.Is(err, rules.ErrInvalidConfig) || stderrors.Is(err, catalog.ErrInvalidCatalog) {
		e := NewCalculationFailedError(err)
		e.Message = "ROI engine is misconfigured"
		return e
	}

	return NewCalculationFailedError(err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes caught by boundary
// events in the ROI process model.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeUnknownIndustry:               "UNKNOWN_INDUSTRY",
	ErrCodeUnknownSolution:               "UNKNOWN_SOLUTION",
	ErrCodeInvalidInput:                  "INVALID_INPUT",
	ErrCodeInvalidLookupType:             "INVALID_INPUT",
	ErrCodeCalculationFailed:             "CALCULATION_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseInsertFailed:          "DATABASE_INSERT_FAILED",
	ErrCodeDuplicateCalculation:          "DUPLICATE_CALCULATION",
	ErrCodeCacheUnavailable:              "CACHE_UNAVAILABLE",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeIndexFailed:                   "INDEX_FAILED",
	ErrCodeIndexTimeout:                  "INDEX_TIMEOUT",
}

// genericCodes are produced by the generic constructors and by the job error
// handler for errors without a standard code.
var genericCodes = []string{
	"BUSINESS_RULE_VIOLATION",
	"EXTERNAL_SERVICE_ERROR",
	"TIMEOUT_ERROR",
	"RESOURCE_NOT_FOUND",
	"AUTHENTICATION_ERROR",
	string(ErrCodeInternal),
}

// BPMNCodes lists every error code a worker may throw, sorted.
func BPMNCodes() []string {
	seen := make(map[string]bool)
	var codes []string
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			codes = append(codes, c)
		}
	}
	for _, c := range BPMNErrorMapping {
		add(c)
	}
	for _, c := range genericCodes {
		add(c)
	}
	sort.Strings(codes)
	return codes
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeCacheUnavailable,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeIndexFailed,
		"EXTERNAL_SERVICE_ERROR":
		return 3

	case ErrCodeIndexTimeout, "TIMEOUT_ERROR":
		return 2

	default:
		return 0 // business errors
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// CodeOf returns the code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var std *StandardError
	if stderrors.As(err, &std) {
		return std.Code
	}
	return ErrCodeInternal
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "UNKNOWN_"):
		return "CATALOG"
	case strings.Contains(codeStr, "CALCULATION") && code != ErrCodeDuplicateCalculation:
		return "CALCULATION"
	case strings.Contains(codeStr, "DATABASE") || code == ErrCodeDuplicateCalculation:
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
