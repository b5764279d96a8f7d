package recordcalculation

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roi-workers/internal/common/config"
	"roi-workers/internal/common/errors"
	"roi-workers/internal/common/logger"
	"roi-workers/internal/models"
	"roi-workers/internal/roi/catalog"
	"roi-workers/internal/roi/engine"
	"roi-workers/internal/roi/rules"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(catalog.Default(), rules.DefaultConfig())
	require.NoError(t, err)
	return eng
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func createTestHandler(t *testing.T, db *sql.DB, rdb *redis.Client) *Handler {
	t.Helper()
	h, err := NewHandler(LoadConfig(), newTestEngine(t), db, rdb, logger.NewTestLogger(t))
	require.NoError(t, err)
	h.now = func() time.Time { return fixedNow }
	return h
}

func createTestInput(t *testing.T) *Input {
	res, err := newTestEngine(t).Calculate("All Industries", 50000, []string{"AI Workflow Automation"})
	require.NoError(t, err)
	return &Input{
		RequestID:         "req-1",
		LeadEmail:         "lead@example.com",
		Industry:          "All Industries",
		InvestmentAmount:  50000,
		SelectedSolutions: []string{"AI Workflow Automation"},
		ROI:               res,
	}
}

func expectInsert(mock sqlmock.Sqlmock, rowsAffected int64) *sqlmock.ExpectedExec {
	return mock.ExpectExec(`INSERT INTO roi_calculations`).
		WithArgs(
			sqlmock.AnyArg(), // id
			"req-1",
			sqlmock.AnyArg(), // lead_email
			"All Industries",
			50000.0,
			sqlmock.AnyArg(), // selected_solutions JSON
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			35.0,
			sqlmock.AnyArg(),
			4.2,
			sqlmock.AnyArg(), // result JSON
			fixedNow,
		).
		WillReturnResult(sqlmock.NewResult(0, rowsAffected))
}

func expectAudit(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("roi_calculation_recorded", "roi_calculation", sqlmock.AnyArg(), sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

// ==========================
// Constructor Tests
// ==========================

func TestNewHandler_RequiresDependencies(t *testing.T) {
	db, _ := setupMockDB(t)
	_, rdb := setupMiniredis(t)

	_, err := NewHandler(nil, nil, db, rdb, logger.NewNoOpLogger())
	assert.ErrorIs(t, err, ErrMissingDependency)

	_, err = NewHandler(nil, newTestEngine(t), nil, rdb, logger.NewNoOpLogger())
	assert.ErrorIs(t, err, ErrMissingDependency)

	h, err := NewHandler(nil, newTestEngine(t), db, rdb, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, h.config.IdempotencyTTL)
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, rdb := setupMiniredis(t)
	h := createTestHandler(t, db, rdb)

	expectInsert(mock, 1)
	expectAudit(mock)

	out, err := h.Execute(context.Background(), createTestInput(t))
	require.NoError(t, err)

	assert.Equal(t, models.CalculationStatusRecorded, out.Status)
	assert.NotEmpty(t, out.CalculationID)
	assert.Equal(t, "2026-03-14T09:30:00Z", out.CreatedAt)

	stored, err := mr.Get("roi:calculation:req-1")
	require.NoError(t, err)
	assert.Equal(t, out.CalculationID, stored)
	assert.Equal(t, 24*time.Hour, mr.TTL("roi:calculation:req-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_RecomputesMissingResult(t *testing.T) {
	db, mock := setupMockDB(t)
	_, rdb := setupMiniredis(t)
	h := createTestHandler(t, db, rdb)

	expectInsert(mock, 1)
	expectAudit(mock)

	input := createTestInput(t)
	input.ROI = nil

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, models.CalculationStatusRecorded, out.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_AuditFailureIsNotFatal(t *testing.T) {
	db, mock := setupMockDB(t)
	_, rdb := setupMiniredis(t)
	h := createTestHandler(t, db, rdb)

	expectInsert(mock, 1)
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnError(stderrors.New("audit table locked"))

	out, err := h.Execute(context.Background(), createTestInput(t))
	require.NoError(t, err)
	assert.Equal(t, models.CalculationStatusRecorded, out.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_AlreadyRecorded(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, rdb := setupMiniredis(t)
	h := createTestHandler(t, db, rdb)

	require.NoError(t, mr.Set("roi:calculation:req-1", "calc-9"))

	out, err := h.Execute(context.Background(), createTestInput(t))
	require.NoError(t, err)
	assert.Equal(t, &Output{CalculationID: "calc-9", Status: models.CalculationStatusDuplicate}, out)

	// no database access for a redelivered job
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InFlightElsewhere(t *testing.T) {
	db, _ := setupMockDB(t)
	mr, rdb := setupMiniredis(t)
	h := createTestHandler(t, db, rdb)

	require.NoError(t, mr.Set("roi:calculation:req-1", pendingMarker))

	out, err := h.Execute(context.Background(), createTestInput(t))
	assert.Nil(t, out)
	assert.Equal(t, errors.ErrCodeDuplicateCalculation, errors.CodeOf(err))
}

func TestExecute_RowOutlivedKey(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, rdb := setupMiniredis(t)
	h := createTestHandler(t, db, rdb)

	expectInsert(mock, 0)
	mock.ExpectQuery(`SELECT id FROM roi_calculations WHERE request_id`).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("calc-old"))

	out, err := h.Execute(context.Background(), createTestInput(t))
	require.NoError(t, err)
	assert.Equal(t, "calc-old", out.CalculationID)
	assert.Equal(t, models.CalculationStatusDuplicate, out.Status)

	stored, err := mr.Get("roi:calculation:req-1")
	require.NoError(t, err)
	assert.Equal(t, "calc-old", stored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InsertFailureReleasesKey(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, rdb := setupMiniredis(t)
	h := createTestHandler(t, db, rdb)

	mock.ExpectExec(`INSERT INTO roi_calculations`).WillReturnError(stderrors.New("connection reset"))

	out, err := h.Execute(context.Background(), createTestInput(t))
	assert.Nil(t, out)

	var std *errors.StandardError
	require.True(t, stderrors.As(err, &std))
	assert.Equal(t, errors.ErrCodeDatabaseInsertFailed, std.Code)
	assert.True(t, std.Retryable)

	assert.False(t, mr.Exists("roi:calculation:req-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_RedisUnavailable(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, rmock := redismock.NewClientMock()
	h := createTestHandler(t, db, rdb)

	rmock.ExpectSetNX("roi:calculation:req-1", pendingMarker, 24*time.Hour).SetErr(stderrors.New("connection refused"))

	out, err := h.Execute(context.Background(), createTestInput(t))
	assert.Nil(t, out)
	assert.Equal(t, errors.ErrCodeCacheUnavailable, errors.CodeOf(err))

	assert.NoError(t, rmock.ExpectationsWereMet())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InvalidInput(t *testing.T) {
	db, _ := setupMockDB(t)
	mr, rdb := setupMiniredis(t)
	h := createTestHandler(t, db, rdb)

	tests := []struct {
		name  string
		input *Input
		code  errors.ErrorCode
	}{
		{"missing request id", &Input{Industry: "Retail"}, errors.ErrCodeInvalidInput},
		{"no result and no industry", &Input{RequestID: "req-2"}, errors.ErrCodeInvalidInput},
		{"unknown industry", &Input{RequestID: "req-3", Industry: "Space Mining"}, errors.ErrCodeUnknownIndustry},
		{
			"unknown solution",
			&Input{RequestID: "req-4", Industry: "Retail", SelectedSolutions: []string{"Fraud Detection"}},
			errors.ErrCodeUnknownSolution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), tt.input)
			assert.Nil(t, out)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}

	assert.Empty(t, mr.Keys())
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(
		configWorker(2500),
		configROI(60000),
	)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.IdempotencyTTL)
	assert.Equal(t, "roi:calculation:", cfg.KeyPrefix)
}

func configWorker(timeoutMs int) config.WorkerConfig {
	return config.WorkerConfig{Enabled: true, Timeout: timeoutMs}
}

func configROI(ttlMs int) config.ROIConfig {
	return config.ROIConfig{IdempotencyTTL: ttlMs}
}
