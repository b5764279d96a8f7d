package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roi-workers/internal/common/config"
)

// ==========================
// PostgreSQL
// ==========================

func TestPostgres_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS roi_calculations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS roi_calculations_industry_idx`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS audit_log`).WillReturnResult(sqlmock.NewResult(0, 0))

	client := &PostgresClient{DB: db}
	require.NoError(t, client.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_MigrateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS roi_calculations`).WillReturnError(assert.AnError)

	client := &PostgresClient{DB: db}
	err = client.Migrate(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNewPostgres_DoesNotDial(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host: "127.0.0.1", Port: 1, Database: "roi", User: "roi", SSLMode: "disable",
		MaxConnections: 2, MaxIdle: 1,
	})
	require.NoError(t, err)
	assert.NotNil(t, client.GetDB())
	assert.NoError(t, client.Close())
}

// ==========================
// Redis
// ==========================

func TestRedis_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.ErrorIs(t, err, ErrRedisAddressMissing)
}

func TestNewRedis_PoolSize(t *testing.T) {
	client, err := NewRedis(config.RedisConfig{Address: "localhost:6379", PoolSize: 32})
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, 32, client.Client.Options().PoolSize)

	fallback, err := NewRedis(config.RedisConfig{Address: "localhost:6379"})
	require.NoError(t, err)
	defer fallback.Close()
	assert.Equal(t, 10, fallback.Client.Options().PoolSize)
}

// ==========================
// Elasticsearch
// ==========================

type fakeES struct {
	mu       sync.Mutex
	exists   bool
	requests []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodHead:
		if f.exists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut:
		f.exists = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func TestElasticsearch_PingAndEnsureIndex(t *testing.T) {
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx))
	require.NoError(t, client.EnsureIndex(ctx, "roi-calculations"))
	require.NoError(t, client.EnsureIndex(ctx, "roi-calculations"))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []string{
		"HEAD /",
		"HEAD /roi-calculations",
		"PUT /roi-calculations",
		"HEAD /roi-calculations",
	}, fake.requests)
}
