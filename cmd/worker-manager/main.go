// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"roi-workers/internal/api"
	"roi-workers/internal/common/camunda"
	"roi-workers/internal/common/config"
	"roi-workers/internal/common/database"
	"roi-workers/internal/common/logger"
	"roi-workers/internal/common/metrics"
	"roi-workers/internal/common/observability"
	"roi-workers/internal/roi/engine"

	cr "roi-workers/internal/workers/roi/calculate-roi"
	cl "roi-workers/internal/workers/roi/catalog-lookup"
	ic "roi-workers/internal/workers/roi/index-calculation"
	rc "roi-workers/internal/workers/roi/record-calculation"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	log := logger.FromConfig(cfg.Logging).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})
	zapLog := logger.Zap(log)
	defer zapLog.Sync()

	log.Info("starting worker manager", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name, prometheus.DefaultRegisterer)
	defer obs.Shutdown()
	defer metrics.AddJobObserver(obs)()

	// --- Engine (built once, shared by every worker and the API) ---
	rulesCfg, err := cfg.ROI.RulesConfig()
	if err != nil {
		zapLog.Fatal("invalid rules config", zap.Error(err))
	}
	cat, err := cfg.ROI.Catalog()
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err))
	}
	eng, err := engine.New(cat, rulesCfg)
	if err != nil {
		zapLog.Fatal("engine init failed", zap.Error(err))
	}
	log.Info("roi engine ready", map[string]interface{}{
		"industries":  cat.Len(),
		"catalogPath": cfg.ROI.CatalogPath,
	})

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ClientConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	log.Info("zeebe client connected", nil)

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		return pg.Migrate(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected", nil)

	// --- Init Elasticsearch with retry ---
	var es *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := es.Ping(ctx); err != nil {
			return err
		}
		return es.EnsureIndex(ctx, cfg.ROI.IndexName)
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	log.Info("elasticsearch connected", map[string]interface{}{"index": cfg.ROI.IndexName})

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("redis connected", nil)

	// --- Register Workers ---
	workers, err := startWorkers(cfg, zeebe, eng, obs, pg, rdb, es, log)
	if err != nil {
		zapLog.Fatal("worker registration failed", zap.Error(err))
	}

	// --- API, Health & Metrics Server ---
	handlers := api.NewHandlers(eng, obs, log, map[string]api.ReadinessCheck{
		"zeebe":         zeebe.HealthCheck,
		"postgres":      pg.Ping,
		"redis":         rdb.Ping,
		"elasticsearch": es.Ping,
	})
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           api.NewRouter(cfg.HTTP.Mode, handlers),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("http server listening", map[string]interface{}{"address": cfg.HTTP.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh

	log.Info("shutdown signal received, stopping workers", map[string]interface{}{"signal": sig.String()})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	for _, w := range workers {
		w.Stop()
	}
	if err := zeebe.Close(); err != nil {
		log.Error("error closing zeebe client", map[string]interface{}{"error": err.Error()})
	}

	log.Info("worker manager stopped gracefully", nil)
}

func startWorkers(
	cfg *config.Config,
	zeebe *camunda.Client,
	eng *engine.Engine,
	obs *observability.Observability,
	pg *database.PostgresClient,
	rdb *database.RedisClient,
	es *database.ElasticsearchClient,
	log logger.Logger,
) ([]*camunda.Worker, error) {
	var workers []*camunda.Worker
	start := func(taskType string, handler camunda.JobHandler) {
		if w := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, log); w != nil {
			workers = append(workers, w)
		}
	}

	calc, err := cr.NewHandler(cr.ConfigFrom(config.GetWorkerConfig(cfg, cr.TaskType)), eng, obs, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cr.TaskType, err)
	}
	start(cr.TaskType, calc)

	lookup, err := cl.NewHandler(cl.LoadConfig(), eng.Catalog(), log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cl.TaskType, err)
	}
	start(cl.TaskType, lookup)

	record, err := rc.NewHandler(rc.ConfigFrom(config.GetWorkerConfig(cfg, rc.TaskType), cfg.ROI), eng, pg.GetDB(), rdb.GetClient(), log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rc.TaskType, err)
	}
	start(rc.TaskType, record)

	index, err := ic.NewHandler(ic.ConfigFrom(config.GetWorkerConfig(cfg, ic.TaskType), cfg.ROI), eng, es.Client, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ic.TaskType, err)
	}
	start(ic.TaskType, index)

	log.Info("workers registered", map[string]interface{}{"count": len(workers)})
	return workers, nil
}
