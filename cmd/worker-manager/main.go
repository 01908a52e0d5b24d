// cmd/worker-manager/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsclients "application-workers/internal/common/aws"
	"application-workers/internal/common/camunda"
	"application-workers/internal/common/config"
	"application-workers/internal/common/database"
	"application-workers/internal/common/logger"
	"application-workers/internal/common/observability"
	"application-workers/internal/lifecycle"
	"application-workers/internal/search"
	"application-workers/internal/store"

	car "application-workers/internal/workers/application/create-application-record"
	la "application-workers/internal/workers/application/list-applications"
	na "application-workers/internal/workers/application/nudge-application"
	sa "application-workers/internal/workers/application/search-applications"
	sn "application-workers/internal/workers/application/send-notification"
	saf "application-workers/internal/workers/application/submit-application-feedback"
	ua "application-workers/internal/workers/application/update-application"
	vad "application-workers/internal/workers/application/validate-application-data"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = operation()
		if err == nil {
			if attempt > 1 {
				log.Info("Operation succeeded after retry", zap.String("operation", operationName), zap.Int("attempt", attempt))
			}
			return nil
		}

		if attempt < maxRetries {
			log.Warn("Operation failed, retrying",
				zap.String("operation", operationName),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.Observability.ServiceName)
	if err != nil {
		zapLog.Fatal("Failed to initialize observability", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	tp, err := observability.NewTracerProvider(cfg.Observability)
	if err != nil {
		zapLog.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer observability.ShutdownTracer(context.Background(), tp)

	// --- Infrastructure ---
	var camundaClient *camunda.Client
	if err := retryWithBackoff(func() error {
		c, err := camunda.NewClient(cfg.Camunda)
		if err != nil {
			return err
		}
		camundaClient = c
		return nil
	}, 5, 2*time.Second, zapLog, "Zeebe connection"); err != nil {
		zapLog.Fatal("Failed to connect to Zeebe", zap.Error(err))
	}
	defer camundaClient.Close()
	zeebeClient := camundaClient.GetClient()

	ctx := context.Background()

	var db *sql.DB
	var pg *database.PostgresClient
	if cfg.Lifecycle.StoreDriver == "postgres" {
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("Failed to create PostgreSQL client", zap.Error(err))
		}
		if err := retryWithBackoff(func() error {
			return pg.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "PostgreSQL connection"); err != nil {
			zapLog.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer pg.Close()
		db = pg.DB

		if err := store.EnsureSchema(ctx, db); err != nil {
			zapLog.Fatal("Failed to apply schema", zap.Error(err))
		}
	}

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("Failed to create Elasticsearch client", zap.Error(err))
	}
	if err := retryWithBackoff(func() error {
		return esClient.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection"); err != nil {
		zapLog.Fatal("Failed to connect to Elasticsearch", zap.Error(err))
	}

	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("Failed to create Redis client", zap.Error(err))
	}
	if err := retryWithBackoff(func() error {
		return redisClient.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis connection"); err != nil {
		zapLog.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	awsCfg, err := awsclients.LoadConfig(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("Failed to load AWS config", zap.Error(err))
	}

	// --- Domain wiring ---
	var (
		appStore store.Store
		audit    store.AuditLog
		users    store.UserDirectory
	)
	if db != nil {
		appStore = store.NewPostgresStore(db)
		audit = store.NewPostgresAuditLog(db)
		users = store.NewPostgresUserDirectory(db)
	} else {
		zapLog.Warn("Using in-memory application store")
		appStore = store.NewMemoryStore()
		audit = store.NewMemoryAuditLog()
		users = store.NewMemoryUserDirectory()
	}

	if lock := cfg.Lifecycle.DistributedLock; lock.Enabled {
		appStore = store.NewLockingStore(appStore, redisClient.GetClient(), store.LockOptions{
			TTL:   lock.TTL,
			Wait:  lock.Wait,
			Retry: lock.Retry,
		}, log)
	}

	engine := lifecycle.NewEngine(appStore, lifecycle.SystemClock{}, lifecycle.Options{
		Policy: lifecycle.Policy{
			EditCooldown:  cfg.Lifecycle.EditCooldown,
			NudgeCooldown: cfg.Lifecycle.NudgeCooldown,
		},
		InitialScore: cfg.Lifecycle.InitialScore,
		NudgeBonus:   cfg.Lifecycle.NudgeBonus,
	}, log)

	indexer := search.NewIndexer(esClient.Client, cfg.Search.Index, cfg.Search.Refresh, log)
	if err := indexer.EnsureIndex(ctx); err != nil {
		zapLog.Warn("Failed to ensure search index", zap.Error(err))
	}
	searcher := search.NewSearcher(esClient.Client, cfg.Search.Index)

	reviewCycleStart, err := cfg.Lifecycle.ReviewCycleStartTime()
	if err != nil {
		zapLog.Fatal("Invalid review cycle start", zap.Error(err))
	}

	timeoutFor := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	// --- Register Workers ---
	var workers []*camunda.CamundaWorker
	register := func(taskType string, handler camunda.JobHandler) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		wcfg := config.GetWorkerConfig(cfg, taskType)
		w := camunda.NewWorker(zeebeClient, taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       timeoutFor(taskType),
			Name:          cfg.App.Name,
		}, handler, log, obs)
		w.Start()
		workers = append(workers, w)
	}

	register(vad.TaskType, vad.NewHandler(&vad.Config{Timeout: timeoutFor(vad.TaskType)}, log))

	register(car.TaskType, car.NewHandler(
		&car.Config{
			Timeout:          timeoutFor(car.TaskType),
			ReviewCycleStart: reviewCycleStart,
		},
		engine, audit, indexer, log,
	))

	register(ua.TaskType, ua.NewHandler(&ua.Config{Timeout: timeoutFor(ua.TaskType)}, engine, audit, indexer, log))
	register(na.TaskType, na.NewHandler(&na.Config{Timeout: timeoutFor(na.TaskType)}, engine, audit, indexer, log))
	register(saf.TaskType, saf.NewHandler(&saf.Config{Timeout: timeoutFor(saf.TaskType)}, engine, audit, indexer, log))

	register(la.TaskType, la.NewHandler(
		&la.Config{
			Timeout:         timeoutFor(la.TaskType),
			DefaultPageSize: la.DefaultPageSize,
			MaxPageSize:     la.MaxPageSize,
		},
		appStore, log,
	))

	register(sa.TaskType, sa.NewHandler(
		&sa.Config{
			Timeout: timeoutFor(sa.TaskType),
			Index:   cfg.Search.Index,
		},
		searcher, log,
	))

	register(sn.TaskType, sn.NewHandler(
		&sn.Config{
			EmailEnabled:     cfg.Notifications.Email.Enabled,
			SMSEnabled:       cfg.Notifications.SMS.Enabled,
			ReviewerTopicARN: cfg.Notifications.SMS.ReviewerTopic,
			Timeout:          timeoutFor(sn.TaskType),
		},
		users,
		awsclients.NewSESClient(awsCfg, cfg.Notifications.Email.FromEmail),
		awsclients.NewSNSClient(awsCfg),
		log,
	))

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		probe := func(name string, ping func(context.Context) error) {
			if err := ping(ctx); err != nil {
				checks[name] = err.Error()
				ready = false
				return
			}
			checks[name] = "ok"
		}
		probe("zeebe", camundaClient.HealthCheck)
		if pg != nil {
			probe("postgres", pg.Ping)
		}
		probe("elasticsearch", esClient.Ping)
		probe("redis", redisClient.Ping)

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeStatus(w, status, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Server.Address, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

func writeStatus(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
