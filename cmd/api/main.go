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

	"leadflow_backend/internal/adapters"
	"leadflow_backend/internal/adapters/storage"
	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/http/router"
	"leadflow_backend/internal/leads"
	"leadflow_backend/internal/notification"
	"leadflow_backend/internal/pipeline"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/migrations"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/db"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"
	"leadflow_backend/platform/queue"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	pool := initDatabase(ctx, cfg, log)
	if pool != nil {
		defer pool.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	pipelineModule, err := pipeline.NewModule(ctx, pool, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize pipeline module", "error", err)
		panic("failed to initialize pipeline module: " + err.Error())
	}

	leadsModule, err := leads.NewModule(ctx, pool, adapters.NewPipelineStageProvider(pipelineModule.Service()), eventBus, val, cfg, log, appMetrics)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}
	leadSvc := leadsModule.ManagementService()

	// Wire stage usage: pipeline → leads (rename/delete protection)
	pipelineModule.Service().SetLeadCounter(adapters.NewLeadStageUsage(leadSvc))

	// Stored scores may predate the active configuration
	if sweep, err := leadSvc.Rescore(ctx); err != nil {
		log.Error("startup rescore failed", "error", err)
	} else {
		log.Info("startup rescore complete", "rescored", sweep.Rescored, "changed", sweep.Changed)
	}

	var forwarder *notification.Forwarder
	if cfg.IsEventForwardingEnabled() {
		publisher, err := queue.NewPublisher(cfg.GetAMQPURL(), cfg.GetAMQPExchange())
		if err != nil {
			log.Error("failed to connect to rabbitmq; event forwarding disabled", "error", err)
		} else {
			defer func() { _ = publisher.Close() }()
			forwarder = notification.NewForwarder(publisher, appMetrics)
			log.Info("event forwarding enabled", "exchange", cfg.GetAMQPExchange())
		}
	}
	notificationModule := notification.New(forwarder, log)
	notificationModule.RegisterHandlers(eventBus)
	defer notificationModule.Close()

	worker, closeScheduler := initImportJobs(ctx, cfg, leadsModule, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Metrics:  appMetrics,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			pipelineModule,
			leadsModule,
			notificationModule,
		},
	}
	if pool != nil {
		app.Health = pool
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if worker != nil {
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		notificationModule.Close()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	eventBus.Wait()
}

// initDatabase applies migrations and opens the pool. Without DATABASE_URL the
// service runs purely in memory and nil is returned.
func initDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) *pgxpool.Pool {
	if !cfg.IsDatabaseEnabled() {
		log.Warn("DATABASE_URL not configured; running in memory only")
		return nil
	}

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	log.Info("database connection established")
	return pool
}

// initImportJobs wires asynchronous CSV imports when Redis is configured.
func initImportJobs(ctx context.Context, cfg *config.Config, leadsModule *leads.Module, log *logger.Logger) (*scheduler.Worker, func()) {
	if !cfg.IsSchedulerEnabled() {
		log.Warn("REDIS_URL not configured; asynchronous imports disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize import job client", "error", err)
		return nil, nil
	}
	rdb, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		_ = client.Close()
		log.Error("failed to initialize import job store", "error", err)
		return nil, nil
	}
	jobs := scheduler.NewJobStore(rdb, cfg.GetImportJobTTL())

	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage; import files travel inline", "error", err)
		} else {
			ensureBucket(ctx, log, minioSvc, "lead imports", cfg.GetMinioBucketLeadImports())
			storageSvc = minioSvc
		}
	}

	worker, err := scheduler.NewWorker(cfg, leadsModule.ManagementService(), storageSvc, jobs, log)
	if err != nil {
		_ = client.Close()
		_ = rdb.Close()
		log.Error("failed to initialize import worker", "error", err)
		return nil, nil
	}

	leadsModule.SetImportJobQueue(adapters.NewLeadImportQueue(jobs, client, storageSvc, cfg.GetMinioBucketLeadImports()))
	log.Info("asynchronous imports enabled", "queue", cfg.GetAsynqQueueName(), "objectStorage", storageSvc != nil)

	return worker, func() {
		_ = client.Close()
		_ = rdb.Close()
	}
}

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
