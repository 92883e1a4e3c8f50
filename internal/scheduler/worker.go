package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"leadflow_backend/internal/adapters/storage"
	"leadflow_backend/internal/leads"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	importer leads.CSVImporter
	storage  storage.StorageService
	jobs     *JobStore
	log      *logger.Logger
}

// NewWorker creates the import worker. storageSvc may be nil when uploads
// travel inline in the task payload.
func NewWorker(cfg config.SchedulerConfig, importer leads.CSVImporter, storageSvc storage.StorageService, jobs *JobStore, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	// imports serialize on the lead store lock anyway
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(importer, storageSvc, jobs, log)
	w.server = server
	return w, nil
}

func newWorker(importer leads.CSVImporter, storageSvc storage.StorageService, jobs *JobStore, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:      mux,
		importer: importer,
		storage:  storageSvc,
		jobs:     jobs,
		log:      log,
	}
	mux.HandleFunc(TaskLeadImportCSV, w.handleLeadImport)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadImport(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadImportPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.jobs.MarkRunning(ctx, payload.JobID); err != nil {
		return err
	}

	body, err := w.open(ctx, payload)
	if err != nil {
		return err
	}
	defer body.Close()

	result, err := w.importer.ImportCSV(ctx, body, payload.FileName, parseActor(payload.ActorID))
	if err != nil {
		if apperr.Is(err, apperr.KindBadRequest) || apperr.Is(err, apperr.KindValidation) {
			_ = w.jobs.Fail(ctx, payload.JobID, err)
			w.cleanup(ctx, payload)
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		if retried, _ := asynq.GetRetryCount(ctx); maxed(ctx, retried) {
			_ = w.jobs.Fail(ctx, payload.JobID, err)
		}
		return err
	}

	if err := w.jobs.Complete(ctx, payload.JobID, result); err != nil {
		w.log.Error("failed to store import result", "jobId", payload.JobID, "error", err)
	}
	w.cleanup(ctx, payload)
	w.log.Info("lead import job completed", "jobId", payload.JobID, "imported", result.ImportedCount)
	return nil
}

func (w *Worker) open(ctx context.Context, payload LeadImportPayload) (io.ReadCloser, error) {
	if payload.FileKey == "" {
		return io.NopCloser(bytes.NewReader(payload.Content)), nil
	}
	if w.storage == nil {
		return nil, fmt.Errorf("%w: storage not configured for %s", asynq.SkipRetry, payload.FileKey)
	}
	return w.storage.DownloadFile(ctx, payload.Bucket, payload.FileKey)
}

func (w *Worker) cleanup(ctx context.Context, payload LeadImportPayload) {
	if payload.FileKey == "" || w.storage == nil {
		return
	}
	if err := w.storage.DeleteObject(ctx, payload.Bucket, payload.FileKey); err != nil {
		w.log.Warn("failed to delete processed import file", "fileKey", payload.FileKey, "error", err)
	}
}

func maxed(ctx context.Context, retried int) bool {
	limit, ok := asynq.GetMaxRetry(ctx)
	return ok && retried >= limit
}

func parseActor(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
