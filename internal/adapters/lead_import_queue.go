package adapters

import (
	"bytes"
	"context"
	"errors"
	"io"

	"leadflow_backend/internal/adapters/storage"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

const importFolder = "imports"

// JobTracker is the job status store the queue writes to.
type JobTracker interface {
	Create(ctx context.Context, id, fileName string) (scheduler.ImportJob, error)
	Get(ctx context.Context, id string) (scheduler.ImportJob, error)
	Fail(ctx context.Context, id string, cause error) error
}

// LeadImportQueue implements the leads ImportJobQueue port on top of asynq.
// With object storage configured the upload is parked in a bucket and the
// task carries only its key; otherwise the file travels inline.
type LeadImportQueue struct {
	jobs     JobTracker
	enqueuer scheduler.LeadImportEnqueuer
	storage  storage.StorageService
	bucket   string
	newID    func() string
}

// NewLeadImportQueue creates the queue adapter. storageSvc may be nil.
func NewLeadImportQueue(jobs JobTracker, enqueuer scheduler.LeadImportEnqueuer, storageSvc storage.StorageService, bucket string) *LeadImportQueue {
	return &LeadImportQueue{
		jobs:     jobs,
		enqueuer: enqueuer,
		storage:  storageSvc,
		bucket:   bucket,
		newID:    func() string { return uuid.NewString() },
	}
}

// Submit stores the upload, records a queued job and enqueues the import task.
func (q *LeadImportQueue) Submit(ctx context.Context, req ports.ImportJobRequest) (ports.ImportJob, error) {
	payload := scheduler.LeadImportPayload{
		JobID:    q.newID(),
		FileName: req.FileName,
	}
	if req.ActorID != nil {
		payload.ActorID = req.ActorID.String()
	}

	if q.storage != nil {
		if err := q.storage.ValidateContentType(req.ContentType); err != nil {
			return ports.ImportJob{}, apperr.BadRequest(err.Error())
		}
		if err := q.storage.ValidateFileSize(req.Size); err != nil {
			return ports.ImportJob{}, apperr.BadRequest(err.Error())
		}
		key, err := q.storage.UploadFile(ctx, q.bucket, importFolder, req.FileName, req.ContentType, req.Body, req.Size)
		if err != nil {
			return ports.ImportJob{}, apperr.Wrap(apperr.KindInternal, "failed to store import file", err)
		}
		payload.Bucket = q.bucket
		payload.FileKey = key
	} else {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, req.Body); err != nil {
			return ports.ImportJob{}, apperr.Wrap(apperr.KindBadRequest, "failed to read import file", err)
		}
		if buf.Len() == 0 {
			return ports.ImportJob{}, apperr.BadRequest("csv file is empty")
		}
		payload.Content = buf.Bytes()
	}

	job, err := q.jobs.Create(ctx, payload.JobID, req.FileName)
	if err != nil {
		q.discard(ctx, payload)
		return ports.ImportJob{}, apperr.Wrap(apperr.KindInternal, "failed to create import job", err)
	}

	if err := q.enqueuer.EnqueueLeadImport(ctx, payload); err != nil {
		_ = q.jobs.Fail(ctx, payload.JobID, err)
		q.discard(ctx, payload)
		return ports.ImportJob{}, apperr.Wrap(apperr.KindInternal, "failed to enqueue import job", err)
	}

	return toPortJob(job), nil
}

// Get returns the job status.
func (q *LeadImportQueue) Get(ctx context.Context, id string) (ports.ImportJob, error) {
	job, err := q.jobs.Get(ctx, id)
	if errors.Is(err, scheduler.ErrJobNotFound) {
		return ports.ImportJob{}, apperr.NotFound("import job not found")
	}
	if err != nil {
		return ports.ImportJob{}, apperr.Wrap(apperr.KindInternal, "failed to load import job", err)
	}
	return toPortJob(job), nil
}

func (q *LeadImportQueue) discard(ctx context.Context, payload scheduler.LeadImportPayload) {
	if q.storage == nil || payload.FileKey == "" {
		return
	}
	_ = q.storage.DeleteObject(context.WithoutCancel(ctx), payload.Bucket, payload.FileKey)
}

func toPortJob(job scheduler.ImportJob) ports.ImportJob {
	return ports.ImportJob{
		ID:         job.ID,
		Status:     job.Status,
		FileName:   job.FileName,
		Result:     job.Result,
		Error:      job.Error,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
}

// Compile-time check.
var _ ports.ImportJobQueue = (*LeadImportQueue)(nil)
