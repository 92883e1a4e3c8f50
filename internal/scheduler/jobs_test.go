package scheduler

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func newJobStore(t *testing.T) (*JobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewJobStore(rdb, time.Hour), mr
}

func TestJobStoreLifecycle(t *testing.T) {
	store, mr := newJobStore(t)
	ctx := context.Background()

	job, err := store.Create(ctx, "job-1", "leads.csv")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Status != JobQueued {
		t.Fatalf("expected queued, got %s", job.Status)
	}
	if ttl := mr.TTL(jobKeyPrefix + "job-1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	if err := store.MarkRunning(ctx, "job-1"); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	if err := store.Complete(ctx, "job-1", transport.ImportResponse{ImportedCount: 3}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != JobCompleted || got.Result == nil || got.Result.ImportedCount != 3 || got.FinishedAt == nil {
		t.Fatalf("unexpected job %+v", got)
	}
}

func TestJobStoreMissingJob(t *testing.T) {
	store, mr := newJobStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	if _, err := store.Create(context.Background(), "short", "a.csv"); err != nil {
		t.Fatalf("create: %v", err)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := store.Get(context.Background(), "short"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected expired job to be gone, got %v", err)
	}
}

type fakeImporter struct {
	got    string
	source string
	actor  *uuid.UUID
	err    error
}

func (f *fakeImporter) ImportCSV(_ context.Context, r io.Reader, source string, actorID *uuid.UUID) (transport.ImportResponse, error) {
	data, _ := io.ReadAll(r)
	f.got = string(data)
	f.source = source
	f.actor = actorID
	if f.err != nil {
		return transport.ImportResponse{}, f.err
	}
	return transport.ImportResponse{ImportedCount: strings.Count(f.got, "\n") - 1}, nil
}

func TestWorkerImportsInlinePayload(t *testing.T) {
	store, _ := newJobStore(t)
	imp := &fakeImporter{}
	w := newWorker(imp, nil, store, logger.Discard())
	ctx := context.Background()

	if _, err := store.Create(ctx, "job-2", "leads.csv"); err != nil {
		t.Fatalf("create: %v", err)
	}
	actor := uuid.New()
	task, err := NewLeadImportTask(LeadImportPayload{
		JobID:    "job-2",
		FileName: "leads.csv",
		Content:  []byte("email\na@x.com\nb@x.com\n"),
		ActorID:  actor.String(),
	})
	if err != nil {
		t.Fatalf("task: %v", err)
	}

	if err := w.handleLeadImport(ctx, task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if imp.source != "leads.csv" || imp.actor == nil || *imp.actor != actor {
		t.Fatalf("unexpected importer call source=%q actor=%v", imp.source, imp.actor)
	}

	job, _ := store.Get(ctx, "job-2")
	if job.Status != JobCompleted || job.Result.ImportedCount != 2 {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestWorkerFailsJobOnBadFile(t *testing.T) {
	store, _ := newJobStore(t)
	imp := &fakeImporter{err: apperr.BadRequest("csv file is empty")}
	w := newWorker(imp, nil, store, logger.Discard())
	ctx := context.Background()

	if _, err := store.Create(ctx, "job-3", "empty.csv"); err != nil {
		t.Fatalf("create: %v", err)
	}
	task, _ := NewLeadImportTask(LeadImportPayload{JobID: "job-3", FileName: "empty.csv"})

	err := w.handleLeadImport(ctx, task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	job, _ := store.Get(ctx, "job-3")
	if job.Status != JobFailed || job.Error != "csv file is empty" {
		t.Fatalf("unexpected job %+v", job)
	}
}
