package adapters

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

type memJobs struct {
	jobs map[string]scheduler.ImportJob
}

func newMemJobs() *memJobs { return &memJobs{jobs: map[string]scheduler.ImportJob{}} }

func (m *memJobs) Create(_ context.Context, id, fileName string) (scheduler.ImportJob, error) {
	job := scheduler.ImportJob{ID: id, Status: scheduler.JobQueued, FileName: fileName, CreatedAt: time.Now()}
	m.jobs[id] = job
	return job, nil
}

func (m *memJobs) Get(_ context.Context, id string) (scheduler.ImportJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return scheduler.ImportJob{}, scheduler.ErrJobNotFound
	}
	return job, nil
}

func (m *memJobs) Fail(_ context.Context, id string, cause error) error {
	job := m.jobs[id]
	job.Status = scheduler.JobFailed
	job.Error = cause.Error()
	m.jobs[id] = job
	return nil
}

type recordingEnqueuer struct {
	payloads []scheduler.LeadImportPayload
	err      error
}

func (r *recordingEnqueuer) EnqueueLeadImport(_ context.Context, p scheduler.LeadImportPayload) error {
	if r.err != nil {
		return r.err
	}
	r.payloads = append(r.payloads, p)
	return nil
}

type fakeStorage struct {
	uploaded map[string]string
	deleted  []string
}

func (f *fakeStorage) UploadFile(_ context.Context, bucket, folder, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	data, _ := io.ReadAll(reader)
	key := folder + "/" + fileName
	f.uploaded[bucket+"/"+key] = string(data)
	return key, nil
}

func (f *fakeStorage) DownloadFile(context.Context, string, string) (io.ReadCloser, error) {
	return nil, errors.New("not used")
}

func (f *fakeStorage) DeleteObject(_ context.Context, bucket, fileKey string) error {
	f.deleted = append(f.deleted, bucket+"/"+fileKey)
	return nil
}

func (f *fakeStorage) EnsureBucketExists(context.Context, string) error { return nil }

func (f *fakeStorage) ValidateContentType(contentType string) error {
	if contentType == "image/png" {
		return errors.New("content type not allowed")
	}
	return nil
}

func (f *fakeStorage) ValidateFileSize(size int64) error {
	if size > 100 {
		return errors.New("too large")
	}
	return nil
}

func TestLeadImportQueueInlineContent(t *testing.T) {
	jobs := newMemJobs()
	enq := &recordingEnqueuer{}
	q := NewLeadImportQueue(jobs, enq, nil, "")
	actor := uuid.New()

	job, err := q.Submit(context.Background(), ports.ImportJobRequest{
		FileName: "leads.csv",
		Body:     strings.NewReader("email\na@x.com\n"),
		ActorID:  &actor,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.Status != scheduler.JobQueued {
		t.Fatalf("expected queued, got %s", job.Status)
	}
	if len(enq.payloads) != 1 {
		t.Fatalf("expected one enqueued task, got %d", len(enq.payloads))
	}
	p := enq.payloads[0]
	if p.JobID != job.ID || string(p.Content) != "email\na@x.com\n" || p.ActorID != actor.String() || p.FileKey != "" {
		t.Fatalf("unexpected payload %+v", p)
	}

	got, err := q.Get(context.Background(), job.ID)
	if err != nil || got.ID != job.ID {
		t.Fatalf("get: %+v %v", got, err)
	}
}

func TestLeadImportQueueUploadsToStorage(t *testing.T) {
	jobs := newMemJobs()
	enq := &recordingEnqueuer{}
	store := &fakeStorage{uploaded: map[string]string{}}
	q := NewLeadImportQueue(jobs, enq, store, "lead-imports")

	_, err := q.Submit(context.Background(), ports.ImportJobRequest{
		FileName:    "leads.csv",
		ContentType: "text/csv",
		Size:        14,
		Body:        strings.NewReader("email\na@x.com\n"),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	p := enq.payloads[0]
	if p.Bucket != "lead-imports" || p.FileKey != "imports/leads.csv" || p.Content != nil {
		t.Fatalf("unexpected payload %+v", p)
	}
	if store.uploaded["lead-imports/imports/leads.csv"] != "email\na@x.com\n" {
		t.Fatalf("file not uploaded: %v", store.uploaded)
	}
}

func TestLeadImportQueueRejectsBadUploads(t *testing.T) {
	store := &fakeStorage{uploaded: map[string]string{}}
	q := NewLeadImportQueue(newMemJobs(), &recordingEnqueuer{}, store, "b")

	_, err := q.Submit(context.Background(), ports.ImportJobRequest{FileName: "x.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for content type, got %v", err)
	}
	_, err = q.Submit(context.Background(), ports.ImportJobRequest{FileName: "x.csv", Size: 500, Body: strings.NewReader("x")})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for size, got %v", err)
	}

	inline := NewLeadImportQueue(newMemJobs(), &recordingEnqueuer{}, nil, "")
	_, err = inline.Submit(context.Background(), ports.ImportJobRequest{FileName: "e.csv", Body: strings.NewReader("")})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for empty file, got %v", err)
	}
}

func TestLeadImportQueueEnqueueFailureMarksJobFailed(t *testing.T) {
	jobs := newMemJobs()
	store := &fakeStorage{uploaded: map[string]string{}}
	q := NewLeadImportQueue(jobs, &recordingEnqueuer{err: errors.New("redis down")}, store, "b")
	q.newID = func() string { return "fixed" }

	_, err := q.Submit(context.Background(), ports.ImportJobRequest{FileName: "l.csv", Size: 3, Body: strings.NewReader("a\n1")})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if jobs.jobs["fixed"].Status != scheduler.JobFailed {
		t.Fatalf("expected failed job, got %+v", jobs.jobs["fixed"])
	}
	if len(store.deleted) != 1 || store.deleted[0] != "b/imports/l.csv" {
		t.Fatalf("expected uploaded file to be removed, got %v", store.deleted)
	}
}

func TestLeadImportQueueUnknownJob(t *testing.T) {
	q := NewLeadImportQueue(newMemJobs(), &recordingEnqueuer{}, nil, "")
	if _, err := q.Get(context.Background(), "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type staticNames []string

func (s staticNames) Names(context.Context) []string { return s }

type countByStage map[string]int

func (c countByStage) CountLeadsInStage(_ context.Context, stage string) int { return c[stage] }

func TestStageAdapters(t *testing.T) {
	provider := NewPipelineStageProvider(staticNames{"New", "Won"})
	set, err := provider.StageNames(context.Background())
	if err != nil || set.First() != "New" || !set.Contains("won") {
		t.Fatalf("unexpected stage set %v %v", set, err)
	}

	usage := NewLeadStageUsage(countByStage{"New": 3})
	if usage.CountLeadsInStage(context.Background(), "New") != 3 {
		t.Fatal("expected count to be delegated")
	}
}
