package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadflow_backend/internal/leads/transport"

	"github.com/redis/go-redis/v9"
)

// Import job states.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

const jobKeyPrefix = "leads:import:job:"

// ErrJobNotFound is returned for unknown or expired job ids.
var ErrJobNotFound = errors.New("import job not found")

// ImportJob is the stored status of an asynchronous import.
type ImportJob struct {
	ID         string                    `json:"id"`
	Status     string                    `json:"status"`
	FileName   string                    `json:"fileName"`
	Result     *transport.ImportResponse `json:"result,omitempty"`
	Error      string                    `json:"error,omitempty"`
	CreatedAt  time.Time                 `json:"createdAt"`
	FinishedAt *time.Time                `json:"finishedAt,omitempty"`
}

// JobStore keeps import job status in Redis with a TTL.
type JobStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
	now func() time.Time
}

// NewJobStore creates a job store. A ttl <= 0 keeps jobs for a day.
func NewJobStore(rdb redis.UniversalClient, ttl time.Duration) *JobStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobStore{rdb: rdb, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores a new queued job.
func (s *JobStore) Create(ctx context.Context, id, fileName string) (ImportJob, error) {
	job := ImportJob{ID: id, Status: JobQueued, FileName: fileName, CreatedAt: s.now()}
	return job, s.save(ctx, job)
}

// Get returns a job or ErrJobNotFound.
func (s *JobStore) Get(ctx context.Context, id string) (ImportJob, error) {
	raw, err := s.rdb.Get(ctx, jobKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return ImportJob{}, ErrJobNotFound
	}
	if err != nil {
		return ImportJob{}, fmt.Errorf("get import job: %w", err)
	}

	var job ImportJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return ImportJob{}, fmt.Errorf("decode import job: %w", err)
	}
	return job, nil
}

// MarkRunning moves a job to running.
func (s *JobStore) MarkRunning(ctx context.Context, id string) error {
	return s.update(ctx, id, func(job *ImportJob) {
		job.Status = JobRunning
		job.Error = ""
	})
}

// Complete stores the import result.
func (s *JobStore) Complete(ctx context.Context, id string, result transport.ImportResponse) error {
	return s.update(ctx, id, func(job *ImportJob) {
		now := s.now()
		job.Status = JobCompleted
		job.Result = &result
		job.FinishedAt = &now
	})
}

// Fail records a terminal error.
func (s *JobStore) Fail(ctx context.Context, id string, cause error) error {
	return s.update(ctx, id, func(job *ImportJob) {
		now := s.now()
		job.Status = JobFailed
		job.Error = cause.Error()
		job.FinishedAt = &now
	})
}

func (s *JobStore) update(ctx context.Context, id string, mutate func(*ImportJob)) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	mutate(&job)
	return s.save(ctx, job)
}

func (s *JobStore) save(ctx context.Context, job ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode import job: %w", err)
	}
	if err := s.rdb.Set(ctx, jobKeyPrefix+job.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save import job: %w", err)
	}
	return nil
}
