// Package ports defines consumer-driven interfaces for external dependencies.
// These interfaces are defined in the Leads domain based on what it needs,
// rather than what other domains choose to offer.
package ports

import (
	"context"
	"io"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/transport"

	"github.com/google/uuid"
)

// StageProvider supplies the current ordered pipeline stage names.
// The pipeline domain implements this through an adapter.
type StageProvider interface {
	StageNames(ctx context.Context) (domain.StageSet, error)
}

// StaticStages is a StageProvider over a fixed list. Used before the
// pipeline module is wired and in tests.
type StaticStages domain.StageSet

func (s StaticStages) StageNames(context.Context) (domain.StageSet, error) {
	return domain.StageSet(s), nil
}

// ImportJobRequest describes an uploaded CSV to import asynchronously.
type ImportJobRequest struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	ActorID     *uuid.UUID
}

// ImportJob is the status of an asynchronous import.
type ImportJob struct {
	ID         string
	Status     string
	FileName   string
	Result     *transport.ImportResponse
	Error      string
	CreatedAt  time.Time
	FinishedAt *time.Time
}

// ImportJobQueue accepts CSV files for background import and reports their status.
type ImportJobQueue interface {
	Submit(ctx context.Context, req ImportJobRequest) (ImportJob, error)
	Get(ctx context.Context, id string) (ImportJob, error)
}
