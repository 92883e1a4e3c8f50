package repository

import (
	"context"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/scoring"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// SnapshotReader provides lock-free read access to the committed lead state.
type SnapshotReader interface {
	Load() *Snapshot
}

// LeadWriter commits lead changes to the live store. Callers serialize writes.
type LeadWriter interface {
	Insert(leads ...domain.Lead) error
	Replace(lead domain.Lead) error
	Remove(id uuid.UUID) error
	ApplyConfig(cfg scoring.Config, rescored []domain.Lead, newVersion bool) (*Snapshot, error)
}

// LeadStore is the full in-memory store used by the mutation gateway.
type LeadStore interface {
	SnapshotReader
	LeadWriter
}

// ActivityLog is the append-only per-lead history.
type ActivityLog interface {
	Append(entry domain.ActivityEntry)
	List(leadID uuid.UUID) []domain.ActivityEntry
}

// Persister mirrors committed changes to durable storage. Every method is
// called while the gateway holds its write lock, before the in-memory commit.
type Persister interface {
	SaveLeads(ctx context.Context, leads []domain.Lead) error
	DeleteLead(ctx context.Context, id uuid.UUID) error
	SaveScoringConfig(ctx context.Context, cfg scoring.Config, changed []domain.Lead) error
	AppendActivity(ctx context.Context, entry domain.ActivityEntry) error
}

// Loader reads durable state at startup.
type Loader interface {
	LoadLeads(ctx context.Context) ([]domain.Lead, error)
	LoadScoringConfig(ctx context.Context) (scoring.Config, bool, error)
	LoadActivities(ctx context.Context) ([]domain.ActivityEntry, error)
}

// NopPersister discards everything. Used when no database is configured.
type NopPersister struct{}

func (NopPersister) SaveLeads(context.Context, []domain.Lead) error { return nil }
func (NopPersister) DeleteLead(context.Context, uuid.UUID) error   { return nil }
func (NopPersister) SaveScoringConfig(context.Context, scoring.Config, []domain.Lead) error {
	return nil
}
func (NopPersister) AppendActivity(context.Context, domain.ActivityEntry) error { return nil }
