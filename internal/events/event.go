// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadflow_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewBaseEventAt = events.NewBaseEventAt
)

// AllEvents subscribes a handler to every event.
const AllEvents = events.AllEvents

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a lead is created directly (not by import).
type LeadCreated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Email  string    `json:"email"`
	Status string    `json:"status"`
	Score  int       `json:"score"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadUpdated is published after any field edit on a lead.
type LeadUpdated struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	ChangedFields []string  `json:"changedFields"`
	PreviousScore int       `json:"previousScore"`
	Score         int       `json:"score"`
}

func (e LeadUpdated) EventName() string { return "leads.lead.updated" }

// LeadStageChanged is published when a lead's status moves to another stage.
type LeadStageChanged struct {
	BaseEvent
	LeadID    uuid.UUID  `json:"leadId"`
	FromStage string     `json:"fromStage"`
	ToStage   string     `json:"toStage"`
	ActorID   *uuid.UUID `json:"actorId,omitempty"`
}

func (e LeadStageChanged) EventName() string { return "leads.lead.stage_changed" }

// LeadDeleted is published after a hard delete.
type LeadDeleted struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Email  string    `json:"email"`
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }

// LeadsImported is published after a bulk import commit, even when nothing was imported.
type LeadsImported struct {
	BaseEvent
	Source        string      `json:"source"`
	LeadIDs       []uuid.UUID `json:"leadIds"`
	ImportedCount int         `json:"importedCount"`
	SkippedCount  int         `json:"skippedCount"`
	InvalidCount  int         `json:"invalidCount"`
}

func (e LeadsImported) EventName() string { return "leads.import.completed" }

// ScoringConfigUpdated is published once per re-score sweep.
type ScoringConfigUpdated struct {
	BaseEvent
	ConfigVersion uint64 `json:"configVersion"`
	ActiveWeight  int    `json:"activeWeight"`
	Rescored      int    `json:"rescored"`
	Changed       int    `json:"changed"`
	// ConfigChanged is false for an explicit rescore with the current configuration.
	ConfigChanged bool `json:"configChanged"`
}

func (e ScoringConfigUpdated) EventName() string { return "leads.scoring.config_updated" }

// =============================================================================
// Pipeline Domain Events
// =============================================================================

// PipelineStagesChanged is published after any stage create, update, delete or reorder.
type PipelineStagesChanged struct {
	BaseEvent
	Stages []string `json:"stages"`
}

func (e PipelineStagesChanged) EventName() string { return "pipeline.stages.changed" }
