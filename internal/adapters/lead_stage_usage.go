package adapters

import (
	"context"

	"leadflow_backend/internal/leads"
	pipelinesvc "leadflow_backend/internal/pipeline/service"
)

// LeadStageUsage lets the pipeline ask how many leads occupy a stage before
// renaming or deleting it.
type LeadStageUsage struct {
	leads leads.StageUsage
}

// NewLeadStageUsage creates a new stage usage adapter.
func NewLeadStageUsage(usage leads.StageUsage) *LeadStageUsage {
	return &LeadStageUsage{leads: usage}
}

// CountLeadsInStage delegates to the leads service.
func (a *LeadStageUsage) CountLeadsInStage(ctx context.Context, stage string) int {
	return a.leads.CountLeadsInStage(ctx, stage)
}

// Compile-time check.
var _ pipelinesvc.LeadCounter = (*LeadStageUsage)(nil)
