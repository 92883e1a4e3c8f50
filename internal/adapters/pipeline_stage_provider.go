package adapters

import (
	"context"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/ports"
)

// StageNamer is the pipeline service method this adapter needs.
type StageNamer interface {
	Names(ctx context.Context) []string
}

// PipelineStageProvider adapts the pipeline service to the leads StageProvider port.
type PipelineStageProvider struct {
	stages StageNamer
}

// NewPipelineStageProvider creates a new stage provider adapter.
func NewPipelineStageProvider(stages StageNamer) *PipelineStageProvider {
	return &PipelineStageProvider{stages: stages}
}

// StageNames returns the current ordered stage names.
func (a *PipelineStageProvider) StageNames(ctx context.Context) (domain.StageSet, error) {
	return domain.StageSet(a.stages.Names(ctx)), nil
}

// Compile-time check.
var _ ports.StageProvider = (*PipelineStageProvider)(nil)
