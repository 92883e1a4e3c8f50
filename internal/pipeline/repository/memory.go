package repository

import (
	"context"
	"slices"
	"sync"
)

// Memory keeps stages in process. Used when no database is configured.
type Memory struct {
	mu     sync.RWMutex
	stages []Stage
}

// NewMemory creates an empty in-memory stage repository.
func NewMemory() *Memory {
	return &Memory{}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) List(_ context.Context) ([]Stage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.stages), nil
}

func (m *Memory) SaveAll(_ context.Context, stages []Stage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = slices.Clone(stages)
	return nil
}
