package repository

import (
	"slices"
	"sync"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ActivityStore keeps activity entries per lead in memory. Entries outlive
// the lead they belong to.
type ActivityStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]domain.ActivityEntry
}

// NewActivityStore creates an empty store.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{entries: make(map[uuid.UUID][]domain.ActivityEntry)}
}

// Append records entry. Entries are never modified afterwards.
func (s *ActivityStore) Append(entry domain.ActivityEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.LeadID] = append(s.entries[entry.LeadID], entry)
}

// List returns the lead's entries, most recently appended first.
func (s *ActivityStore) List(leadID uuid.UUID) []domain.ActivityEntry {
	s.mu.RLock()
	src := s.entries[leadID]
	out := make([]domain.ActivityEntry, len(src))
	copy(out, src)
	s.mu.RUnlock()

	slices.Reverse(out)
	return out
}

// Seed loads entries read from durable storage.
func (s *ActivityStore) Seed(entries []domain.ActivityEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.entries[e.LeadID] = append(s.entries[e.LeadID], e)
	}
}
