package repository

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/scoring"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("lead not found")
	ErrDuplicateEmail = errors.New("a lead with this email already exists")
	ErrIDReused       = errors.New("lead id already used")
)

// Snapshot is an immutable view of the leads and the scoring configuration.
// A reader holding a Snapshot never observes a later commit.
type Snapshot struct {
	leads         []domain.Lead
	byID          map[uuid.UUID]int
	byEmail       map[string]uuid.UUID
	config        scoring.Config
	configVersion uint64
	dataVersion   uint64
}

// Len returns the number of leads.
func (s *Snapshot) Len() int { return len(s.leads) }

// Leads returns a copy of all leads in insertion order.
func (s *Snapshot) Leads() []domain.Lead {
	out := make([]domain.Lead, len(s.leads))
	for i, l := range s.leads {
		out[i] = l.Clone()
	}
	return out
}

// Get returns a copy of the lead with id.
func (s *Snapshot) Get(id uuid.UUID) (domain.Lead, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return domain.Lead{}, false
	}
	return s.leads[idx].Clone(), true
}

// OwnerOfEmail returns the id of the lead holding email, compared by EmailKey.
func (s *Snapshot) OwnerOfEmail(email string) (uuid.UUID, bool) {
	id, ok := s.byEmail[domain.EmailKey(email)]
	return id, ok
}

// Config returns a copy of the scoring configuration.
func (s *Snapshot) Config() scoring.Config { return s.config.Clone() }

// ConfigVersion increments on every accepted configuration.
func (s *Snapshot) ConfigVersion() uint64 { return s.configVersion }

// DataVersion increments on every commit.
func (s *Snapshot) DataVersion() uint64 { return s.dataVersion }

// CountByStatus returns how many leads sit in stage (case-insensitive).
func (s *Snapshot) CountByStatus(stage string) int {
	stage = strings.TrimSpace(stage)
	n := 0
	for _, l := range s.leads {
		if strings.EqualFold(strings.TrimSpace(l.Status), stage) {
			n++
		}
	}
	return n
}

// Memory is the copy-on-write lead and scoring configuration store. Reads
// load the current snapshot without locking; writes build a new snapshot
// and swap it in.
type Memory struct {
	mu         sync.Mutex
	current    atomic.Pointer[Snapshot]
	tombstones map[uuid.UUID]struct{}
}

// NewMemory creates a store holding cfg and no leads.
func NewMemory(cfg scoring.Config) *Memory {
	m := &Memory{tombstones: make(map[uuid.UUID]struct{})}
	m.current.Store(buildSnapshot(nil, cfg.Clone(), 1, 0))
	return m
}

// Load returns the current snapshot.
func (m *Memory) Load() *Snapshot {
	return m.current.Load()
}

// Insert appends leads in one commit. Nothing is committed if any id or
// email collides.
func (m *Memory) Insert(leads ...domain.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.current.Load()
	emails := make(map[string]struct{}, len(leads))
	for _, l := range leads {
		if _, used := cur.byID[l.ID]; used {
			return ErrIDReused
		}
		if _, dead := m.tombstones[l.ID]; dead {
			return ErrIDReused
		}
		key := domain.EmailKey(l.Email)
		if _, taken := cur.byEmail[key]; taken {
			return ErrDuplicateEmail
		}
		if _, taken := emails[key]; taken {
			return ErrDuplicateEmail
		}
		emails[key] = struct{}{}
	}

	next := make([]domain.Lead, 0, len(cur.leads)+len(leads))
	next = append(next, cur.leads...)
	for _, l := range leads {
		next = append(next, l.Clone())
	}
	m.current.Store(buildSnapshot(next, cur.config, cur.configVersion, cur.dataVersion+1))
	return nil
}

// Replace overwrites an existing lead.
func (m *Memory) Replace(lead domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.current.Load()
	idx, ok := cur.byID[lead.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := cur.byEmail[domain.EmailKey(lead.Email)]; taken && owner != lead.ID {
		return ErrDuplicateEmail
	}

	next := make([]domain.Lead, len(cur.leads))
	copy(next, cur.leads)
	next[idx] = lead.Clone()
	m.current.Store(buildSnapshot(next, cur.config, cur.configVersion, cur.dataVersion+1))
	return nil
}

// Remove hard-deletes a lead. Its id is never accepted again.
func (m *Memory) Remove(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.current.Load()
	idx, ok := cur.byID[id]
	if !ok {
		return ErrNotFound
	}

	next := make([]domain.Lead, 0, len(cur.leads)-1)
	next = append(next, cur.leads[:idx]...)
	next = append(next, cur.leads[idx+1:]...)
	m.tombstones[id] = struct{}{}
	m.current.Store(buildSnapshot(next, cur.config, cur.configVersion, cur.dataVersion+1))
	return nil
}

// ApplyConfig swaps in cfg together with the rescored leads in one commit.
// rescored must hold exactly the leads of the current snapshot. The config
// version advances only when newVersion is set.
func (m *Memory) ApplyConfig(cfg scoring.Config, rescored []domain.Lead, newVersion bool) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.current.Load()
	if len(rescored) != len(cur.leads) {
		return nil, errors.New("rescored set does not match the store")
	}
	next := make([]domain.Lead, len(rescored))
	for i, l := range rescored {
		if cur.leads[i].ID != l.ID {
			return nil, errors.New("rescored set does not match the store")
		}
		next[i] = l.Clone()
	}

	version := cur.configVersion
	if newVersion {
		version++
	}
	snap := buildSnapshot(next, cfg.Clone(), version, cur.dataVersion+1)
	m.current.Store(snap)
	return snap, nil
}

// Seed replaces the whole state. Used once at startup from durable storage.
func (m *Memory) Seed(leads []domain.Lead, cfg scoring.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]domain.Lead, len(leads))
	for i, l := range leads {
		next[i] = l.Clone()
	}
	cur := m.current.Load()
	m.current.Store(buildSnapshot(next, cfg.Clone(), cur.configVersion+1, cur.dataVersion+1))
}

func buildSnapshot(leads []domain.Lead, cfg scoring.Config, configVersion, dataVersion uint64) *Snapshot {
	s := &Snapshot{
		leads:         leads,
		byID:          make(map[uuid.UUID]int, len(leads)),
		byEmail:       make(map[string]uuid.UUID, len(leads)),
		config:        cfg,
		configVersion: configVersion,
		dataVersion:   dataVersion,
	}
	for i, l := range leads {
		s.byID[l.ID] = i
		s.byEmail[domain.EmailKey(l.Email)] = l.ID
	}
	return s
}
