package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/pipeline/repository"
	"leadflow_backend/internal/pipeline/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/sanitize"
)

const (
	stageNotFoundMessage = "pipeline stage not found"
	stageExistsMessage   = "a pipeline stage with this name already exists"
	stageInUseMessage    = "pipeline stage is used by leads"
)

// DefaultStages seeds an empty pipeline.
var DefaultStages = []struct{ Name, Color string }{
	{"New", "#64748b"},
	{"Contacted", "#0ea5e9"},
	{"Qualified", "#6366f1"},
	{"Proposal", "#a855f7"},
	{"Negotiation", "#f59e0b"},
	{"Won", "#22c55e"},
	{"Lost", "#ef4444"},
}

// LeadCounter reports how many leads sit in a stage.
type LeadCounter interface {
	CountLeadsInStage(ctx context.Context, stage string) int
}

// Service provides business logic for pipeline stages. Stages are cached in
// memory in order; every change rewrites positions densely from zero.
type Service struct {
	mu     sync.RWMutex
	repo   repository.Repository
	leads  LeadCounter
	bus    events.Bus
	log    *logger.Logger
	now    func() time.Time
	stages []repository.Stage
}

// New creates the stage service and loads the stored stages, seeding the
// defaults when none exist.
func New(ctx context.Context, repo repository.Repository, bus events.Bus, log *logger.Logger) (*Service, error) {
	s := &Service{
		repo: repo,
		bus:  bus,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}

	stages, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		stages = s.defaults()
		if err := repo.SaveAll(ctx, stages); err != nil {
			return nil, err
		}
		log.Info("pipeline stages seeded", "count", len(stages))
	}
	s.stages = renumber(stages)
	return s, nil
}

// SetLeadCounter wires stage usage checks (breaks the leads <-> pipeline cycle).
func (s *Service) SetLeadCounter(c LeadCounter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = c
}

// List returns all stages in order.
func (s *Service) List(_ context.Context) transport.StageListResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return toListResponse(s.stages)
}

// Names returns the ordered stage names.
func (s *Service) Names(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return names(s.stages)
}

// GetByID retrieves a stage.
func (s *Service) GetByID(_ context.Context, id uuid.UUID) (transport.StageResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.stages, id)
	if idx < 0 {
		return transport.StageResponse{}, apperr.NotFound(stageNotFoundMessage)
	}
	return toResponse(s.stages[idx]), nil
}

// Create inserts a stage at req.Position, or appends it.
func (s *Service) Create(ctx context.Context, req transport.CreateStageRequest) (transport.StageResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := sanitize.Line(req.Name)
	if s.nameTaken(name, uuid.Nil) {
		return transport.StageResponse{}, apperr.Conflict(stageExistsMessage)
	}

	now := s.now()
	stage := repository.Stage{ID: uuid.New(), Name: name, Color: strings.TrimSpace(req.Color), CreatedAt: now, UpdatedAt: now}

	pos := len(s.stages)
	if req.Position != nil && *req.Position < pos {
		pos = *req.Position
	}
	next := make([]repository.Stage, 0, len(s.stages)+1)
	next = append(next, s.stages[:pos]...)
	next = append(next, stage)
	next = append(next, s.stages[pos:]...)

	if err := s.commit(ctx, next); err != nil {
		return transport.StageResponse{}, err
	}
	s.log.Info("pipeline stage created", "id", stage.ID, "name", stage.Name, "position", pos)
	return toResponse(s.stages[pos]), nil
}

// Update renames or recolors a stage. Renaming a stage that leads are in is
// refused, because lead statuses store the stage name.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateStageRequest) (transport.StageResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.stages, id)
	if idx < 0 {
		return transport.StageResponse{}, apperr.NotFound(stageNotFoundMessage)
	}

	next := append([]repository.Stage(nil), s.stages...)
	stage := next[idx]

	if req.Name != nil {
		name := sanitize.Line(*req.Name)
		if name != stage.Name {
			if s.nameTaken(name, id) {
				return transport.StageResponse{}, apperr.Conflict(stageExistsMessage)
			}
			if s.inUse(ctx, stage.Name) {
				return transport.StageResponse{}, apperr.Conflict(stageInUseMessage)
			}
			stage.Name = name
		}
	}
	if req.Color != nil {
		stage.Color = strings.TrimSpace(*req.Color)
	}
	stage.UpdatedAt = s.now()
	next[idx] = stage

	if err := s.commit(ctx, next); err != nil {
		return transport.StageResponse{}, err
	}
	s.log.Info("pipeline stage updated", "id", id, "name", stage.Name)
	return toResponse(s.stages[idx]), nil
}

// Delete removes a stage that no lead is in. The last stage cannot be removed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.stages, id)
	if idx < 0 {
		return apperr.NotFound(stageNotFoundMessage)
	}
	if len(s.stages) == 1 {
		return apperr.Validation("the pipeline needs at least one stage")
	}
	if s.inUse(ctx, s.stages[idx].Name) {
		return apperr.Conflict(stageInUseMessage)
	}

	next := make([]repository.Stage, 0, len(s.stages)-1)
	next = append(next, s.stages[:idx]...)
	next = append(next, s.stages[idx+1:]...)

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Info("pipeline stage deleted", "id", id)
	return nil
}

// Reorder applies a new order. ids must list every stage exactly once.
func (s *Service) Reorder(ctx context.Context, ids []uuid.UUID) (transport.StageListResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) != len(s.stages) {
		return transport.StageListResponse{}, apperr.Validation("reorder must list every stage exactly once")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	next := make([]repository.Stage, 0, len(ids))
	for _, id := range ids {
		idx := indexOf(s.stages, id)
		if idx < 0 {
			return transport.StageListResponse{}, apperr.NotFound(stageNotFoundMessage)
		}
		if _, dup := seen[id]; dup {
			return transport.StageListResponse{}, apperr.Validation("reorder must list every stage exactly once")
		}
		seen[id] = struct{}{}
		next = append(next, s.stages[idx])
	}

	if err := s.commit(ctx, next); err != nil {
		return transport.StageListResponse{}, err
	}
	return toListResponse(s.stages), nil
}

// commit renumbers, persists and publishes. Caller holds the write lock.
func (s *Service) commit(ctx context.Context, next []repository.Stage) error {
	next = renumber(next)
	if err := s.repo.SaveAll(context.WithoutCancel(ctx), next); err != nil {
		s.log.DatabaseError("save pipeline stages", err)
		return apperr.Wrap(apperr.KindInternal, "failed to save pipeline stages", err)
	}
	s.stages = next
	s.bus.Publish(ctx, events.PipelineStagesChanged{
		BaseEvent: events.NewBaseEvent(),
		Stages:    names(next),
	})
	return nil
}

func (s *Service) nameTaken(name string, except uuid.UUID) bool {
	for _, st := range s.stages {
		if st.ID != except && strings.EqualFold(st.Name, name) {
			return true
		}
	}
	return false
}

func (s *Service) inUse(ctx context.Context, name string) bool {
	return s.leads != nil && s.leads.CountLeadsInStage(ctx, name) > 0
}

func (s *Service) defaults() []repository.Stage {
	now := s.now()
	out := make([]repository.Stage, len(DefaultStages))
	for i, d := range DefaultStages {
		out[i] = repository.Stage{ID: uuid.New(), Name: d.Name, Color: d.Color, Order: i, CreatedAt: now, UpdatedAt: now}
	}
	return out
}

// renumber returns a copy with Order set to the slice position.
func renumber(stages []repository.Stage) []repository.Stage {
	out := make([]repository.Stage, len(stages))
	for i, st := range stages {
		st.Order = i
		out[i] = st
	}
	return out
}

func indexOf(stages []repository.Stage, id uuid.UUID) int {
	for i, st := range stages {
		if st.ID == id {
			return i
		}
	}
	return -1
}

func names(stages []repository.Stage) []string {
	out := make([]string, len(stages))
	for i, st := range stages {
		out[i] = st.Name
	}
	return out
}

func toResponse(st repository.Stage) transport.StageResponse {
	return transport.StageResponse{
		ID:        st.ID,
		Name:      st.Name,
		Color:     st.Color,
		Order:     st.Order,
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
}

func toListResponse(stages []repository.Stage) transport.StageListResponse {
	items := make([]transport.StageResponse, len(stages))
	for i, st := range stages {
		items[i] = toResponse(st)
	}
	return transport.StageListResponse{Items: items, Total: len(items)}
}
