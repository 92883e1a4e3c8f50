// Package management is the mutation gateway for leads. It is the only
// writer of the lead store and the scoring configuration, and it serializes
// every mutation behind one lock while readers use lock-free snapshots.
package management

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/importer"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"
	"leadflow_backend/platform/validator"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound   = "lead not found"
	msgDuplicateEmail = "a lead with this email already exists"
	msgUnknownStatus  = "status is not a pipeline stage"
	msgInvalidEmail   = "email is invalid"
	msgNoStages       = "pipeline has no stages"
)

// Service is the lead mutation gateway.
type Service struct {
	mu sync.Mutex

	store     repository.LeadStore
	activity  repository.ActivityLog
	persister repository.Persister
	stages    ports.StageProvider
	importer  *importer.Importer
	bus       events.Bus
	log       *logger.Logger
	metrics   *metrics.Metrics
	val       *validator.Validator

	now           func() time.Time
	newID         func() uuid.UUID
	latency       time.Duration
	phoneRegion   string
	maxImportRows int

	sweeps atomic.Uint64
}

// Option configures the Service.
type Option func(*Service)

// WithPersister mirrors every commit to durable storage before it is applied in memory.
func WithPersister(p repository.Persister) Option {
	return func(s *Service) { s.persister = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides uuid.New for leads and activity entries.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) { s.newID = fn }
}

// WithLatency adds an artificial delay to every mutation. The write lock is
// held for the whole delay.
func WithLatency(d time.Duration) Option {
	return func(s *Service) { s.latency = d }
}

// WithPhoneRegion sets the region used to normalize national phone numbers.
func WithPhoneRegion(region string) Option {
	return func(s *Service) { s.phoneRegion = region }
}

// WithMetrics records mutation and sweep metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithValidator shares the application's validator.
func WithValidator(v *validator.Validator) Option {
	return func(s *Service) { s.val = v }
}

// WithMaxImportRows caps the rows accepted by one import call.
func WithMaxImportRows(n int) Option {
	return func(s *Service) { s.maxImportRows = n }
}

// New creates the gateway over store and activity.
func New(store repository.LeadStore, activity repository.ActivityLog, stages ports.StageProvider, bus events.Bus, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:         store,
		activity:      activity,
		persister:     repository.NopPersister{},
		stages:        stages,
		bus:           bus,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.New,
		phoneRegion:   "US",
		maxImportRows: 10000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.val == nil {
		s.val = validator.New()
	}
	s.importer = importer.New(s.val, s.phoneRegion, importer.WithIDGenerator(s.newID))
	return s
}

// lock acquires the write lock and sleeps the configured latency while holding it.
func (s *Service) lock() func() {
	s.mu.Lock()
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
	return s.mu.Unlock
}

// List returns the current snapshot filtered and sorted. It never blocks on writers.
func (s *Service) List(_ context.Context, req transport.ListLeadsRequest) transport.LeadListResponse {
	leads := s.store.Load().Leads()

	status := strings.TrimSpace(req.Status)
	search := strings.ToLower(strings.TrimSpace(req.Search))
	items := make([]transport.LeadResponse, 0, len(leads))
	for _, l := range leads {
		if status != "" && !strings.EqualFold(l.Status, status) {
			continue
		}
		if search != "" && !matchesSearch(l, search) {
			continue
		}
		items = append(items, ToLeadResponse(l))
	}

	sortLeads(items, req.SortBy, req.Order)
	return transport.LeadListResponse{Items: items, Total: len(items)}
}

// Get returns one lead.
func (s *Service) Get(_ context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, ok := s.store.Load().Get(id)
	if !ok {
		return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
	}
	return ToLeadResponse(lead), nil
}

// Create validates, scores and commits a new lead. An empty status places
// the lead in the first pipeline stage.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest, actorID *uuid.UUID) (transport.LeadResponse, error) {
	defer s.lock()()

	stages, err := s.stageSet(ctx)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	fields := createFields(req).Normalized(s.phoneRegion)
	if !s.val.IsEmail(fields.Email) {
		return transport.LeadResponse{}, apperr.Validation(msgInvalidEmail)
	}
	if fields.Status, err = resolveStatus(stages, fields.Status); err != nil {
		return transport.LeadResponse{}, err
	}

	snap := s.store.Load()
	if _, taken := snap.OwnerOfEmail(fields.Email); taken {
		return transport.LeadResponse{}, apperr.Conflict(msgDuplicateEmail)
	}

	now := s.now()
	lead := domain.Lead{
		ID:         s.newID(),
		LeadFields: fields,
		Score:      scoring.ComputeScore(fields, snap.Config()),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.persister.SaveLeads(context.WithoutCancel(ctx), []domain.Lead{lead}); err != nil {
		return transport.LeadResponse{}, s.storeError("create lead", err)
	}
	if err := s.store.Insert(lead); err != nil {
		return transport.LeadResponse{}, s.storeError("create lead", err)
	}

	s.appendActivity(ctx, lead.ID, domain.ActivityNote, "Lead created", actorID)
	s.committed("create")
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEventAt(now),
		LeadID:    lead.ID,
		Email:     lead.Email,
		Status:    lead.Status,
		Score:     lead.Score,
	})
	s.log.WithContext(ctx).Info("lead created", "leadId", lead.ID, "score", lead.Score)

	return ToLeadResponse(lead), nil
}

// Update applies a partial edit, recomputes the score and commits. A status
// change is recorded as a StageChange activity.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest, actorID *uuid.UUID) (transport.LeadResponse, error) {
	defer s.lock()()

	snap := s.store.Load()
	current, ok := snap.Get(id)
	if !ok {
		return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
	}

	next := current.Clone()
	changed := applyUpdate(&next.LeadFields, req)
	next.LeadFields = next.LeadFields.Normalized(s.phoneRegion)

	if req.Email != nil {
		if !s.val.IsEmail(next.Email) {
			return transport.LeadResponse{}, apperr.Validation(msgInvalidEmail)
		}
		if owner, taken := snap.OwnerOfEmail(next.Email); taken && owner != id {
			return transport.LeadResponse{}, apperr.Conflict(msgDuplicateEmail)
		}
	}
	if req.Status != nil {
		stages, err := s.stageSet(ctx)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		resolved, ok := stages.Resolve(next.Status)
		if !ok {
			return transport.LeadResponse{}, apperr.Validation(msgUnknownStatus).WithDetails(map[string]any{"stages": []string(stages)})
		}
		next.Status = resolved
	}

	next.Score = scoring.ComputeScore(next.LeadFields, snap.Config())
	next.UpdatedAt = s.now()

	if err := s.persister.SaveLeads(context.WithoutCancel(ctx), []domain.Lead{next}); err != nil {
		return transport.LeadResponse{}, s.storeError("update lead", err)
	}
	if err := s.store.Replace(next); err != nil {
		return transport.LeadResponse{}, s.storeError("update lead", err)
	}

	if current.Status != next.Status {
		s.appendActivity(ctx, id, domain.ActivityStageChange, "Stage changed from "+current.Status+" to "+next.Status, actorID)
		s.bus.Publish(ctx, events.LeadStageChanged{
			BaseEvent: events.NewBaseEventAt(next.UpdatedAt),
			LeadID:    id,
			FromStage: current.Status,
			ToStage:   next.Status,
			ActorID:   actorID,
		})
	}

	s.committed("update")
	s.bus.Publish(ctx, events.LeadUpdated{
		BaseEvent:     events.NewBaseEventAt(next.UpdatedAt),
		LeadID:        id,
		ChangedFields: changed,
		PreviousScore: current.Score,
		Score:         next.Score,
	})

	return ToLeadResponse(next), nil
}

// Delete hard-deletes a lead. Its activity history is kept and a final Note
// records the deletion.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	defer s.lock()()

	current, ok := s.store.Load().Get(id)
	if !ok {
		return apperr.NotFound(msgLeadNotFound)
	}

	if err := s.persister.DeleteLead(context.WithoutCancel(ctx), id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return s.storeError("delete lead", err)
	}
	if err := s.store.Remove(id); err != nil {
		return s.storeError("delete lead", err)
	}

	s.appendActivity(ctx, id, domain.ActivityNote, "Lead deleted", actorID)
	s.committed("delete")
	s.bus.Publish(ctx, events.LeadDeleted{
		BaseEvent: events.NewBaseEventAt(s.now()),
		LeadID:    id,
		Email:     current.Email,
	})
	s.log.WithContext(ctx).Info("lead deleted", "leadId", id)
	return nil
}

// CountLeadsInStage reports how many leads currently sit in stage.
func (s *Service) CountLeadsInStage(_ context.Context, stage string) int {
	return s.store.Load().CountByStatus(stage)
}

func (s *Service) stageSet(ctx context.Context) (domain.StageSet, error) {
	stages, err := s.stages.StageNames(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load pipeline stages", err)
	}
	if len(stages) == 0 {
		return nil, apperr.Internal(msgNoStages)
	}
	return stages, nil
}

func resolveStatus(stages domain.StageSet, raw string) (string, error) {
	if raw == "" {
		return stages.First(), nil
	}
	resolved, ok := stages.Resolve(raw)
	if !ok {
		return "", apperr.Validation(msgUnknownStatus).WithDetails(map[string]any{"stages": []string(stages)})
	}
	return resolved, nil
}

// storeError maps repository sentinels to domain errors and logs the rest.
func (s *Service) storeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(msgLeadNotFound).WithOp(op)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperr.Conflict(msgDuplicateEmail).WithOp(op)
	default:
		s.log.DatabaseError(op, err)
		return apperr.Wrap(apperr.KindInternal, "failed to save lead", err).WithOp(op)
	}
}

func (s *Service) committed(op string) {
	s.metrics.RecordMutation(op)
	s.metrics.SetLeadCount(s.store.Load().Len())
}

func matchesSearch(l domain.Lead, needle string) bool {
	for _, v := range []string{l.Name, l.Email, l.Company, l.Title, l.Industry} {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func sortLeads(items []transport.LeadResponse, sortBy, order string) {
	desc := order != "asc"
	var less func(a, b transport.LeadResponse) bool
	switch sortBy {
	case transport.SortByScore:
		less = func(a, b transport.LeadResponse) bool { return a.Score < b.Score }
	case transport.SortByName:
		less = func(a, b transport.LeadResponse) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
		desc = order == "desc"
	case transport.SortByCreatedAt:
		less = func(a, b transport.LeadResponse) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		// snapshot order
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
