package management

import (
	"context"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

// ListActivity returns the history of a lead, newest first. History
// outlives the lead, so a deleted lead's entries are still returned.
func (s *Service) ListActivity(_ context.Context, leadID uuid.UUID) ([]transport.ActivityResponse, error) {
	entries := s.activity.List(leadID)
	if len(entries) == 0 {
		if _, ok := s.store.Load().Get(leadID); !ok {
			return nil, apperr.NotFound(msgLeadNotFound)
		}
	}
	resp := make([]transport.ActivityResponse, len(entries))
	for i, e := range entries {
		resp[i] = ToActivityResponse(e)
	}
	return resp, nil
}

// AddActivity records a manual entry. Calls, emails and meetings also
// stamp the lead's last contact time.
func (s *Service) AddActivity(ctx context.Context, leadID uuid.UUID, req transport.AddActivityRequest, actorID *uuid.UUID) (transport.ActivityResponse, error) {
	kind := domain.ActivityType(req.Type)
	if !kind.IsManual() {
		return transport.ActivityResponse{}, apperr.Validation("activity type is not allowed")
	}

	defer s.lock()()

	lead, ok := s.store.Load().Get(leadID)
	if !ok {
		return transport.ActivityResponse{}, apperr.NotFound(msgLeadNotFound)
	}

	now := s.now()
	if kind.CountsAsContact() {
		lead.LastContact = &now
		lead.UpdatedAt = now
		if err := s.persister.SaveLeads(context.WithoutCancel(ctx), []domain.Lead{lead}); err != nil {
			return transport.ActivityResponse{}, s.storeError("add activity", err)
		}
		if err := s.store.Replace(lead); err != nil {
			return transport.ActivityResponse{}, s.storeError("add activity", err)
		}
	}

	entry := domain.ActivityEntry{
		ID:        s.newID(),
		LeadID:    leadID,
		Timestamp: now,
		Type:      kind,
		Details:   req.Details,
		UserID:    actorID,
	}
	if err := s.persister.AppendActivity(context.WithoutCancel(ctx), entry); err != nil {
		s.log.DatabaseError("append activity", err)
		return transport.ActivityResponse{}, apperr.Wrap(apperr.KindInternal, "failed to save activity", err)
	}
	s.activity.Append(entry)
	s.metrics.RecordMutation("activity")

	return ToActivityResponse(entry), nil
}

// appendActivity records a system entry after a lead commit. The lead change
// is already visible, so a persistence failure here is logged and the entry
// is still kept in memory.
func (s *Service) appendActivity(ctx context.Context, leadID uuid.UUID, kind domain.ActivityType, details string, actorID *uuid.UUID) {
	entry := domain.ActivityEntry{
		ID:        s.newID(),
		LeadID:    leadID,
		Timestamp: s.now(),
		Type:      kind,
		Details:   details,
		UserID:    actorID,
	}
	if err := s.persister.AppendActivity(context.WithoutCancel(ctx), entry); err != nil {
		s.log.WithContext(ctx).Error("failed to persist activity", "leadId", leadID, "error", err)
	}
	s.activity.Append(entry)
}
