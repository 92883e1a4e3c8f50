package management

import (
	"context"
	"errors"
	"io"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/importer"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

// Import validates, deduplicates and scores rows, then commits every valid
// lead in one step. Invalid and duplicate rows are reported, never fatal.
func (s *Service) Import(ctx context.Context, rows []importer.Row, source string, actorID *uuid.UUID) (transport.ImportResponse, error) {
	if len(rows) > s.maxImportRows {
		return transport.ImportResponse{}, apperr.BadRequest("too many rows in import").WithDetails(map[string]any{"maxRows": s.maxImportRows})
	}
	return s.commitImport(ctx, rows, nil, source, actorID)
}

// ImportCSV parses r and imports the result. Unreadable dates are dropped from
// their row and reported as warnings; they never count as invalid rows.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, source string, actorID *uuid.UUID) (transport.ImportResponse, error) {
	rows, warnings, err := importer.ParseCSV(r, s.maxImportRows)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrEmptyFile):
			return transport.ImportResponse{}, apperr.BadRequest("csv file is empty")
		case errors.Is(err, importer.ErrTooManyRows):
			return transport.ImportResponse{}, apperr.BadRequest("too many rows in import").WithDetails(map[string]any{"maxRows": s.maxImportRows})
		default:
			return transport.ImportResponse{}, apperr.Wrap(apperr.KindBadRequest, "csv file could not be read", err)
		}
	}
	return s.commitImport(ctx, rows, warnings, source, actorID)
}

func (s *Service) commitImport(ctx context.Context, rows []importer.Row, warnings []importer.RowError, source string, actorID *uuid.UUID) (transport.ImportResponse, error) {
	defer s.lock()()

	stages, err := s.stageSet(ctx)
	if err != nil {
		return transport.ImportResponse{}, err
	}

	snap := s.store.Load()
	plan := s.importer.Plan(rows, snap.Leads(), snap.Config(), stages, s.now())

	if len(plan.Created) > 0 {
		if err := s.persister.SaveLeads(context.WithoutCancel(ctx), plan.Created); err != nil {
			return transport.ImportResponse{}, s.storeError("import leads", err)
		}
		if err := s.store.Insert(plan.Created...); err != nil {
			return transport.ImportResponse{}, s.storeError("import leads", err)
		}
	}

	rowErrors := plan.Errors

	ids := make([]uuid.UUID, len(plan.Created))
	for i, lead := range plan.Created {
		ids[i] = lead.ID
		s.appendActivity(ctx, lead.ID, domain.ActivityNote, importNote(source), actorID)
	}

	resp := transport.ImportResponse{
		ImportedCount: plan.ImportedCount,
		SkippedCount:  plan.SkippedCount,
		InvalidCount:  len(rowErrors),
		Errors:        rowErrors,
		Skipped:       plan.Skipped,
		Warnings:      warnings,
		LeadIDs:       ids,
	}
	if resp.Errors == nil {
		resp.Errors = []importer.RowError{}
	}
	if resp.Skipped == nil {
		resp.Skipped = []importer.SkippedRow{}
	}
	if len(resp.Warnings) == 0 {
		resp.Warnings = []importer.RowError{}
	}

	s.committed("import")
	s.metrics.RecordImport(resp.ImportedCount, resp.SkippedCount, resp.InvalidCount)
	s.log.WithContext(ctx).ImportCompleted(source, resp.ImportedCount, resp.SkippedCount, resp.InvalidCount)
	s.bus.Publish(ctx, events.LeadsImported{
		BaseEvent:     events.NewBaseEventAt(s.now()),
		Source:        source,
		LeadIDs:       ids,
		ImportedCount: resp.ImportedCount,
		SkippedCount:  resp.SkippedCount,
		InvalidCount:  resp.InvalidCount,
	})

	return resp, nil
}

func importNote(source string) string {
	if source == "" {
		return "Lead imported"
	}
	return "Lead imported from " + source
}
