package leads

import (
	"context"
	"errors"
	"testing"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

type stubLoader struct {
	leads   []domain.Lead
	cfg     scoring.Config
	found   bool
	entries []domain.ActivityEntry
	err     error
}

func (l stubLoader) LoadLeads(context.Context) ([]domain.Lead, error) { return l.leads, l.err }

func (l stubLoader) LoadScoringConfig(context.Context) (scoring.Config, bool, error) {
	return l.cfg, l.found, nil
}

func (l stubLoader) LoadActivities(context.Context) ([]domain.ActivityEntry, error) {
	return l.entries, nil
}

func restoreInto(t *testing.T, loader repository.Loader) (*repository.Memory, *repository.ActivityStore, error) {
	t.Helper()
	store := repository.NewMemory(scoring.Default())
	activity := repository.NewActivityStore()
	err := restore(context.Background(), loader, store, activity, scoring.Default(), logger.Discard())
	return store, activity, err
}

func TestRestoreUsesValidStoredConfig(t *testing.T) {
	stored := scoring.Config{Fields: []scoring.FieldConfig{
		{FieldName: domain.FieldCompany, IsActive: true, Weight: 100, Rules: []scoring.Rule{
			{Condition: scoring.IsNotEmpty{}, Points: 100},
		}},
	}}
	leadID := uuid.New()
	loader := stubLoader{
		leads:   []domain.Lead{{ID: leadID, LeadFields: domain.LeadFields{Email: "a@x.com", Status: "New"}}},
		cfg:     stored,
		found:   true,
		entries: []domain.ActivityEntry{{ID: uuid.New(), LeadID: leadID, Type: domain.ActivityNote}},
	}

	store, activity, err := restoreInto(t, loader)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	cfg := store.Load().Config()
	if len(cfg.Fields) != 1 || cfg.Fields[0].FieldName != domain.FieldCompany {
		t.Fatalf("expected stored config, got %+v", cfg.Fields)
	}
	if store.Load().Len() != 1 {
		t.Fatalf("expected 1 lead restored, got %d", store.Load().Len())
	}
	if len(activity.List(leadID)) != 1 {
		t.Fatal("expected activity restored")
	}
}

func TestRestoreFallsBackOnInvalidStoredConfig(t *testing.T) {
	stored := scoring.Default()
	stored.Fields[0].Weight = 40

	store, _, err := restoreInto(t, stubLoader{cfg: stored, found: true})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	cfg := store.Load().Config()
	if cfg.ActiveWeight() != scoring.RequiredActiveWeight {
		t.Fatalf("expected file default with weight 100, got %d", cfg.ActiveWeight())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected a valid config after restore, got %v", err)
	}
}

func TestRestoreUsesFallbackWhenNothingStored(t *testing.T) {
	store, _, err := restoreInto(t, stubLoader{})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if store.Load().Config().ActiveWeight() != scoring.RequiredActiveWeight {
		t.Fatal("expected file default config")
	}
}

func TestRestoreReturnsLoadErrors(t *testing.T) {
	_, _, err := restoreInto(t, stubLoader{err: errors.New("connection refused")})
	if err == nil {
		t.Fatal("expected load error")
	}
}
