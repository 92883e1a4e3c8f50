package repository

import (
	"errors"
	"testing"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/scoring"

	"github.com/google/uuid"
)

func lead(email string) domain.Lead {
	return domain.Lead{ID: uuid.New(), LeadFields: domain.LeadFields{Email: email, Status: "New"}}
}

func TestInsertRejectsWholeBatchOnDuplicate(t *testing.T) {
	m := NewMemory(scoring.Default())
	if err := m.Insert(lead("a@x.com")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	err := m.Insert(lead("b@x.com"), lead("A@X.COM"))
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if m.Load().Len() != 1 {
		t.Fatalf("expected failed batch to leave 1 lead, got %d", m.Load().Len())
	}
}

func TestSnapshotIsImmutableAfterCommit(t *testing.T) {
	m := NewMemory(scoring.Default())
	l := lead("a@x.com")
	if err := m.Insert(l); err != nil {
		t.Fatalf("insert: %v", err)
	}

	before := m.Load()
	updated := l
	updated.Name = "Changed"
	if err := m.Replace(updated); err != nil {
		t.Fatalf("replace: %v", err)
	}

	old, _ := before.Get(l.ID)
	if old.Name != "" {
		t.Fatalf("old snapshot observed later write: %q", old.Name)
	}
	cur, _ := m.Load().Get(l.ID)
	if cur.Name != "Changed" {
		t.Fatalf("expected current snapshot to see write, got %q", cur.Name)
	}
	if m.Load().DataVersion() <= before.DataVersion() {
		t.Fatal("expected data version to advance")
	}
}

func TestCountByStatusIgnoresCaseAndSpace(t *testing.T) {
	m := NewMemory(scoring.Default())
	qualified := lead("b@x.com")
	qualified.Status = " qualified "
	if err := m.Insert(lead("a@x.com"), qualified, lead("c@x.com")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	snap := m.Load()
	if got := snap.CountByStatus("NEW"); got != 2 {
		t.Fatalf("expected 2 leads in New, got %d", got)
	}
	if got := snap.CountByStatus("Qualified "); got != 1 {
		t.Fatalf("expected 1 lead in Qualified, got %d", got)
	}
	if got := snap.CountByStatus("Lost"); got != 0 {
		t.Fatalf("expected no leads in Lost, got %d", got)
	}
}

func TestReplaceChecksEmailOwnership(t *testing.T) {
	m := NewMemory(scoring.Default())
	a, b := lead("a@x.com"), lead("b@x.com")
	if err := m.Insert(a, b); err != nil {
		t.Fatalf("insert: %v", err)
	}

	b.Email = "A@x.com"
	if err := m.Replace(b); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	a.Email = "A@X.com"
	if err := m.Replace(a); err != nil {
		t.Fatalf("expected re-casing own email to succeed, got %v", err)
	}
	if err := m.Replace(lead("c@x.com")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemovedIDIsNeverReused(t *testing.T) {
	m := NewMemory(scoring.Default())
	l := lead("a@x.com")
	if err := m.Insert(l); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := m.Remove(l.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := m.Remove(l.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
	if err := m.Insert(l); !errors.Is(err, ErrIDReused) {
		t.Fatalf("expected ErrIDReused, got %v", err)
	}
	if _, taken := m.Load().OwnerOfEmail("a@x.com"); taken {
		t.Fatal("expected email to be free after delete")
	}
}

func TestApplyConfigSwapsConfigAndLeadsTogether(t *testing.T) {
	m := NewMemory(scoring.Default())
	l := lead("a@x.com")
	if err := m.Insert(l); err != nil {
		t.Fatalf("insert: %v", err)
	}
	before := m.Load()

	cfg := scoring.Config{Fields: []scoring.FieldConfig{{FieldName: domain.FieldEmail, IsActive: true, Weight: 100,
		Rules: []scoring.Rule{{Condition: scoring.IsNotEmpty{}, Points: 100}}}}}
	rescored := before.Leads()
	rescored[0].Score = 100

	snap, err := m.ApplyConfig(cfg, rescored, true)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if snap.ConfigVersion() != before.ConfigVersion()+1 {
		t.Fatalf("expected config version %d, got %d", before.ConfigVersion()+1, snap.ConfigVersion())
	}
	got, _ := m.Load().Get(l.ID)
	if got.Score != 100 || len(m.Load().Config().Fields) != 1 {
		t.Fatalf("expected new config and score, got score=%d fields=%d", got.Score, len(m.Load().Config().Fields))
	}

	if _, err := m.ApplyConfig(cfg, nil, true); err == nil {
		t.Fatal("expected mismatched rescored set to fail")
	}
}

func TestActivityStoreListsNewestFirst(t *testing.T) {
	s := NewActivityStore()
	leadID := uuid.New()
	s.Append(domain.ActivityEntry{ID: uuid.New(), LeadID: leadID, Details: "first"})
	s.Append(domain.ActivityEntry{ID: uuid.New(), LeadID: leadID, Details: "second"})
	s.Append(domain.ActivityEntry{ID: uuid.New(), LeadID: uuid.New(), Details: "other"})

	got := s.List(leadID)
	if len(got) != 2 || got[0].Details != "second" {
		t.Fatalf("unexpected activity order %+v", got)
	}
}
