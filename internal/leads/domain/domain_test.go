package domain

import (
	"testing"
	"time"
)

func TestStageSetResolveIsCaseInsensitive(t *testing.T) {
	stages := StageSet(DefaultStages)

	got, ok := stages.Resolve("  qualified ")
	if !ok || got != "Qualified" {
		t.Fatalf("expected Qualified, got %q (ok=%v)", got, ok)
	}
	if stages.Contains("Archived") {
		t.Fatal("expected Archived to be unknown")
	}
	if stages.ResolveOrFirst("Archived") != "New" {
		t.Fatalf("expected fallback to first stage, got %q", stages.ResolveOrFirst("Archived"))
	}
	if StageSet(nil).First() != "" {
		t.Fatal("expected empty set to have no first stage")
	}
}

func TestLeadValueCoversEveryScorableField(t *testing.T) {
	fields := LeadFields{
		Name: "n", Email: "e", Phone: "p", Company: "c", Title: "t",
		Category: "cat", Industry: "i", Source: "s", Status: "st", Notes: "no",
	}
	for _, f := range ScorableFields {
		if fields.Value(f) == "" {
			t.Fatalf("field %s read as empty", f)
		}
	}
	if fields.Value(Field("score")) != "" {
		t.Fatal("expected unknown field to read as empty")
	}
}

func TestCloneDoesNotShareTimes(t *testing.T) {
	now := time.Now()
	lead := Lead{LeadFields: LeadFields{LastContact: &now}}

	clone := lead.Clone()
	*clone.LastContact = now.Add(time.Hour)

	if !lead.LastContact.Equal(now) {
		t.Fatal("clone mutated original LastContact")
	}
}

func TestParseField(t *testing.T) {
	if f, ok := ParseField(" Industry "); !ok || f != FieldIndustry {
		t.Fatalf("expected industry, got %q", f)
	}
	if _, ok := ParseField("score"); ok {
		t.Fatal("score must not be a scorable field")
	}
}

func TestNormalizedTrimsAndFormatsPhone(t *testing.T) {
	in := LeadFields{
		Name:    "  Ada   Lovelace ",
		Email:   " Ada@Example.com ",
		Phone:   "(415) 555-2671",
		Company: "<b>Analytical</b> Engines",
		Status:  " qualified ",
	}

	got := in.Normalized("US")
	if got.Name != "Ada Lovelace" || got.Company != "Analytical Engines" {
		t.Fatalf("unexpected text normalization: %+v", got)
	}
	if got.Email != "Ada@Example.com" {
		t.Fatalf("expected email to keep its case, got %q", got.Email)
	}
	if got.Phone != "+14155552671" {
		t.Fatalf("expected E.164 phone, got %q", got.Phone)
	}
	if got.Status != "qualified" {
		t.Fatalf("expected trimmed status, got %q", got.Status)
	}
	if EmailKey(got.Email) != "ada@example.com" {
		t.Fatalf("unexpected email key %q", EmailKey(got.Email))
	}
}
