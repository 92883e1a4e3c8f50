package importer

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCSVMapsHeaders(t *testing.T) {
	input := "\ufeffFull Name,E-mail,Job_Title,Stage,Last Contact,Unknown\n" +
		"Ada Lovelace,ada@x.com,CTO,Qualified,2026-02-01,ignored\n" +
		",,,,,\n" +
		"Grace Hopper,grace@x.com,Admiral,New,,\n"

	rows, rowErrs, err := ParseCSV(strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("expected no row errors, got %+v", rowErrs)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	ada := rows[0]
	if ada.Name != "Ada Lovelace" || ada.Email != "ada@x.com" || ada.Title != "CTO" || ada.Status != "Qualified" {
		t.Fatalf("unexpected mapping %+v", ada.LeadFields)
	}
	if ada.LastContact == nil || ada.LastContact.Format("2006-01-02") != "2026-02-01" {
		t.Fatalf("expected last contact 2026-02-01, got %v", ada.LastContact)
	}
	if rows[1].Number != 3 {
		t.Fatalf("expected source row number 3, got %d", rows[1].Number)
	}
}

func TestParseCSVKeepsRowsWithBadDates(t *testing.T) {
	input := "email,last contact,next follow up\nx@x.com,2024-01-01,soon\ny@x.com,whenever,2026-04-01T10:00:00Z\n"

	rows, warnings, err := ParseCSV(strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected both rows kept, got %d", len(rows))
	}
	if rows[0].LastContact == nil || rows[0].NextFollowUp != nil {
		t.Fatalf("expected only lastContact on row 1, got %+v", rows[0])
	}
	if rows[1].LastContact != nil || rows[1].NextFollowUp == nil {
		t.Fatalf("expected only nextFollowUp on row 2, got %+v", rows[1])
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %+v", warnings)
	}
	if warnings[0].Row != 1 || warnings[0].Field != "nextFollowUp" {
		t.Fatalf("unexpected first warning %+v", warnings[0])
	}
	if warnings[1].Row != 2 || warnings[1].Field != "lastContact" {
		t.Fatalf("unexpected second warning %+v", warnings[1])
	}
}

func TestParseCSVLimits(t *testing.T) {
	if _, _, err := ParseCSV(strings.NewReader(""), 0); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}

	input := "email\na@x.com\nb@x.com\nc@x.com\n"
	if _, _, err := ParseCSV(strings.NewReader(input), 2); !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("expected ErrTooManyRows, got %v", err)
	}
}
