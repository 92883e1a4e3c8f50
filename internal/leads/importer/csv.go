package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
)

// ErrEmptyFile is returned when the CSV has no header row.
var ErrEmptyFile = errors.New("csv file is empty")

// ErrTooManyRows is returned when the CSV exceeds the configured row limit.
var ErrTooManyRows = errors.New("csv file has too many rows")

var dateLayouts = []string{time.RFC3339, "2006-01-02", "01/02/2006"}

type column int

const (
	colIgnored column = iota
	colName
	colEmail
	colPhone
	colCompany
	colTitle
	colCategory
	colIndustry
	colSource
	colStatus
	colNotes
	colLastContact
	colNextFollowUp
)

var headerAliases = map[string]column{
	"name":           colName,
	"fullname":       colName,
	"contact":        colName,
	"email":          colEmail,
	"emailaddress":   colEmail,
	"phone":          colPhone,
	"phonenumber":    colPhone,
	"company":        colCompany,
	"organization":   colCompany,
	"title":          colTitle,
	"jobtitle":       colTitle,
	"category":       colCategory,
	"industry":       colIndustry,
	"source":         colSource,
	"leadsource":     colSource,
	"status":         colStatus,
	"stage":          colStatus,
	"notes":          colNotes,
	"lastcontact":    colLastContact,
	"nextfollowup":   colNextFollowUp,
	"followup":       colNextFollowUp,
	"nextfollowupat": colNextFollowUp,
}

// ParseCSV reads a header-mapped CSV into rows. Headers are matched ignoring
// case, spaces, dashes and underscores; unknown columns are ignored. An
// unparseable date leaves that field unset and is reported as a warning; the
// row itself is still returned. maxRows <= 0 disables the limit.
func ParseCSV(r io.Reader, maxRows int) ([]Row, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]column, len(header))
	for i, h := range header {
		columns[i] = headerAliases[headerKey(h)]
	}

	var (
		rows     []Row
		warnings []RowError
	)
	for number := 1; ; number++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row %d: %w", number, err)
		}
		if maxRows > 0 && number > maxRows {
			return nil, nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, maxRows)
		}
		if isEmptyRecord(record) {
			continue
		}

		row, rowWarnings := mapRecord(number, columns, record)
		warnings = append(warnings, rowWarnings...)
		rows = append(rows, row)
	}
	return rows, warnings, nil
}

func mapRecord(number int, columns []column, record []string) (Row, []RowError) {
	row := Row{Number: number}
	var warnings []RowError
	for i, value := range record {
		if i >= len(columns) {
			break
		}
		value = strings.TrimSpace(value)
		switch columns[i] {
		case colName:
			row.Name = value
		case colEmail:
			row.Email = value
		case colPhone:
			row.Phone = value
		case colCompany:
			row.Company = value
		case colTitle:
			row.Title = value
		case colCategory:
			row.Category = value
		case colIndustry:
			row.Industry = value
		case colSource:
			row.Source = value
		case colStatus:
			row.Status = value
		case colNotes:
			row.Notes = value
		case colLastContact, colNextFollowUp:
			if value == "" {
				continue
			}
			t, ok := parseDate(value)
			if !ok {
				field := "lastContact"
				if columns[i] == colNextFollowUp {
					field = "nextFollowUp"
				}
				warnings = append(warnings, RowError{Row: number, Field: field, Reason: "unrecognized date " + value + ", left empty"})
				continue
			}
			if columns[i] == colLastContact {
				row.LastContact = &t
			} else {
				row.NextFollowUp = &t
			}
		}
	}
	return row, warnings
}

func headerKey(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(h)))
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func isEmptyRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// RowsFromFields wraps plain lead fields as batch rows.
func RowsFromFields(fields []domain.LeadFields) []Row {
	rows := make([]Row, len(fields))
	for i, f := range fields {
		rows[i] = Row{Number: i + 1, LeadFields: f}
	}
	return rows
}
