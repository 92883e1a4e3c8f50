// Package importer validates, deduplicates and scores bulk lead rows.
package importer

import (
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/platform/validator"

	"github.com/google/uuid"
)

const (
	reasonEmailRequired  = "email is required"
	reasonEmailInvalid   = "email is invalid"
	reasonDuplicateEmail = "duplicate email"
)

// Row is one candidate lead. Number is the 1-based position in the source
// file or request; zero means "use the position in the batch".
type Row struct {
	Number int `json:"-"`
	domain.LeadFields
}

// RowError reports a problem with one input row. In Plan.Errors it kept the
// row out of the import; as a parse warning it only cleared one field.
type RowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// SkippedRow is a structurally valid row dropped as a duplicate.
type SkippedRow struct {
	Row    int    `json:"row"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// Plan is the outcome of validating a batch. Nothing is committed yet.
type Plan struct {
	Created       []domain.Lead
	ImportedCount int
	SkippedCount  int
	Errors        []RowError
	Skipped       []SkippedRow
}

// ValidCount is the number of structurally valid rows.
func (p Plan) ValidCount() int {
	return p.ImportedCount + p.SkippedCount
}

// Importer turns raw rows into scored leads.
type Importer struct {
	validator   *validator.Validator
	phoneRegion string
	newID       func() uuid.UUID
}

// Option configures an Importer.
type Option func(*Importer)

// WithIDGenerator overrides uuid.New, used by tests.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(i *Importer) { i.newID = fn }
}

// New creates an Importer. phoneRegion is used for numbers without a country code.
func New(v *validator.Validator, phoneRegion string, opts ...Option) *Importer {
	imp := &Importer{
		validator:   v,
		phoneRegion: phoneRegion,
		newID:       uuid.New,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Plan processes rows in order. Blank or malformed emails are structural
// errors and are never compared with existing leads. Remaining rows are
// deduplicated on the normalized email against existing leads and against
// earlier rows of the same batch; the first occurrence wins.
func (imp *Importer) Plan(rows []Row, existing []domain.Lead, cfg scoring.Config, stages domain.StageSet, now time.Time) Plan {
	seen := make(map[string]struct{}, len(existing)+len(rows))
	for _, lead := range existing {
		seen[domain.EmailKey(lead.Email)] = struct{}{}
	}

	plan := Plan{Created: make([]domain.Lead, 0, len(rows))}
	for i, row := range rows {
		number := row.Number
		if number == 0 {
			number = i + 1
		}

		fields := row.LeadFields.Normalized(imp.phoneRegion)
		if reason := imp.emailProblem(fields.Email); reason != "" {
			plan.Errors = append(plan.Errors, RowError{Row: number, Field: string(domain.FieldEmail), Reason: reason})
			continue
		}

		key := domain.EmailKey(fields.Email)
		if _, dup := seen[key]; dup {
			plan.SkippedCount++
			plan.Skipped = append(plan.Skipped, SkippedRow{Row: number, Email: fields.Email, Reason: reasonDuplicateEmail})
			continue
		}
		seen[key] = struct{}{}

		fields.Status = stages.ResolveOrFirst(fields.Status)
		plan.Created = append(plan.Created, domain.Lead{
			ID:         imp.newID(),
			LeadFields: fields,
			Score:      scoring.ComputeScore(fields, cfg),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		plan.ImportedCount++
	}
	return plan
}

func (imp *Importer) emailProblem(email string) string {
	if email == "" {
		return reasonEmailRequired
	}
	if !imp.validator.IsEmail(email) {
		return reasonEmailInvalid
	}
	return ""
}
