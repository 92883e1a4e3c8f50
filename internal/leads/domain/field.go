package domain

import "strings"

// Field names a lead attribute that can carry scoring rules.
type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldCompany  Field = "company"
	FieldTitle    Field = "title"
	FieldCategory Field = "category"
	FieldIndustry Field = "industry"
	FieldSource   Field = "source"
	FieldStatus   Field = "status"
	FieldNotes    Field = "notes"
)

// ScorableFields lists every valid Field in display order.
var ScorableFields = []Field{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldCompany,
	FieldTitle,
	FieldCategory,
	FieldIndustry,
	FieldSource,
	FieldStatus,
	FieldNotes,
}

// Valid reports whether f is one of ScorableFields.
func (f Field) Valid() bool {
	for _, known := range ScorableFields {
		if f == known {
			return true
		}
	}
	return false
}

// ParseField resolves a field name case-insensitively.
func ParseField(raw string) (Field, bool) {
	candidate := Field(strings.ToLower(strings.TrimSpace(raw)))
	if candidate.Valid() {
		return candidate, true
	}
	return "", false
}
