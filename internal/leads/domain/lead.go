// Package domain provides core business types for the leads bounded context.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LeadFields are the caller-editable attributes of a lead.
type LeadFields struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Company      string     `json:"company"`
	Title        string     `json:"title"`
	Category     string     `json:"category"`
	Industry     string     `json:"industry"`
	Source       string     `json:"source"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes"`
	LastContact  *time.Time `json:"lastContact,omitempty"`
	NextFollowUp *time.Time `json:"nextFollowUp,omitempty"`
}

// Lead is a sales prospect tracked through the pipeline. Score is derived and
// only ever written by the mutation gateway.
type Lead struct {
	ID uuid.UUID `json:"id"`
	LeadFields
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EmailKey is the dedup key: trimmed, lowercased email.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Value returns the lead's value for a scoring field. Unknown fields read as empty.
func (f LeadFields) Value(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldCompany:
		return f.Company
	case FieldTitle:
		return f.Title
	case FieldCategory:
		return f.Category
	case FieldIndustry:
		return f.Industry
	case FieldSource:
		return f.Source
	case FieldStatus:
		return f.Status
	case FieldNotes:
		return f.Notes
	default:
		return ""
	}
}

// Clone returns a deep copy; the time pointers are not shared.
func (l Lead) Clone() Lead {
	out := l
	out.LastContact = cloneTime(l.LastContact)
	out.NextFollowUp = cloneTime(l.NextFollowUp)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
