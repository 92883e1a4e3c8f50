package domain

import (
	"strings"

	"leadflow_backend/platform/phone"
	"leadflow_backend/platform/sanitize"
)

// Normalized returns a copy with whitespace trimmed, markup stripped and the
// phone number formatted as E.164 when it parses for region. Status is left
// for the caller to resolve against the pipeline.
func (f LeadFields) Normalized(phoneRegion string) LeadFields {
	out := f
	out.Name = sanitize.Line(f.Name)
	out.Email = strings.TrimSpace(f.Email)
	out.Phone = phone.NormalizeE164(f.Phone, phoneRegion)
	out.Company = sanitize.Line(f.Company)
	out.Title = sanitize.Line(f.Title)
	out.Category = sanitize.Line(f.Category)
	out.Industry = sanitize.Line(f.Industry)
	out.Source = sanitize.Line(f.Source)
	out.Status = strings.TrimSpace(f.Status)
	out.Notes = sanitize.Text(f.Notes)
	out.LastContact = cloneTime(f.LastContact)
	out.NextFollowUp = cloneTime(f.NextFollowUp)
	return out
}
