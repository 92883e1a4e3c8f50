package management

import (
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
)

// ToLeadResponse maps a domain lead to its wire form.
func ToLeadResponse(l domain.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:           l.ID,
		Name:         l.Name,
		Email:        l.Email,
		Phone:        l.Phone,
		Company:      l.Company,
		Title:        l.Title,
		Category:     l.Category,
		Industry:     l.Industry,
		Source:       l.Source,
		Status:       l.Status,
		Notes:        l.Notes,
		LastContact:  l.LastContact,
		NextFollowUp: l.NextFollowUp,
		Score:        l.Score,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// ToActivityResponse maps an activity entry to its wire form.
func ToActivityResponse(e domain.ActivityEntry) transport.ActivityResponse {
	return transport.ActivityResponse{
		ID:        e.ID,
		LeadID:    e.LeadID,
		Timestamp: e.Timestamp,
		Type:      string(e.Type),
		Details:   e.Details,
		UserID:    e.UserID,
	}
}

func toScoringConfigResponse(snap *repository.Snapshot) transport.ScoringConfigResponse {
	cfg := snap.Config()
	return transport.ScoringConfigResponse{
		Fields:        cfg.Fields,
		ActiveWeight:  cfg.ActiveWeight(),
		ConfigVersion: snap.ConfigVersion(),
	}
}

func createFields(req transport.CreateLeadRequest) domain.LeadFields {
	return domain.LeadFields{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Company:      req.Company,
		Title:        req.Title,
		Category:     req.Category,
		Industry:     req.Industry,
		Source:       req.Source,
		Status:       req.Status,
		Notes:        req.Notes,
		LastContact:  req.LastContact,
		NextFollowUp: req.NextFollowUp,
	}
}

// applyUpdate copies the fields present in req onto f and returns the names
// of the fields that were supplied.
func applyUpdate(f *domain.LeadFields, req transport.UpdateLeadRequest) []string {
	changed := make([]string, 0, 4)
	set := func(dst *string, src *string, name domain.Field) {
		if src == nil {
			return
		}
		*dst = *src
		changed = append(changed, string(name))
	}

	set(&f.Name, req.Name, domain.FieldName)
	set(&f.Email, req.Email, domain.FieldEmail)
	set(&f.Phone, req.Phone, domain.FieldPhone)
	set(&f.Company, req.Company, domain.FieldCompany)
	set(&f.Title, req.Title, domain.FieldTitle)
	set(&f.Category, req.Category, domain.FieldCategory)
	set(&f.Industry, req.Industry, domain.FieldIndustry)
	set(&f.Source, req.Source, domain.FieldSource)
	set(&f.Status, req.Status, domain.FieldStatus)
	set(&f.Notes, req.Notes, domain.FieldNotes)

	if req.LastContact.Set {
		f.LastContact = req.LastContact.Value
		changed = append(changed, "lastContact")
	}
	if req.NextFollowUp.Set {
		f.NextFollowUp = req.NextFollowUp.Value
		changed = append(changed, "nextFollowUp")
	}
	return changed
}
