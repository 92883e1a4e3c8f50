package transport

import (
	"time"

	"leadflow_backend/internal/leads/importer"
	"leadflow_backend/internal/leads/scoring"

	"github.com/google/uuid"
)

// Sort keys for lead listings.
const (
	SortByCreatedAt = "createdAt"
	SortByScore     = "score"
	SortByName      = "name"
)

// Request DTOs
type CreateLeadRequest struct {
	Name         string     `json:"name" validate:"max=200"`
	Email        string     `json:"email" validate:"required,email,max=254"`
	Phone        string     `json:"phone" validate:"max=40"`
	Company      string     `json:"company" validate:"max=200"`
	Title        string     `json:"title" validate:"max=200"`
	Category     string     `json:"category" validate:"max=100"`
	Industry     string     `json:"industry" validate:"max=100"`
	Source       string     `json:"source" validate:"max=100"`
	Status       string     `json:"status" validate:"max=100"`
	Notes        string     `json:"notes" validate:"max=5000"`
	LastContact  *time.Time `json:"lastContact,omitempty"`
	NextFollowUp *time.Time `json:"nextFollowUp,omitempty"`
}

type UpdateLeadRequest struct {
	Name         *string      `json:"name,omitempty" validate:"omitempty,max=200"`
	Email        *string      `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone        *string      `json:"phone,omitempty" validate:"omitempty,max=40"`
	Company      *string      `json:"company,omitempty" validate:"omitempty,max=200"`
	Title        *string      `json:"title,omitempty" validate:"omitempty,max=200"`
	Category     *string      `json:"category,omitempty" validate:"omitempty,max=100"`
	Industry     *string      `json:"industry,omitempty" validate:"omitempty,max=100"`
	Source       *string      `json:"source,omitempty" validate:"omitempty,max=100"`
	Status       *string      `json:"status,omitempty" validate:"omitempty,notblank,max=100"`
	Notes        *string      `json:"notes,omitempty" validate:"omitempty,max=5000"`
	LastContact  OptionalTime `json:"lastContact,omitempty" validate:"-"`
	NextFollowUp OptionalTime `json:"nextFollowUp,omitempty" validate:"-"`
}

type ListLeadsRequest struct {
	Status string `form:"status" validate:"max=100"`
	Search string `form:"search" validate:"max=200"`
	SortBy string `form:"sortBy" validate:"omitempty,oneof=createdAt score name"`
	Order  string `form:"order" validate:"omitempty,oneof=asc desc"`
}

// ImportLeadsRequest carries raw rows. Rows are validated by the importer,
// never rejected as a whole.
type ImportLeadsRequest struct {
	Source string         `json:"source" validate:"max=100"`
	Leads  []importer.Row `json:"leads" validate:"required"`
}

type AddActivityRequest struct {
	Type    string `json:"type" validate:"required,oneof=Call Email Note Meeting"`
	Details string `json:"details" validate:"required,notblank,max=5000"`
}

type UpdateScoringConfigRequest struct {
	Fields []scoring.FieldConfig `json:"fields" validate:"required"`
}

type PreviewScoreRequest struct {
	Lead   CreateLeadRequest     `json:"lead"`
	Fields []scoring.FieldConfig `json:"fields,omitempty"`
}

// Response DTOs
type LeadResponse struct {
	ID           uuid.UUID  `json:"id"`
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
	Score        int        `json:"score"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

type ImportResponse struct {
	ImportedCount int                   `json:"importedCount"`
	SkippedCount  int                   `json:"skippedCount"`
	InvalidCount  int                   `json:"invalidCount"`
	Errors        []importer.RowError   `json:"errors"`
	Skipped       []importer.SkippedRow `json:"skipped"`
	Warnings      []importer.RowError   `json:"warnings"`
	LeadIDs       []uuid.UUID           `json:"leadIds"`
}

type ActivityResponse struct {
	ID        uuid.UUID  `json:"id"`
	LeadID    uuid.UUID  `json:"leadId"`
	Timestamp time.Time  `json:"timestamp"`
	Type      string     `json:"type"`
	Details   string     `json:"details"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
}

type ScoringConfigResponse struct {
	Fields        []scoring.FieldConfig `json:"fields"`
	ActiveWeight  int                   `json:"activeWeight"`
	ConfigVersion uint64                `json:"configVersion"`
}

type SweepResponse struct {
	ConfigVersion uint64 `json:"configVersion"`
	Rescored      int    `json:"rescored"`
	Changed       int    `json:"changed"`
	DurationMs    int64  `json:"durationMs"`
}

type UpdateScoringConfigResponse struct {
	Config ScoringConfigResponse `json:"config"`
	Sweep  SweepResponse         `json:"sweep"`
}

type PreviewScoreResponse struct {
	Score        int                         `json:"score"`
	Fields       []scoring.FieldContribution `json:"fields"`
	ActiveWeight int                         `json:"activeWeight"`
	WeightValid  bool                        `json:"weightValid"`
}

type ImportJobResponse struct {
	JobID      string          `json:"jobId"`
	Status     string          `json:"status"`
	FileName   string          `json:"fileName,omitempty"`
	Result     *ImportResponse `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
}
