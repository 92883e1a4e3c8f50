package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateStageRequest adds a stage. Without a position the stage is appended.
type CreateStageRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Color    string `json:"color" validate:"omitempty,max=20"`
	Position *int   `json:"position,omitempty" validate:"omitempty,min=0"`
}

// UpdateStageRequest renames or recolors a stage.
type UpdateStageRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,notblank,max=100"`
	Color *string `json:"color,omitempty" validate:"omitempty,max=20"`
}

// ReorderRequest lists every stage id in the new order.
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// StageResponse represents a stage in API responses.
type StageResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StageListResponse wraps the ordered stage list.
type StageListResponse struct {
	Items []StageResponse `json:"items"`
	Total int             `json:"total"`
}
