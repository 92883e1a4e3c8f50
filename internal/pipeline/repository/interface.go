package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Stage is one column of the lead pipeline. Order is the 0-based position.
type Stage struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	Order     int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// StageReader loads the ordered stage list.
type StageReader interface {
	List(ctx context.Context) ([]Stage, error)
}

// StageWriter replaces the stored stage list. Stages are always written as a
// whole so that positions stay dense.
type StageWriter interface {
	SaveAll(ctx context.Context, stages []Stage) error
}

// Repository combines all pipeline stage repository operations.
type Repository interface {
	StageReader
	StageWriter
}
