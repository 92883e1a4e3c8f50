package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new pipeline stage repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// List retrieves all stages by position.
func (r *Repo) List(ctx context.Context) ([]Stage, error) {
	query := `
		SELECT id, name, color, position, created_at, updated_at
		FROM pipeline_stages
		ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pipeline stages: %w", err)
	}
	defer rows.Close()

	stages, err := pgx.CollectRows(rows, pgx.RowToStructByName[Stage])
	if err != nil {
		return nil, fmt.Errorf("scan pipeline stages: %w", err)
	}
	return stages, nil
}

// SaveAll upserts every stage and removes stages that are no longer listed,
// in one transaction. Positions are first moved out of the way so the unique
// position constraint holds at every statement.
func (r *Repo) SaveAll(ctx context.Context, stages []Stage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save stages: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]uuid.UUID, len(stages))
	for i, s := range stages {
		ids[i] = s.ID
	}

	if _, err := tx.Exec(ctx, `DELETE FROM pipeline_stages WHERE NOT (id = ANY($1))`, ids); err != nil {
		return fmt.Errorf("delete removed stages: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE pipeline_stages SET position = -1 - position`); err != nil {
		return fmt.Errorf("park stage positions: %w", err)
	}

	batch := &pgx.Batch{}
	for _, s := range stages {
		batch.Queue(`
			INSERT INTO pipeline_stages (id, name, color, position, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				color = EXCLUDED.color,
				position = EXCLUDED.position,
				updated_at = EXCLUDED.updated_at`,
			s.ID, s.Name, s.Color, s.Order, s.CreatedAt, s.UpdatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert stages: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save stages: %w", err)
	}
	return nil
}
