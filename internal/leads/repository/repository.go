package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/scoring"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// Repository persists leads, the scoring configuration and activity entries
// to Postgres. It implements both Persister and Loader.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const upsertLeadSQL = `
	INSERT INTO leads (
		id, name, email, phone, company, title, category, industry, source, status,
		notes, last_contact, next_follow_up, score, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		email = EXCLUDED.email,
		phone = EXCLUDED.phone,
		company = EXCLUDED.company,
		title = EXCLUDED.title,
		category = EXCLUDED.category,
		industry = EXCLUDED.industry,
		source = EXCLUDED.source,
		status = EXCLUDED.status,
		notes = EXCLUDED.notes,
		last_contact = EXCLUDED.last_contact,
		next_follow_up = EXCLUDED.next_follow_up,
		score = EXCLUDED.score,
		updated_at = EXCLUDED.updated_at`

// SaveLeads upserts leads in a single transaction.
func (r *Repository) SaveLeads(ctx context.Context, leads []domain.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, l := range leads {
		batch.Queue(upsertLeadSQL,
			l.ID, l.Name, l.Email, l.Phone, l.Company, l.Title, l.Category, l.Industry, l.Source, l.Status,
			l.Notes, l.LastContact, l.NextFollowUp, l.Score, l.CreatedAt, l.UpdatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return translatePgError(err)
	}

	return tx.Commit(ctx)
}

// DeleteLead removes the lead row. Activity rows are kept.
func (r *Repository) DeleteLead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveScoringConfig stores the configuration and the changed scores atomically.
func (r *Repository) SaveScoringConfig(ctx context.Context, cfg scoring.Config, changed []domain.Lead) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal scoring config: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO scoring_config (id, config, version, updated_at)
		VALUES (1, $1, 1, now())
		ON CONFLICT (id) DO UPDATE SET
			config = EXCLUDED.config,
			version = scoring_config.version + 1,
			updated_at = now()
	`, payload); err != nil {
		return err
	}

	if len(changed) > 0 {
		batch := &pgx.Batch{}
		for _, l := range changed {
			batch.Queue(`UPDATE leads SET score = $2, updated_at = $3 WHERE id = $1`, l.ID, l.Score, l.UpdatedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// AppendActivity inserts one activity entry.
func (r *Repository) AppendActivity(ctx context.Context, e domain.ActivityEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_activities (id, lead_id, occurred_at, type, details, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.LeadID, e.Timestamp, string(e.Type), e.Details, e.UserID)
	return err
}

// LoadLeads returns all leads in creation order.
func (r *Repository) LoadLeads(ctx context.Context) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, phone, company, title, category, industry, source, status,
			notes, last_contact, next_follow_up, score, created_at, updated_at
		FROM leads
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Lead, 0)
	for rows.Next() {
		var l domain.Lead
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Title, &l.Category, &l.Industry, &l.Source, &l.Status,
			&l.Notes, &l.LastContact, &l.NextFollowUp, &l.Score, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, l)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// LoadScoringConfig returns the stored configuration; ok is false when none was saved.
func (r *Repository) LoadScoringConfig(ctx context.Context) (scoring.Config, bool, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `SELECT config FROM scoring_config WHERE id = 1`).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return scoring.Config{}, false, nil
	}
	if err != nil {
		return scoring.Config{}, false, err
	}

	var cfg scoring.Config
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return scoring.Config{}, false, fmt.Errorf("decode stored scoring config: %w", err)
	}
	return cfg, true, nil
}

// LoadActivities returns every stored activity entry in insertion order.
func (r *Repository) LoadActivities(ctx context.Context) ([]domain.ActivityEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, occurred_at, type, details, user_id
		FROM lead_activities
		ORDER BY occurred_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ActivityEntry, 0)
	for rows.Next() {
		var (
			e       domain.ActivityEntry
			entType string
		)
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Timestamp, &entType, &e.Details, &e.UserID); err != nil {
			return nil, err
		}
		e.Type = domain.ActivityType(entType)
		items = append(items, e)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}
