package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glenjamindle/solartrack-pro/internal/model"
)

type EntryRepository struct {
	db *pgxpool.Pool
}

func NewEntryRepository(db *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{db: db}
}

// Pool exposes the underlying pool so services can open transactions that
// span the entry insert and the outbox event.
func (r *EntryRepository) Pool() *pgxpool.Pool {
	return r.db
}

// CreateInTx inserts a production entry inside an existing transaction.
// The client-generated idempotency key is unique per project; a replayed
// mutation hits ON CONFLICT and reports inserted=false instead of duplicating.
func (r *EntryRepository) CreateInTx(ctx context.Context, tx pgx.Tx, e *model.ProductionEntry) (bool, error) {
	query := `
        INSERT INTO production_entries (
            project_id, crew, date, piles, racking_tables, modules, idempotency_key, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        ON CONFLICT (project_id, idempotency_key) DO NOTHING
        RETURNING id, created_at
    `
	err := tx.QueryRow(ctx, query,
		e.ProjectID,
		e.Crew,
		e.Date,
		e.Piles,
		e.RackingTables,
		e.Modules,
		e.IdempotencyKey,
	).Scan(&e.ID, &e.CreatedAt)
	if err == pgx.ErrNoRows {
		// 幂等键冲突：该条离线变更已经同步过
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByProject returns all production entries for a project, oldest first.
func (r *EntryRepository) ListByProject(ctx context.Context, projectID int) ([]model.ProductionEntry, error) {
	query := `
        SELECT id, project_id, crew, date, piles, racking_tables, modules, idempotency_key, created_at
        FROM production_entries
        WHERE project_id = $1
        ORDER BY date ASC, id ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.ProductionEntry{}
	for rows.Next() {
		var e model.ProductionEntry
		err := rows.Scan(
			&e.ID,
			&e.ProjectID,
			&e.Crew,
			&e.Date,
			&e.Piles,
			&e.RackingTables,
			&e.Modules,
			&e.IdempotencyKey,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// FindByID returns a production entry by id.
func (r *EntryRepository) FindByID(ctx context.Context, id int) (*model.ProductionEntry, error) {
	query := `
        SELECT id, project_id, crew, date, piles, racking_tables, modules, idempotency_key, created_at
        FROM production_entries
        WHERE id = $1
    `
	var e model.ProductionEntry
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.ProjectID,
		&e.Crew,
		&e.Date,
		&e.Piles,
		&e.RackingTables,
		&e.Modules,
		&e.IdempotencyKey,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
