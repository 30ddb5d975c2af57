package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glenjamindle/solartrack-pro/internal/model"
)

type RefusalRepository struct {
	db *pgxpool.Pool
}

func NewRefusalRepository(db *pgxpool.Pool) *RefusalRepository {
	return &RefusalRepository{db: db}
}

// CreateInTx inserts a pile refusal inside an existing transaction.
func (r *RefusalRepository) CreateInTx(ctx context.Context, tx pgx.Tx, ref *model.PileRefusal) error {
	query := `
        INSERT INTO pile_refusals (project_id, location, target_depth, reached_depth, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, 'flagged', NOW(), NOW())
        RETURNING id, status, created_at, updated_at
    `
	return tx.QueryRow(ctx, query,
		ref.ProjectID,
		ref.Location,
		ref.TargetDepth,
		ref.ReachedDepth,
	).Scan(&ref.ID, &ref.Status, &ref.CreatedAt, &ref.UpdatedAt)
}

// FindByID returns a refusal by id.
func (r *RefusalRepository) FindByID(ctx context.Context, id int) (*model.PileRefusal, error) {
	query := `
        SELECT id, project_id, location, target_depth, reached_depth, status, created_at, updated_at
        FROM pile_refusals
        WHERE id = $1
    `
	var ref model.PileRefusal
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ref.ID,
		&ref.ProjectID,
		&ref.Location,
		&ref.TargetDepth,
		&ref.ReachedDepth,
		&ref.Status,
		&ref.CreatedAt,
		&ref.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// ListByProject returns all refusals for a project, newest first.
func (r *RefusalRepository) ListByProject(ctx context.Context, projectID int) ([]model.PileRefusal, error) {
	query := `
        SELECT id, project_id, location, target_depth, reached_depth, status, created_at, updated_at
        FROM pile_refusals
        WHERE project_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refusals := []model.PileRefusal{}
	for rows.Next() {
		var ref model.PileRefusal
		err := rows.Scan(
			&ref.ID,
			&ref.ProjectID,
			&ref.Location,
			&ref.TargetDepth,
			&ref.ReachedDepth,
			&ref.Status,
			&ref.CreatedAt,
			&ref.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		refusals = append(refusals, ref)
	}

	return refusals, rows.Err()
}

// UpdateStatus sets refusal status (e.g. remediation_open, resolved).
func (r *RefusalRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	query := `
        UPDATE pile_refusals
        SET status = $1, updated_at = NOW()
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}
