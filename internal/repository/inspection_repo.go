package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glenjamindle/solartrack-pro/internal/model"
)

type InspectionRepository struct {
	db *pgxpool.Pool
}

func NewInspectionRepository(db *pgxpool.Pool) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// Create inserts an inspection record.
func (r *InspectionRepository) Create(ctx context.Context, i *model.Inspection) error {
	query := `
        INSERT INTO inspections (project_id, category, result, notes, date, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query,
		i.ProjectID,
		i.Category,
		i.Result,
		i.Notes,
		i.Date,
	).Scan(&i.ID, &i.CreatedAt)
}

// ListByProject returns all inspections for a project, newest first.
func (r *InspectionRepository) ListByProject(ctx context.Context, projectID int) ([]model.Inspection, error) {
	query := `
        SELECT id, project_id, category, result, notes, date, created_at
        FROM inspections
        WHERE project_id = $1
        ORDER BY date DESC, id DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inspections := []model.Inspection{}
	for rows.Next() {
		var i model.Inspection
		err := rows.Scan(
			&i.ID,
			&i.ProjectID,
			&i.Category,
			&i.Result,
			&i.Notes,
			&i.Date,
			&i.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		inspections = append(inspections, i)
	}

	return inspections, rows.Err()
}

// ExistsRemediationForRefusal reports whether a remediation inspection has
// already been opened for a refusal (idempotency check for the MQ handler).
func (r *InspectionRepository) ExistsRemediationForRefusal(ctx context.Context, projectID int, refusalLocation string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM inspections
            WHERE project_id = $1 AND category = 'remediation' AND notes LIKE '%' || $2 || '%'
        )
    `
	var exists bool
	err := r.db.QueryRow(ctx, query, projectID, refusalLocation).Scan(&exists)
	return exists, err
}
