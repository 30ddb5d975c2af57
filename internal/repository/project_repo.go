package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glenjamindle/solartrack-pro/internal/model"
)

type ProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project plan.
func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) error {
	query := `
        INSERT INTO projects (
            user_id, name,
            total_piles, total_racking_tables, total_modules,
            planned_start_date, planned_end_date,
            planned_piles_per_day, planned_racking_per_day, planned_modules_per_day,
            created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		p.UserID,
		p.Name,
		p.TotalPiles,
		p.TotalRackingTables,
		p.TotalModules,
		p.PlannedStartDate,
		p.PlannedEndDate,
		p.PlannedPilesPerDay,
		p.PlannedRackingPerDay,
		p.PlannedModulesPerDay,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// FindByID returns a project by id, scoped to the owning user.
func (r *ProjectRepository) FindByID(ctx context.Context, id, userID int) (*model.Project, error) {
	query := `
        SELECT id, user_id, name,
               total_piles, total_racking_tables, total_modules,
               planned_start_date, planned_end_date,
               planned_piles_per_day, planned_racking_per_day, planned_modules_per_day,
               created_at, updated_at
        FROM projects
        WHERE id = $1 AND user_id = $2
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.TotalPiles,
		&p.TotalRackingTables,
		&p.TotalModules,
		&p.PlannedStartDate,
		&p.PlannedEndDate,
		&p.PlannedPilesPerDay,
		&p.PlannedRackingPerDay,
		&p.PlannedModulesPerDay,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns all projects for a user.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID int) ([]model.Project, error) {
	query := `
        SELECT id, user_id, name,
               total_piles, total_racking_tables, total_modules,
               planned_start_date, planned_end_date,
               planned_piles_per_day, planned_racking_per_day, planned_modules_per_day,
               created_at, updated_at
        FROM projects
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Name,
			&p.TotalPiles,
			&p.TotalRackingTables,
			&p.TotalModules,
			&p.PlannedStartDate,
			&p.PlannedEndDate,
			&p.PlannedPilesPerDay,
			&p.PlannedRackingPerDay,
			&p.PlannedModulesPerDay,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// UpdatePlan updates the target quantities and planned dates of a project.
func (r *ProjectRepository) UpdatePlan(ctx context.Context, p *model.Project) error {
	query := `
        UPDATE projects
        SET name = $1,
            total_piles = $2, total_racking_tables = $3, total_modules = $4,
            planned_start_date = $5, planned_end_date = $6,
            planned_piles_per_day = $7, planned_racking_per_day = $8, planned_modules_per_day = $9,
            updated_at = NOW()
        WHERE id = $10 AND user_id = $11
    `
	_, err := r.db.Exec(ctx, query,
		p.Name,
		p.TotalPiles,
		p.TotalRackingTables,
		p.TotalModules,
		p.PlannedStartDate,
		p.PlannedEndDate,
		p.PlannedPilesPerDay,
		p.PlannedRackingPerDay,
		p.PlannedModulesPerDay,
		p.ID,
		p.UserID,
	)
	return err
}

// Delete removes a project.
func (r *ProjectRepository) Delete(ctx context.Context, id, userID int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
