package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/query"
)

const projectColumns = `id, name, description, created_by, start_date, end_date, status, created_at, updated_at`

type projectRepository struct {
	pool  *pgxpool.Pool
	clock domain.Clock
}

// NewProjectRepository returns a Postgres-backed ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool, clock domain.Clock) repository.ProjectRepository {
	return &projectRepository{pool: pool, clock: clock}
}

func (r *projectRepository) Get(ctx context.Context, filter repository.ProjectFilter) (*domain.Project, error) {
	where := query.Projects(filter)
	stmt := rebind(`SELECT ` + projectColumns + ` FROM projects` + where.SQL() + ` LIMIT 1`)
	return scanProject(r.pool.QueryRow(ctx, stmt, where.Args()...))
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	where := query.Projects(filter)
	stmt := rebind(`SELECT ` + projectColumns + ` FROM projects` + where.SQL() +
		` ORDER BY created_at DESC, id DESC` + query.Page(filter.Limit, filter.Offset))

	rows, err := r.pool.Query(ctx, stmt, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

func (r *projectRepository) Count(ctx context.Context, filter repository.ProjectFilter) (int, error) {
	where := query.Projects(filter)
	var n int
	if err := r.pool.QueryRow(ctx, rebind(`SELECT COUNT(*) FROM projects`+where.SQL()), where.Args()...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting projects: %w", err)
	}
	return n, nil
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	project.Touch(r.clock.Now())

	const stmt = `
	INSERT INTO projects (id, name, description, created_by, start_date, end_date, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, stmt,
		project.ID,
		project.Name,
		project.Description,
		project.OwnerID,
		project.StartDate,
		nullTime(project.EndDate),
		string(project.Status),
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}
	return nil
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return domain.ErrInvalidPayload
	}
	project.Touch(r.clock.Now())

	const stmt = `
	UPDATE projects
	SET name = $2,
		description = $3,
		created_by = $4,
		start_date = $5,
		end_date = $6,
		status = $7,
		updated_at = $8
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, stmt,
		project.ID,
		project.Name,
		project.Description,
		project.OwnerID,
		project.StartDate,
		nullTime(project.EndDate),
		string(project.Status),
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating project %s: %w", project.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func scanProject(row scanner) (*domain.Project, error) {
	var (
		project domain.Project
		status  string
	)
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.OwnerID,
		&project.StartDate,
		&project.EndDate,
		&status,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	project.Status = domain.Status(status)
	return &project, nil
}
