package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/query"
)

const projectColumns = `id, name, description, created_by, start_date, end_date, status, created_at, updated_at`

type projectRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	CreatedBy   string         `db:"created_by"`
	StartDate   string         `db:"start_date"`
	EndDate     sql.NullString `db:"end_date"`
	Status      string         `db:"status"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
}

func (r projectRow) toDomain() (domain.Project, error) {
	p := domain.Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		OwnerID:     r.CreatedBy,
		Status:      domain.Status(r.Status),
	}
	var err error
	if p.StartDate, err = decodeDate(r.StartDate); err != nil {
		return p, err
	}
	if p.EndDate, err = decodeNullDate(r.EndDate); err != nil {
		return p, err
	}
	if p.CreatedAt, err = decodeTime(r.CreatedAt); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = decodeTime(r.UpdatedAt); err != nil {
		return p, err
	}
	return p, nil
}

type projectRepository struct {
	db    *sqlx.DB
	clock domain.Clock
}

// NewProjectRepository returns a SQLite-backed ProjectRepository.
func NewProjectRepository(db *sqlx.DB, clock domain.Clock) repository.ProjectRepository {
	return &projectRepository{db: db, clock: clock}
}

func (r *projectRepository) Get(ctx context.Context, filter repository.ProjectFilter) (*domain.Project, error) {
	filter.Limit, filter.Offset = 1, 0
	projects, err := r.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, domain.ErrProjectNotFound
	}
	return &projects[0], nil
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	where := query.Projects(filter)
	stmt := "SELECT " + projectColumns + " FROM projects" + where.SQL() +
		" ORDER BY created_at DESC, id DESC" + query.Page(filter.Limit, filter.Offset)

	var rows []projectRow
	if err := r.db.SelectContext(ctx, &rows, stmt, where.Args()...); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	projects := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (r *projectRepository) Count(ctx context.Context, filter repository.ProjectFilter) (int, error) {
	where := query.Projects(filter)
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM projects"+where.SQL(), where.Args()...); err != nil {
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

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, created_by, start_date, end_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID, project.Name, project.Description, project.OwnerID,
		encodeDate(project.StartDate), encodeNullDate(project.EndDate), string(project.Status),
		encodeTime(project.CreatedAt), encodeTime(project.UpdatedAt),
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

	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, created_by = ?, start_date = ?, end_date = ?,
			status = ?, updated_at = ?
		WHERE id = ?`,
		project.Name, project.Description, project.OwnerID,
		encodeDate(project.StartDate), encodeNullDate(project.EndDate),
		string(project.Status), encodeTime(project.UpdatedAt),
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project %s: %w", project.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}
