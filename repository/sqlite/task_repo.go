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

const taskColumns = `id, title, description, project_id, assigned_to, created_by, priority, status,
	due_date, completed_at, created_at, updated_at`

type taskRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	ProjectID   string         `db:"project_id"`
	AssignedTo  sql.NullString `db:"assigned_to"`
	CreatedBy   string         `db:"created_by"`
	Priority    string         `db:"priority"`
	Status      string         `db:"status"`
	DueDate     string         `db:"due_date"`
	CompletedAt sql.NullString `db:"completed_at"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
}

func (r taskRow) toDomain() (domain.Task, error) {
	t := domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		ProjectID:   r.ProjectID,
		AssigneeID:  stringPtr(r.AssignedTo),
		CreatorID:   r.CreatedBy,
		Priority:    domain.Priority(r.Priority),
		Status:      domain.Status(r.Status),
	}
	var err error
	if t.DueDate, err = decodeDate(r.DueDate); err != nil {
		return t, err
	}
	if t.CompletedAt, err = decodeNullTime(r.CompletedAt); err != nil {
		return t, err
	}
	if t.CreatedAt, err = decodeTime(r.CreatedAt); err != nil {
		return t, err
	}
	if t.UpdatedAt, err = decodeTime(r.UpdatedAt); err != nil {
		return t, err
	}
	return t, nil
}

type taskRepository struct {
	db    *sqlx.DB
	clock domain.Clock
}

// NewTaskRepository returns a SQLite-backed TaskRepository.
func NewTaskRepository(db *sqlx.DB, clock domain.Clock) repository.TaskRepository {
	return &taskRepository{db: db, clock: clock}
}

func (r *taskRepository) Get(ctx context.Context, filter repository.TaskFilter) (*domain.Task, error) {
	filter.Limit, filter.Offset = 1, 0
	tasks, err := r.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return &tasks[0], nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	where := query.Tasks(dialect, filter)
	stmt := "SELECT " + taskColumns + " FROM tasks" + where.SQL() +
		query.TaskOrderBy(filter.Order) + query.Page(filter.Limit, filter.Offset)

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, stmt, where.Args()...); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		t, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *taskRepository) Count(ctx context.Context, filter repository.TaskFilter) (int, error) {
	where := query.Tasks(dialect, filter)
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM tasks"+where.SQL(), where.Args()...); err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return n, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := r.clock.Now()
	task.Touch(now)
	task.ApplyCompletion(now)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, project_id, assigned_to, created_by, priority, status,
			due_date, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Description, task.ProjectID, nullString(task.AssigneeID), task.CreatorID,
		string(task.Priority), string(task.Status),
		encodeDate(task.DueDate), encodeNullTime(task.CompletedAt),
		encodeTime(task.CreatedAt), encodeTime(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	now := r.clock.Now()
	task.Touch(now)
	task.ApplyCompletion(now)

	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, project_id = ?, assigned_to = ?, created_by = ?,
			priority = ?, status = ?, due_date = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		task.Title, task.Description, task.ProjectID, nullString(task.AssigneeID), task.CreatorID,
		string(task.Priority), string(task.Status),
		encodeDate(task.DueDate), encodeNullTime(task.CompletedAt), encodeTime(task.UpdatedAt),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
