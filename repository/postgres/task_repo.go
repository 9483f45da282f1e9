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

const taskColumns = `id, title, description, project_id, assigned_to, created_by, priority, status,
	due_date, completed_at, created_at, updated_at`

type taskRepository struct {
	pool  *pgxpool.Pool
	clock domain.Clock
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool, clock domain.Clock) repository.TaskRepository {
	return &taskRepository{pool: pool, clock: clock}
}

func (r *taskRepository) Get(ctx context.Context, filter repository.TaskFilter) (*domain.Task, error) {
	where := query.Tasks(dialect, filter)
	stmt := rebind(`SELECT ` + taskColumns + ` FROM tasks` + where.SQL() + ` LIMIT 1`)
	return scanTask(r.pool.QueryRow(ctx, stmt, where.Args()...))
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	where := query.Tasks(dialect, filter)
	stmt := rebind(`SELECT ` + taskColumns + ` FROM tasks` + where.SQL() +
		query.TaskOrderBy(filter.Order) + query.Page(filter.Limit, filter.Offset))

	rows, err := r.pool.Query(ctx, stmt, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) Count(ctx context.Context, filter repository.TaskFilter) (int, error) {
	where := query.Tasks(dialect, filter)
	var n int
	if err := r.pool.QueryRow(ctx, rebind(`SELECT COUNT(*) FROM tasks`+where.SQL()), where.Args()...).Scan(&n); err != nil {
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

	const stmt = `
	INSERT INTO tasks (id, title, description, project_id, assigned_to, created_by, priority, status,
		due_date, completed_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, stmt,
		task.ID,
		task.Title,
		task.Description,
		task.ProjectID,
		nullString(task.AssigneeID),
		task.CreatorID,
		string(task.Priority),
		string(task.Status),
		task.DueDate,
		nullTime(task.CompletedAt),
		task.CreatedAt,
		task.UpdatedAt,
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

	const stmt = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		project_id = $4,
		assigned_to = $5,
		created_by = $6,
		priority = $7,
		status = $8,
		due_date = $9,
		completed_at = $10,
		updated_at = $11
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, stmt,
		task.ID,
		task.Title,
		task.Description,
		task.ProjectID,
		nullString(task.AssigneeID),
		task.CreatorID,
		string(task.Priority),
		string(task.Status),
		task.DueDate,
		nullTime(task.CompletedAt),
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task     domain.Task
		priority string
		status   string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.ProjectID,
		&task.AssigneeID,
		&task.CreatorID,
		&priority,
		&status,
		&task.DueDate,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	task.Priority = domain.Priority(priority)
	task.Status = domain.Status(status)
	return &task, nil
}
