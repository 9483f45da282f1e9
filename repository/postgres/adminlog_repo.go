package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/query"
)

type adminLogRepository struct {
	pool  *pgxpool.Pool
	clock domain.Clock
}

// NewAdminLogRepository creates a Postgres-backed AdminLogRepository.
func NewAdminLogRepository(pool *pgxpool.Pool, clock domain.Clock) repository.AdminLogRepository {
	return &adminLogRepository{pool: pool, clock: clock}
}

func (r *adminLogRepository) Append(ctx context.Context, entry *domain.AdminLogEntry) error {
	if entry == nil {
		return domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.clock.Now()
	}

	const stmt = `
	INSERT INTO admin_log (id, actor_id, object_type, object_id, object_repr, action, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, stmt,
		entry.ID,
		entry.ActorID,
		entry.ObjectType,
		entry.ObjectID,
		entry.ObjectRepr,
		string(entry.Action),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("appending admin log entry: %w", err)
	}
	return nil
}

func (r *adminLogRepository) List(ctx context.Context, filter repository.AdminLogFilter) ([]domain.AdminLogEntry, error) {
	where := query.AdminLog(filter)
	stmt := rebind(`SELECT id, actor_id, object_type, object_id, object_repr, action, created_at
	FROM admin_log` + where.SQL() + ` ORDER BY created_at DESC, id DESC` + query.Page(filter.Limit, filter.Offset))

	rows, err := r.pool.Query(ctx, stmt, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("listing admin log: %w", err)
	}
	defer rows.Close()

	var entries []domain.AdminLogEntry
	for rows.Next() {
		var (
			entry  domain.AdminLogEntry
			action string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.ObjectType,
			&entry.ObjectID,
			&entry.ObjectRepr,
			&action,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning admin log entry: %w", err)
		}
		entry.Action = domain.AdminAction(action)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing admin log: %w", err)
	}
	return entries, nil
}
