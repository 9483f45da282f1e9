package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/query"
)

type adminLogRow struct {
	ID         string `db:"id"`
	ActorID    string `db:"actor_id"`
	ObjectType string `db:"object_type"`
	ObjectID   string `db:"object_id"`
	ObjectRepr string `db:"object_repr"`
	Action     string `db:"action"`
	CreatedAt  string `db:"created_at"`
}

type adminLogRepository struct {
	db    *sqlx.DB
	clock domain.Clock
}

// NewAdminLogRepository returns a SQLite-backed AdminLogRepository.
func NewAdminLogRepository(db *sqlx.DB, clock domain.Clock) repository.AdminLogRepository {
	return &adminLogRepository{db: db, clock: clock}
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
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_log (id, actor_id, object_type, object_id, object_repr, action, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ActorID, entry.ObjectType, entry.ObjectID, entry.ObjectRepr,
		string(entry.Action), encodeTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("appending admin log entry: %w", err)
	}
	return nil
}

func (r *adminLogRepository) List(ctx context.Context, filter repository.AdminLogFilter) ([]domain.AdminLogEntry, error) {
	where := query.AdminLog(filter)
	stmt := `SELECT id, actor_id, object_type, object_id, object_repr, action, created_at
		FROM admin_log` + where.SQL() + " ORDER BY created_at DESC, id DESC" + query.Page(filter.Limit, filter.Offset)

	var rows []adminLogRow
	if err := r.db.SelectContext(ctx, &rows, stmt, where.Args()...); err != nil {
		return nil, fmt.Errorf("listing admin log: %w", err)
	}
	entries := make([]domain.AdminLogEntry, 0, len(rows))
	for _, row := range rows {
		created, err := decodeTime(row.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.AdminLogEntry{
			ID:         row.ID,
			ActorID:    row.ActorID,
			ObjectType: row.ObjectType,
			ObjectID:   row.ObjectID,
			ObjectRepr: row.ObjectRepr,
			Action:     domain.AdminAction(row.Action),
			CreatedAt:  created,
		})
	}
	return entries, nil
}
