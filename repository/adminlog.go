package repository

import (
	"context"

	"github.com/fastygo/tracker/domain"
)

type AdminLogFilter struct {
	ActorID    string
	ObjectType string
	ObjectID   string
	Limit      int
	Offset     int
}

type AdminLogRepository interface {
	Append(ctx context.Context, entry *domain.AdminLogEntry) error
	List(ctx context.Context, filter AdminLogFilter) ([]domain.AdminLogEntry, error)
}
