package repository

import (
	"context"

	"github.com/fastygo/tracker/domain"
)

// ProjectFilter selects projects. Non-empty predicates are combined with
// AND; IncludeID additionally admits one project regardless of them.
type ProjectFilter struct {
	ID        string
	OwnerID   string
	IncludeID string
	Status    domain.Status
	Search    string
	Limit     int
	Offset    int
}

type ProjectRepository interface {
	// Get returns the first project matching filter or ErrProjectNotFound.
	Get(ctx context.Context, filter ProjectFilter) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Count(ctx context.Context, filter ProjectFilter) (int, error)
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	// Delete removes the project and, by cascade, its tasks.
	Delete(ctx context.Context, id string) error
}
