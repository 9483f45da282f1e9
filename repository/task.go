package repository

import (
	"context"
	"time"

	"github.com/fastygo/tracker/domain"
)

// TaskOrder selects the sort applied to task listings.
type TaskOrder int

const (
	// OrderBySeverity sorts by priority severity (urgent first), then due date.
	OrderBySeverity TaskOrder = iota
	// OrderByRecent sorts newest first.
	OrderByRecent
)

// TaskFilter selects tasks. All non-empty predicates are combined with AND.
type TaskFilter struct {
	ID         string
	CreatorID  string
	AssigneeID string
	// InvolvedUserID matches tasks created by or assigned to the user.
	InvolvedUserID  string
	ProjectID       string
	Statuses        []domain.Status
	ExcludeStatuses []domain.Status
	Priority        domain.Priority
	DueBefore       *time.Time
	Search          string
	Order           TaskOrder
	Limit           int
	Offset          int
}

type TaskRepository interface {
	// Get returns the first task matching filter or ErrTaskNotFound.
	Get(ctx context.Context, filter TaskFilter) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int, error)
	// Create and Update apply Task.ApplyCompletion before writing.
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
