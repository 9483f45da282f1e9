package dashboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/scope"
)

const recentLimit = 5

type UseCase struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	clock    domain.Clock
	logger   *zap.Logger
}

func New(projects repository.ProjectRepository, tasks repository.TaskRepository, clock domain.Clock, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		projects: projects,
		tasks:    tasks,
		clock:    clock,
		logger:   logger,
	}
}

// Build aggregates the actor's owned projects and created-or-assigned
// tasks. Nothing is cached.
func (uc *UseCase) Build(ctx context.Context, actor *domain.User) (*domain.Dashboard, error) {
	projectScope := scope.DashboardProjects(actor)
	taskScope := scope.DashboardTasks(actor)
	today := uc.clock.Today()

	var (
		board domain.Dashboard
		err   error
	)

	if board.TotalProjects, err = uc.projects.Count(ctx, projectScope); err != nil {
		return nil, err
	}
	if board.TotalTasks, err = uc.tasks.Count(ctx, taskScope); err != nil {
		return nil, err
	}

	pending := taskScope
	pending.Statuses = []domain.Status{domain.StatusPending}
	if board.PendingTasks, err = uc.tasks.Count(ctx, pending); err != nil {
		return nil, err
	}

	completed := taskScope
	completed.Statuses = []domain.Status{domain.StatusCompleted}
	if board.CompletedTasks, err = uc.tasks.Count(ctx, completed); err != nil {
		return nil, err
	}

	overdue := taskScope
	overdue.DueBefore = &today
	overdue.ExcludeStatuses = []domain.Status{domain.StatusCompleted, domain.StatusCancelled}
	if board.OverdueTasks, err = uc.tasks.Count(ctx, overdue); err != nil {
		return nil, err
	}

	recentProjects := projectScope
	recentProjects.Limit = recentLimit
	if board.RecentProjects, err = uc.projects.List(ctx, recentProjects); err != nil {
		return nil, err
	}

	recentTasks := taskScope
	recentTasks.Order = repository.OrderByRecent
	recentTasks.Limit = recentLimit
	if board.RecentTasks, err = uc.tasks.List(ctx, recentTasks); err != nil {
		return nil, err
	}

	return &board, nil
}
