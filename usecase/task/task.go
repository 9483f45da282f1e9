package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/form"
	"github.com/fastygo/tracker/usecase/scope"
)

// UseCase serves the task pages. Reads and edits use the visible scope,
// deletion the stricter deletable scope.
type UseCase struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	clock    domain.Clock
	logger   *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	clock domain.Clock,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		projects: projects,
		users:    users,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *UseCase) List(ctx context.Context, actor *domain.User, mode scope.TaskListMode) ([]domain.Task, error) {
	return uc.tasks.List(ctx, scope.TaskList(actor, mode))
}

func (uc *UseCase) Get(ctx context.Context, actor *domain.User, id string) (*domain.Task, error) {
	filter := scope.VisibleTasks(actor)
	filter.ID = id
	return uc.tasks.Get(ctx, filter)
}

// GetDeletable returns the task only when the actor may delete it.
func (uc *UseCase) GetDeletable(ctx context.Context, actor *domain.User, id string) (*domain.Task, error) {
	filter := scope.DeletableTasks(actor)
	filter.ID = id
	return uc.tasks.Get(ctx, filter)
}

// NewForm builds an empty creation form for the actor.
func (uc *UseCase) NewForm(ctx context.Context, actor *domain.User) (*form.TaskForm, error) {
	return uc.buildForm(ctx, actor, nil)
}

// EditForm builds a form prefilled from a visible task.
func (uc *UseCase) EditForm(ctx context.Context, actor *domain.User, id string) (*form.TaskForm, error) {
	existing, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return uc.buildForm(ctx, actor, existing)
}

func (uc *UseCase) buildForm(ctx context.Context, actor *domain.User, existing *domain.Task) (*form.TaskForm, error) {
	existingProject := ""
	if existing != nil {
		existingProject = existing.ProjectID
	}
	projects, err := uc.projects.List(ctx, scope.SelectableProjects(actor, existingProject))
	if err != nil {
		return nil, err
	}
	users, err := uc.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, err
	}
	return form.NewTaskForm(form.TaskFormConfig{
		Actor:    actor,
		Existing: existing,
		Projects: projects,
		Users:    users,
		Today:    uc.clock.Today(),
	}), nil
}

// Create binds a submission and stores a task created by the actor. The
// returned form carries field errors when validation fails.
func (uc *UseCase) Create(ctx context.Context, actor *domain.User, values form.Getter) (*domain.Task, *form.TaskForm, error) {
	if actor == nil {
		return nil, nil, domain.ErrUnauthorized
	}
	f, err := uc.NewForm(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	f.Bind(values)

	task := &domain.Task{}
	if !f.Validate(task) {
		return nil, f, domain.ValidationFailed(f.Errors)
	}
	task.CreatorID = actor.ID

	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, f, err
	}
	uc.logger.Info("task created", zap.String("task_id", task.ID), zap.String("creator_id", actor.ID))
	return task, f, nil
}

// Update binds a submission onto a visible task. Creator and completion
// stamp are kept; the repository re-applies the completion rule.
func (uc *UseCase) Update(ctx context.Context, actor *domain.User, id string, values form.Getter) (*domain.Task, *form.TaskForm, error) {
	existing, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := uc.buildForm(ctx, actor, existing)
	if err != nil {
		return nil, nil, err
	}
	f.Bind(values)

	task := *existing
	if !f.Validate(&task) {
		return nil, f, domain.ValidationFailed(f.Errors)
	}
	task.CreatorID = existing.CreatorID

	if err := uc.tasks.Update(ctx, &task); err != nil {
		return nil, f, err
	}
	return &task, f, nil
}

func (uc *UseCase) Delete(ctx context.Context, actor *domain.User, id string) error {
	task, err := uc.GetDeletable(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, task.ID); err != nil {
		return err
	}
	uc.logger.Info("task deleted", zap.String("task_id", task.ID))
	return nil
}
