package project

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/form"
	"github.com/fastygo/tracker/usecase/scope"
)

// UseCase serves the owner-facing project pages. Every lookup goes
// through scope.Projects, so projects of other users are NotFound.
type UseCase struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	logger   *zap.Logger
}

func New(projects repository.ProjectRepository, tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		projects: projects,
		tasks:    tasks,
		logger:   logger,
	}
}

// Detail is a project with the tasks the actor can see in it.
type Detail struct {
	Project *domain.Project `json:"project"`
	Tasks   []domain.Task   `json:"tasks"`
}

func (uc *UseCase) List(ctx context.Context, actor *domain.User) ([]domain.Project, error) {
	return uc.projects.List(ctx, scope.Projects(actor))
}

func (uc *UseCase) Get(ctx context.Context, actor *domain.User, id string) (*domain.Project, error) {
	filter := scope.Projects(actor)
	filter.ID = id
	return uc.projects.Get(ctx, filter)
}

func (uc *UseCase) Detail(ctx context.Context, actor *domain.User, id string) (*Detail, error) {
	project, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	// The project is already owner-scoped, so the owner sees every task in it.
	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{ProjectID: project.ID})
	if err != nil {
		return nil, err
	}
	return &Detail{Project: project, Tasks: tasks}, nil
}

// Create validates f and stores a project owned by the actor.
func (uc *UseCase) Create(ctx context.Context, actor *domain.User, f *form.ProjectForm) (*domain.Project, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	project := &domain.Project{}
	if !f.Validate(project) {
		return nil, domain.ValidationFailed(f.Errors)
	}
	project.OwnerID = actor.ID

	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	uc.logger.Info("project created", zap.String("project_id", project.ID), zap.String("owner_id", actor.ID))
	return project, nil
}

// Update applies f to one of the actor's projects. The owner never
// changes.
func (uc *UseCase) Update(ctx context.Context, actor *domain.User, id string, f *form.ProjectForm) (*domain.Project, error) {
	project, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	owner := project.OwnerID
	if !f.Validate(project) {
		return nil, domain.ValidationFailed(f.Errors)
	}
	project.OwnerID = owner

	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes one of the actor's projects together with its tasks.
func (uc *UseCase) Delete(ctx context.Context, actor *domain.User, id string) error {
	project, err := uc.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := uc.projects.Delete(ctx, project.ID); err != nil {
		return err
	}
	uc.logger.Info("project deleted", zap.String("project_id", project.ID))
	return nil
}
