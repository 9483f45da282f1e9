package admin

import (
	"context"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/form"
)

// TaskInput is an admin submission for a task. An empty CreatorID
// defaults to the acting staff user on creation and keeps the current
// creator on update.
type TaskInput struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required"`
	ProjectID   string `json:"project" form:"project" validate:"required"`
	AssigneeID  string `json:"assigned_to" form:"assigned_to"`
	CreatorID   string `json:"created_by" form:"created_by"`
	Priority    string `json:"priority" form:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status      string `json:"status" form:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	DueDate     string `json:"due_date" form:"due_date" validate:"required,datetime=2006-01-02"`
}

func (uc *UseCase) ListTasks(ctx context.Context, actor *domain.User, filter repository.TaskFilter) ([]domain.Task, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, actor *domain.User, id string) (*domain.Task, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	return uc.tasks.Get(ctx, repository.TaskFilter{ID: id})
}

func (uc *UseCase) CreateTask(ctx context.Context, actor *domain.User, in TaskInput) (*domain.Task, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	if trimmed(in.CreatorID) == "" {
		in.CreatorID = actor.ID
	}
	task := &domain.Task{}
	if err := uc.applyTask(ctx, task, in); err != nil {
		return nil, err
	}
	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	uc.record(ctx, actor, domain.ObjectTask, task.ID, task.String(), domain.AdminAddition)
	return task, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, actor *domain.User, id string, in TaskInput) (*domain.Task, error) {
	task, err := uc.GetTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if trimmed(in.CreatorID) == "" {
		in.CreatorID = task.CreatorID
	}
	if err := uc.applyTask(ctx, task, in); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	uc.record(ctx, actor, domain.ObjectTask, task.ID, task.String(), domain.AdminChange)
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, actor *domain.User, id string) error {
	task, err := uc.GetTask(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, task.ID); err != nil {
		return err
	}
	uc.record(ctx, actor, domain.ObjectTask, task.ID, task.String(), domain.AdminDeletion)
	return nil
}

// applyTask validates in and copies it onto t, running Task.Clean. The
// completion stamp is left to the repository.
func (uc *UseCase) applyTask(ctx context.Context, t *domain.Task, in TaskInput) error {
	in.Title = trimmed(in.Title)
	in.Description = trimmed(in.Description)
	in.ProjectID = trimmed(in.ProjectID)
	in.AssigneeID = trimmed(in.AssigneeID)
	in.CreatorID = trimmed(in.CreatorID)

	errs := form.Struct(&in)
	if !errs.Has("project") {
		if _, err := uc.projects.Get(ctx, repository.ProjectFilter{ID: in.ProjectID}); err != nil {
			if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return err
			}
			errs.Add("project", domain.MsgInvalidChoice)
		}
	}
	for field, id := range map[string]string{"assigned_to": in.AssigneeID, "created_by": in.CreatorID} {
		if id == "" {
			continue
		}
		if _, err := uc.users.GetByID(ctx, id); err != nil {
			if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return err
			}
			errs.Add(field, domain.MsgInvalidChoice)
		}
	}

	candidate := *t
	candidate.Title = in.Title
	candidate.Description = in.Description
	candidate.ProjectID = in.ProjectID
	candidate.CreatorID = in.CreatorID
	candidate.AssigneeID = nil
	if in.AssigneeID != "" {
		assignee := in.AssigneeID
		candidate.AssigneeID = &assignee
	}
	if in.Priority != "" {
		candidate.Priority = domain.Priority(in.Priority)
	}
	if in.Status != "" {
		candidate.Status = domain.Status(in.Status)
	}
	if !errs.Has("due_date") {
		candidate.DueDate, _ = domain.ParseDate(in.DueDate)
		if err := merge(errs, candidate.Clean(uc.clock.Today())); err != nil {
			return err
		}
	}

	if err := domain.ValidationFailed(errs); err != nil {
		return err
	}
	*t = candidate
	return nil
}
