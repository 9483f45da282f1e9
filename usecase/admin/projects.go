package admin

import (
	"context"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/form"
)

// ProjectInput is an admin submission for a project. Unlike the owner
// pages, the owner is editable here.
type ProjectInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required"`
	OwnerID     string `json:"owner" form:"owner" validate:"required"`
	StartDate   string `json:"start_date" form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status      string `json:"status" form:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
}

// ListProjects returns every project matching filter. Staff are not
// scoped by ownership here.
func (uc *UseCase) ListProjects(ctx context.Context, actor *domain.User, filter repository.ProjectFilter) ([]domain.Project, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	return uc.projects.List(ctx, filter)
}

func (uc *UseCase) GetProject(ctx context.Context, actor *domain.User, id string) (*domain.Project, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	return uc.projects.Get(ctx, repository.ProjectFilter{ID: id})
}

func (uc *UseCase) CreateProject(ctx context.Context, actor *domain.User, in ProjectInput) (*domain.Project, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	project := &domain.Project{}
	if err := uc.applyProject(ctx, project, in); err != nil {
		return nil, err
	}
	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	uc.record(ctx, actor, domain.ObjectProject, project.ID, project.String(), domain.AdminAddition)
	return project, nil
}

func (uc *UseCase) UpdateProject(ctx context.Context, actor *domain.User, id string, in ProjectInput) (*domain.Project, error) {
	project, err := uc.GetProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := uc.applyProject(ctx, project, in); err != nil {
		return nil, err
	}
	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	uc.record(ctx, actor, domain.ObjectProject, project.ID, project.String(), domain.AdminChange)
	return project, nil
}

func (uc *UseCase) DeleteProject(ctx context.Context, actor *domain.User, id string) error {
	project, err := uc.GetProject(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := uc.projects.Delete(ctx, project.ID); err != nil {
		return err
	}
	uc.record(ctx, actor, domain.ObjectProject, project.ID, project.String(), domain.AdminDeletion)
	return nil
}

// applyProject validates in and copies it onto p, running Project.Clean.
func (uc *UseCase) applyProject(ctx context.Context, p *domain.Project, in ProjectInput) error {
	in.Name = trimmed(in.Name)
	in.Description = trimmed(in.Description)
	in.OwnerID = trimmed(in.OwnerID)

	errs := form.Struct(&in)
	if !errs.Has("owner") {
		if _, err := uc.users.GetByID(ctx, in.OwnerID); err != nil {
			if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return err
			}
			errs.Add("owner", domain.MsgInvalidChoice)
		}
	}

	candidate := *p
	candidate.Name = in.Name
	candidate.Description = in.Description
	candidate.OwnerID = in.OwnerID
	if in.Status != "" {
		candidate.Status = domain.Status(in.Status)
	}
	candidate.EndDate = nil
	if !errs.Has("end_date") && in.EndDate != "" {
		end, _ := domain.ParseDate(in.EndDate)
		candidate.EndDate = &end
	}
	if !errs.Has("start_date") {
		candidate.StartDate, _ = domain.ParseDate(in.StartDate)
		if err := merge(errs, candidate.Clean()); err != nil {
			return err
		}
	}

	if err := domain.ValidationFailed(errs); err != nil {
		return err
	}
	*p = candidate
	return nil
}
