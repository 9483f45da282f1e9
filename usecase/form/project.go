package form

import (
	"github.com/fastygo/tracker/domain"
)

// ProjectForm edits the user-facing fields of a project. Owner and
// timestamps are never read from input.
type ProjectForm struct {
	Name        string `form:"name" validate:"required,max=200"`
	Description string `form:"description" validate:"required"`
	StartDate   string `form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status      string `form:"status" validate:"required,oneof=pending in_progress completed cancelled"`

	Errors domain.FieldErrors `form:"-" validate:"-"`
}

// NewProjectForm returns a form prefilled from p, or with defaults when
// p is nil.
func NewProjectForm(p *domain.Project) *ProjectForm {
	f := &ProjectForm{Status: string(domain.StatusPending), Errors: domain.FieldErrors{}}
	if p == nil {
		return f
	}
	f.Name = p.Name
	f.Description = p.Description
	if !p.StartDate.IsZero() {
		f.StartDate = p.StartDate.Format(domain.DateLayout)
	}
	f.EndDate = domain.FormatDate(p.EndDate)
	if p.Status != "" {
		f.Status = string(p.Status)
	}
	return f
}

func (f *ProjectForm) Bind(get Getter) {
	f.Name = trim(get, "name")
	f.Description = trim(get, "description")
	f.StartDate = trim(get, "start_date")
	f.EndDate = trim(get, "end_date")
	f.Status = trim(get, "status")
}

// Validate checks the submission and, when it is valid, copies it onto
// p. The date ordering rule comes from Project.Clean and is reported on
// end_date even when other fields fail.
func (f *ProjectForm) Validate(p *domain.Project) bool {
	errs := check(f)

	candidate := *p
	candidate.Name = f.Name
	candidate.Description = f.Description
	candidate.Status = domain.Status(f.Status)
	candidate.EndDate = parseDate(errs, "end_date", f.EndDate)

	start := parseDate(errs, "start_date", f.StartDate)
	if start != nil {
		candidate.StartDate = *start
		attach(errs, candidate.Clean())
	}

	f.Errors = errs
	if !errs.Empty() {
		return false
	}
	*p = candidate
	return true
}

func (f *ProjectForm) View() View {
	return buildView(f.Errors,
		field("name", f.Name, f.Errors),
		field("description", f.Description, f.Errors),
		field("start_date", f.StartDate, f.Errors),
		field("end_date", f.EndDate, f.Errors),
		field("status", f.Status, f.Errors, statusChoices()...),
	)
}
