package form

import (
	"time"

	"github.com/fastygo/tracker/domain"
)

// TaskFormConfig carries everything a task form needs to compute its
// choices. Projects should come from scope.SelectableProjects.
type TaskFormConfig struct {
	Actor    *domain.User
	Existing *domain.Task
	Projects []domain.Project
	Users    []domain.User
	Today    time.Time
}

// TaskForm edits the user-facing fields of a task. The creator is never
// read from input.
type TaskForm struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description" validate:"required"`
	Project     string `form:"project" validate:"required"`
	AssignedTo  string `form:"assigned_to"`
	Priority    string `form:"priority" validate:"required,oneof=low medium high urgent"`
	Status      string `form:"status" validate:"required,oneof=pending in_progress completed cancelled"`
	DueDate     string `form:"due_date" validate:"required,datetime=2006-01-02"`

	Errors domain.FieldErrors `form:"-" validate:"-"`

	cfg TaskFormConfig
}

// NewTaskForm returns a form prefilled from cfg.Existing, or with
// defaults for a new task.
func NewTaskForm(cfg TaskFormConfig) *TaskForm {
	f := &TaskForm{
		Priority: string(domain.PriorityMedium),
		Status:   string(domain.StatusPending),
		Errors:   domain.FieldErrors{},
		cfg:      cfg,
	}
	t := cfg.Existing
	if t == nil {
		return f
	}
	f.Title = t.Title
	f.Description = t.Description
	f.Project = t.ProjectID
	if t.AssigneeID != nil {
		f.AssignedTo = *t.AssigneeID
	}
	if t.Priority != "" {
		f.Priority = string(t.Priority)
	}
	if t.Status != "" {
		f.Status = string(t.Status)
	}
	if !t.DueDate.IsZero() {
		f.DueDate = t.DueDate.Format(domain.DateLayout)
	}
	return f
}

func (f *TaskForm) Bind(get Getter) {
	f.Title = trim(get, "title")
	f.Description = trim(get, "description")
	f.Project = trim(get, "project")
	f.AssignedTo = trim(get, "assigned_to")
	f.Priority = trim(get, "priority")
	f.Status = trim(get, "status")
	f.DueDate = trim(get, "due_date")
}

// Validate checks the submission against the configured choices and, when
// valid, copies it onto t.
func (f *TaskForm) Validate(t *domain.Task) bool {
	errs := check(f)

	if !errs.Has("project") && !f.hasProject(f.Project) {
		errs.Add("project", domain.MsgInvalidChoice)
	}
	if f.AssignedTo != "" && !f.hasUser(f.AssignedTo) {
		errs.Add("assigned_to", domain.MsgInvalidChoice)
	}

	candidate := *t
	candidate.Title = f.Title
	candidate.Description = f.Description
	candidate.ProjectID = f.Project
	candidate.AssigneeID = nil
	if f.AssignedTo != "" {
		assignee := f.AssignedTo
		candidate.AssigneeID = &assignee
	}
	candidate.Priority = domain.Priority(f.Priority)
	candidate.Status = domain.Status(f.Status)

	if due := parseDate(errs, "due_date", f.DueDate); due != nil {
		candidate.DueDate = *due
		attach(errs, candidate.Clean(f.cfg.Today))
	}

	f.Errors = errs
	if !errs.Empty() {
		return false
	}
	*t = candidate
	return true
}

func (f *TaskForm) View() View {
	projects := make([]Choice, 0, len(f.cfg.Projects))
	for _, p := range f.cfg.Projects {
		projects = append(projects, Choice{Value: p.ID, Label: p.String()})
	}
	users := make([]Choice, 0, len(f.cfg.Users)+1)
	users = append(users, Choice{Value: "", Label: "---------"})
	for _, u := range f.cfg.Users {
		users = append(users, Choice{Value: u.ID, Label: u.String()})
	}

	return buildView(f.Errors,
		field("title", f.Title, f.Errors),
		field("description", f.Description, f.Errors),
		field("project", f.Project, f.Errors, projects...),
		field("assigned_to", f.AssignedTo, f.Errors, users...),
		field("priority", f.Priority, f.Errors, priorityChoices()...),
		field("status", f.Status, f.Errors, statusChoices()...),
		field("due_date", f.DueDate, f.Errors),
	)
}

func (f *TaskForm) hasProject(id string) bool {
	for _, p := range f.cfg.Projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (f *TaskForm) hasUser(id string) bool {
	for _, u := range f.cfg.Users {
		if u.ID == id {
			return true
		}
	}
	return false
}
