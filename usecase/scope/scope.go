// Package scope computes the records an acting user may see or change.
// Every function is pure: it turns an actor into a repository filter
// which callers narrow further (by id, paging) before querying.
package scope

import (
	"strings"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

// TaskListMode selects the task list variant requested by the user.
type TaskListMode string

const (
	ListAll         TaskListMode = "all"
	ListMyTasks     TaskListMode = "my_tasks"
	ListCreatedByMe TaskListMode = "created_by_me"
)

// ParseTaskListMode maps the raw query value to a mode. Unknown or empty
// values fall back to ListAll.
func ParseTaskListMode(raw string) TaskListMode {
	switch TaskListMode(strings.TrimSpace(raw)) {
	case ListMyTasks:
		return ListMyTasks
	case ListCreatedByMe:
		return ListCreatedByMe
	}
	return ListAll
}

// Projects restricts projects to those owned by the actor. Superusers
// get no override.
func Projects(actor *domain.User) repository.ProjectFilter {
	return repository.ProjectFilter{OwnerID: actorID(actor)}
}

// VisibleTasks restricts tasks to those created by or assigned to the
// actor; superusers see every task. Detail and edit use the same scope.
func VisibleTasks(actor *domain.User) repository.TaskFilter {
	if actor != nil && actor.IsSuperuser {
		return repository.TaskFilter{}
	}
	return repository.TaskFilter{InvolvedUserID: actorID(actor)}
}

// DeletableTasks restricts deletion to the creator; superusers may delete
// any task. Assignees never can.
func DeletableTasks(actor *domain.User) repository.TaskFilter {
	if actor != nil && actor.IsSuperuser {
		return repository.TaskFilter{}
	}
	return repository.TaskFilter{CreatorID: actorID(actor)}
}

// TaskList returns the filter for the task list page. my_tasks and
// created_by_me replace the visibility scope instead of narrowing it.
func TaskList(actor *domain.User, mode TaskListMode) repository.TaskFilter {
	switch mode {
	case ListMyTasks:
		return repository.TaskFilter{AssigneeID: actorID(actor)}
	case ListCreatedByMe:
		return repository.TaskFilter{CreatorID: actorID(actor)}
	}
	return VisibleTasks(actor)
}

// SelectableProjects lists the projects a task form may point at: the
// actor's own projects plus the task's current project when editing.
func SelectableProjects(actor *domain.User, existingProjectID string) repository.ProjectFilter {
	filter := Projects(actor)
	filter.IncludeID = existingProjectID
	return filter
}

// DashboardProjects is the project set aggregated on the dashboard.
func DashboardProjects(actor *domain.User) repository.ProjectFilter {
	return Projects(actor)
}

// DashboardTasks is the task set aggregated on the dashboard. Unlike the
// task list it has no superuser override.
func DashboardTasks(actor *domain.User) repository.TaskFilter {
	return repository.TaskFilter{InvolvedUserID: actorID(actor)}
}

// AdminUsers limits the admin user listing: superusers see everyone,
// other staff only themselves.
func AdminUsers(actor *domain.User) repository.UserFilter {
	if actor != nil && actor.IsSuperuser {
		return repository.UserFilter{}
	}
	return repository.UserFilter{ID: actorID(actor)}
}

// AdminLog limits the admin history the same way as AdminUsers.
func AdminLog(actor *domain.User) repository.AdminLogFilter {
	if actor != nil && actor.IsSuperuser {
		return repository.AdminLogFilter{}
	}
	return repository.AdminLogFilter{ActorID: actorID(actor)}
}

// actorID never returns an empty id for a missing actor, so an
// anonymous filter matches nothing instead of everything.
func actorID(actor *domain.User) string {
	if actor == nil || actor.ID == "" {
		return anonymous
	}
	return actor.ID
}

const anonymous = "\x00anonymous"
