package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

var (
	alice = &domain.User{ID: "alice"}
	root  = &domain.User{ID: "root", IsStaff: true, IsSuperuser: true}
)

func TestParseTaskListMode(t *testing.T) {
	cases := map[string]TaskListMode{
		"":              ListAll,
		"all":           ListAll,
		"my_tasks":      ListMyTasks,
		"created_by_me": ListCreatedByMe,
		"everything":    ListAll,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseTaskListMode(raw), raw)
	}
}

func TestProjects_NoSuperuserOverride(t *testing.T) {
	assert.Equal(t, repository.ProjectFilter{OwnerID: "root"}, Projects(root))
	assert.Equal(t, repository.ProjectFilter{OwnerID: "alice"}, Projects(alice))
}

func TestVisibleTasks(t *testing.T) {
	assert.Equal(t, repository.TaskFilter{InvolvedUserID: "alice"}, VisibleTasks(alice))
	assert.Equal(t, repository.TaskFilter{}, VisibleTasks(root))
}

func TestDeletableTasks(t *testing.T) {
	assert.Equal(t, repository.TaskFilter{CreatorID: "alice"}, DeletableTasks(alice))
	assert.Equal(t, repository.TaskFilter{}, DeletableTasks(root))
}

func TestTaskList_ModesOverrideBaseScope(t *testing.T) {
	assert.Equal(t, repository.TaskFilter{AssigneeID: "root"}, TaskList(root, ListMyTasks))
	assert.Equal(t, repository.TaskFilter{CreatorID: "root"}, TaskList(root, ListCreatedByMe))
	assert.Equal(t, repository.TaskFilter{}, TaskList(root, ListAll))
	assert.Equal(t, repository.TaskFilter{InvolvedUserID: "alice"}, TaskList(alice, ListAll))
}

func TestSelectableProjects(t *testing.T) {
	assert.Equal(t, repository.ProjectFilter{OwnerID: "alice"}, SelectableProjects(alice, ""))
	assert.Equal(t,
		repository.ProjectFilter{OwnerID: "alice", IncludeID: "p9"},
		SelectableProjects(alice, "p9"),
	)
}

func TestDashboardTasks_IgnoresSuperuser(t *testing.T) {
	assert.Equal(t, repository.TaskFilter{InvolvedUserID: "root"}, DashboardTasks(root))
}

func TestAdminUsers(t *testing.T) {
	staff := &domain.User{ID: "bob", IsStaff: true}
	assert.Equal(t, repository.UserFilter{ID: "bob"}, AdminUsers(staff))
	assert.Equal(t, repository.UserFilter{}, AdminUsers(root))
}

func TestAnonymousActorMatchesNothing(t *testing.T) {
	assert.NotEmpty(t, Projects(nil).OwnerID)
	assert.NotEmpty(t, VisibleTasks(nil).InvolvedUserID)
}
