package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/testutil"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/form"
)

func projectForm(values map[string]string) *form.ProjectForm {
	f := form.NewProjectForm(nil)
	f.Bind(form.Values(values))
	return f
}

func TestCreate_StampsOwnerFromActor(t *testing.T) {
	store := testutil.NewStore(t)
	uc := New(store.Projects, store.Tasks, nil)
	alice := store.CreateUser(t, "alice")

	created, err := uc.Create(context.Background(), alice, projectForm(map[string]string{
		"name":        "Test Project",
		"description": "desc",
		"start_date":  testutil.Date(0).Format(domain.DateLayout),
		"end_date":    testutil.Date(7).Format(domain.DateLayout),
		"status":      "pending",
		"owner":       "someone-else",
	}))
	require.NoError(t, err)

	stored, err := store.Projects.Get(context.Background(), repository.ProjectFilter{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "Test Project", stored.String())
	assert.Equal(t, alice.ID, stored.OwnerID)
	require.NotNil(t, stored.EndDate)
	assert.False(t, stored.EndDate.Before(stored.StartDate))
}

func TestCreate_InvalidFormDoesNotPersist(t *testing.T) {
	store := testutil.NewStore(t)
	uc := New(store.Projects, store.Tasks, nil)
	alice := store.CreateUser(t, "alice")

	_, err := uc.Create(context.Background(), alice, projectForm(map[string]string{
		"name":        "Bad dates",
		"description": "desc",
		"start_date":  testutil.Date(1).Format(domain.DateLayout),
		"end_date":    testutil.Date(0).Format(domain.DateLayout),
		"status":      "pending",
	}))
	require.Error(t, err)
	fe, ok := domain.AsFieldErrors(err)
	require.True(t, ok)
	assert.True(t, fe.Has("end_date"))

	n, err := store.Projects.Count(context.Background(), repository.ProjectFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGet_OtherOwnersProjectIsNotFound(t *testing.T) {
	store := testutil.NewStore(t)
	uc := New(store.Projects, store.Tasks, nil)
	alice := store.CreateUser(t, "alice")
	root := store.CreateUser(t, "root", testutil.Superuser)
	project := store.CreateProject(t, alice, "Alice's")

	_, err := uc.Get(context.Background(), root, project.ID)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, err = uc.Update(context.Background(), root, project.ID, projectForm(nil))
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	assert.ErrorIs(t, uc.Delete(context.Background(), root, project.ID), domain.ErrProjectNotFound)
}

func TestUpdate_KeepsOwner(t *testing.T) {
	store := testutil.NewStore(t)
	uc := New(store.Projects, store.Tasks, nil)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "Before")

	f := form.NewProjectForm(project)
	f.Name = "After"
	updated, err := uc.Update(context.Background(), alice, project.ID, f)
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, alice.ID, updated.OwnerID)
}

func TestDelete_CascadesToTasks(t *testing.T) {
	store := testutil.NewStore(t)
	uc := New(store.Projects, store.Tasks, nil)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "Doomed")
	store.CreateTask(t, project, alice, "one")
	store.CreateTask(t, project, alice, "two")

	require.NoError(t, uc.Delete(context.Background(), alice, project.ID))

	n, err := store.Tasks.Count(context.Background(), repository.TaskFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDetail_ListsEveryTaskInOwnedProject(t *testing.T) {
	store := testutil.NewStore(t)
	uc := New(store.Projects, store.Tasks, nil)
	alice := store.CreateUser(t, "alice")
	bob := store.CreateUser(t, "bob")
	carol := store.CreateUser(t, "carol")
	staff := store.CreateUser(t, "staff", testutil.Staff)
	project := store.CreateProject(t, alice, "Shared")
	other := store.CreateProject(t, bob, "Elsewhere")
	store.CreateTask(t, project, alice, "mine")
	store.CreateTask(t, project, bob, "bobs")
	store.CreateTask(t, project, staff, "from admin", testutil.AssignedTo(carol))
	store.CreateTask(t, other, bob, "not here")

	detail, err := uc.Detail(context.Background(), alice, project.ID)
	require.NoError(t, err)
	titles := make([]string, 0, len(detail.Tasks))
	for _, task := range detail.Tasks {
		titles = append(titles, task.Title)
	}
	assert.ElementsMatch(t, []string{"mine", "bobs", "from admin"}, titles)

	_, err = uc.Detail(context.Background(), carol, project.ID)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}
