package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/testutil"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/form"
	"github.com/fastygo/tracker/usecase/scope"
)

func newUseCase(store *testutil.Store) *UseCase {
	return New(store.Tasks, store.Projects, store.Users, store.Clock, nil)
}

func submission(project *domain.Project, overrides map[string]string) form.Getter {
	values := map[string]string{
		"title":       "Test Task",
		"description": "desc",
		"project":     project.ID,
		"priority":    "medium",
		"status":      "pending",
		"due_date":    testutil.Date(3).Format(domain.DateLayout),
	}
	for k, v := range overrides {
		values[k] = v
	}
	return form.Values(values)
}

func TestCreate_StampsCreator(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "P")

	created, _, err := uc.Create(context.Background(), alice, submission(project, map[string]string{"created_by": "forged"}))
	require.NoError(t, err)

	stored, err := store.Tasks.Get(context.Background(), repository.TaskFilter{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "Test Task", stored.String())
	assert.Equal(t, alice.ID, stored.CreatorID)
	assert.Equal(t, domain.PriorityMedium, stored.Priority)
	assert.Nil(t, stored.CompletedAt)
}

func TestCreate_RejectsOtherUsersProject(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	alice := store.CreateUser(t, "alice")
	bob := store.CreateUser(t, "bob")
	bobs := store.CreateProject(t, bob, "Bob's")

	_, f, err := uc.Create(context.Background(), alice, submission(bobs, nil))
	require.Error(t, err)
	require.NotNil(t, f)
	assert.True(t, f.Errors.Has("project"))
}

func TestCreate_PastDueDate(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "P")

	_, f, err := uc.Create(context.Background(), alice, submission(project, map[string]string{
		"due_date": testutil.Date(-1).Format(domain.DateLayout),
	}))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Equal(t, []string{domain.MsgDueInPast}, f.Errors["due_date"])
}

func TestList_MyTasksEmptyForUserWithoutAssignments(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "P")
	store.CreateTask(t, project, alice, "created but not assigned")

	tasks, err := uc.List(context.Background(), alice, scope.ListMyTasks)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestList_Modes(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	alice := store.CreateUser(t, "alice")
	bob := store.CreateUser(t, "bob")
	root := store.CreateUser(t, "root", testutil.Superuser)
	project := store.CreateProject(t, alice, "P")
	store.CreateTask(t, project, alice, "alice for bob", testutil.AssignedTo(bob))
	store.CreateTask(t, project, bob, "bob own")
	store.CreateTask(t, project, alice, "alice own")

	ctx := context.Background()
	all, err := uc.List(ctx, bob, scope.ListAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := uc.List(ctx, bob, scope.ListMyTasks)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "alice for bob", mine[0].Title)

	created, err := uc.List(ctx, bob, scope.ListCreatedByMe)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "bob own", created[0].Title)

	everything, err := uc.List(ctx, root, scope.ListAll)
	require.NoError(t, err)
	assert.Len(t, everything, 3)

	rootMine, err := uc.List(ctx, root, scope.ListMyTasks)
	require.NoError(t, err)
	assert.Empty(t, rootMine)
}

func TestGet_OutsideScopeIsNotFound(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	alice := store.CreateUser(t, "alice")
	carol := store.CreateUser(t, "carol")
	project := store.CreateProject(t, alice, "P")
	task := store.CreateTask(t, project, alice, "private")

	_, err := uc.Get(context.Background(), carol, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = uc.Get(context.Background(), carol, "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestDelete_AssigneeCannotDelete(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	alice := store.CreateUser(t, "alice")
	bob := store.CreateUser(t, "bob")
	root := store.CreateUser(t, "root", testutil.Superuser)
	project := store.CreateProject(t, alice, "P")
	task := store.CreateTask(t, project, alice, "assigned", testutil.AssignedTo(bob))
	other := store.CreateTask(t, project, alice, "other")

	ctx := context.Background()
	_, err := uc.Get(ctx, bob, task.ID)
	require.NoError(t, err, "assignee can view")
	assert.ErrorIs(t, uc.Delete(ctx, bob, task.ID), domain.ErrTaskNotFound)

	require.NoError(t, uc.Delete(ctx, alice, task.ID))
	require.NoError(t, uc.Delete(ctx, root, other.ID))
}

func TestUpdate_AssigneeKeepsUnownedProject(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	alice := store.CreateUser(t, "alice")
	bob := store.CreateUser(t, "bob")
	project := store.CreateProject(t, alice, "Alice's")
	task := store.CreateTask(t, project, alice, "assigned", testutil.AssignedTo(bob))

	updated, _, err := uc.Update(context.Background(), bob, task.ID, submission(project, map[string]string{
		"title":       "renamed",
		"assigned_to": bob.ID,
		"status":      "in_progress",
	}))
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, alice.ID, updated.CreatorID)
	assert.Equal(t, project.ID, updated.ProjectID)
}

func TestUpdate_CompletionStampLifecycle(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "P")
	task := store.CreateTask(t, project, alice, "work")
	ctx := context.Background()

	completed, _, err := uc.Update(ctx, alice, task.ID, submission(project, map[string]string{"status": "completed"}))
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)
	first := *completed.CompletedAt

	store.Advance(time.Hour)
	again, _, err := uc.Update(ctx, alice, task.ID, submission(project, map[string]string{"status": "completed"}))
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, first.Equal(*again.CompletedAt))

	reopened, _, err := uc.Update(ctx, alice, task.ID, submission(project, map[string]string{"status": "in_progress"}))
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)

	stored, err := store.Tasks.Get(ctx, repository.TaskFilter{ID: task.ID})
	require.NoError(t, err)
	assert.Nil(t, stored.CompletedAt)
}

func TestEditForm_OffersOwnedProjectsPlusCurrent(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	alice := store.CreateUser(t, "alice")
	bob := store.CreateUser(t, "bob")
	alices := store.CreateProject(t, alice, "Alice's")
	bobs := store.CreateProject(t, bob, "Bob's")
	store.CreateProject(t, alice, "Alice's other")
	task := store.CreateTask(t, alices, alice, "assigned", testutil.AssignedTo(bob))

	f, err := uc.EditForm(context.Background(), bob, task.ID)
	require.NoError(t, err)

	var offered []string
	for _, fld := range f.View().Fields {
		if fld.Name == "project" {
			for _, c := range fld.Choices {
				offered = append(offered, c.Value)
			}
		}
	}
	assert.ElementsMatch(t, []string{alices.ID, bobs.ID}, offered)
}
