package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/testutil"
	"github.com/fastygo/tracker/repository"
)

func titles(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestTasks_DefaultOrderIsSeverityThenDueDate(t *testing.T) {
	store := testutil.NewStore(t)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "P")

	with := func(p domain.Priority, due int) func(*domain.Task) {
		return func(task *domain.Task) {
			task.Priority = p
			task.DueDate = testutil.Date(due)
		}
	}
	store.CreateTask(t, project, alice, "low", with(domain.PriorityLow, 1))
	store.CreateTask(t, project, alice, "high later", with(domain.PriorityHigh, 5))
	store.CreateTask(t, project, alice, "urgent", with(domain.PriorityUrgent, 9))
	store.CreateTask(t, project, alice, "high sooner", with(domain.PriorityHigh, 2))
	store.CreateTask(t, project, alice, "medium", with(domain.PriorityMedium, 1))

	tasks, err := store.Tasks.List(context.Background(), repository.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"urgent", "high sooner", "high later", "medium", "low"}, titles(tasks))
}

func TestTasks_InvolvedUserFilter(t *testing.T) {
	store := testutil.NewStore(t)
	alice := store.CreateUser(t, "alice")
	bob := store.CreateUser(t, "bob")
	carol := store.CreateUser(t, "carol")
	project := store.CreateProject(t, alice, "P")
	store.CreateTask(t, project, alice, "by alice")
	store.CreateTask(t, project, carol, "for alice", testutil.AssignedTo(alice))
	store.CreateTask(t, project, bob, "unrelated", testutil.AssignedTo(carol))

	tasks, err := store.Tasks.List(context.Background(), repository.TaskFilter{InvolvedUserID: alice.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"by alice", "for alice"}, titles(tasks))
}

func TestProjects_IncludeIDWidensScope(t *testing.T) {
	store := testutil.NewStore(t)
	alice := store.CreateUser(t, "alice")
	bob := store.CreateUser(t, "bob")
	mine := store.CreateProject(t, alice, "mine")
	theirs := store.CreateProject(t, bob, "theirs")
	store.CreateProject(t, bob, "other")

	projects, err := store.Projects.List(context.Background(), repository.ProjectFilter{
		OwnerID:   alice.ID,
		IncludeID: theirs.ID,
	})
	require.NoError(t, err)
	ids := []string{}
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{mine.ID, theirs.ID}, ids)
}

func TestProjects_CreatePreservesDates(t *testing.T) {
	store := testutil.NewStore(t)
	alice := store.CreateUser(t, "alice")
	end := testutil.Date(7)
	project := &domain.Project{
		Name:        "Test Project",
		Description: "d",
		OwnerID:     alice.ID,
		StartDate:   testutil.Date(0),
		EndDate:     &end,
	}
	require.NoError(t, store.Projects.Create(context.Background(), project))

	stored, err := store.Projects.Get(context.Background(), repository.ProjectFilter{ID: project.ID})
	require.NoError(t, err)
	assert.Equal(t, "Test Project", stored.String())
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, testutil.Date(0), stored.StartDate)
	require.NotNil(t, stored.EndDate)
	assert.Equal(t, end, *stored.EndDate)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestTasks_CompletionRuleOnEverySave(t *testing.T) {
	store := testutil.NewStore(t)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "P")
	task := store.CreateTask(t, project, alice, "work")
	ctx := context.Background()
	require.Nil(t, task.CompletedAt)

	task.Status = domain.StatusCompleted
	require.NoError(t, store.Tasks.Update(ctx, task))
	require.NotNil(t, task.CompletedAt)
	first := *task.CompletedAt

	store.Advance(time.Hour)
	stored, err := store.Tasks.Get(ctx, repository.TaskFilter{ID: task.ID})
	require.NoError(t, err)
	require.NoError(t, store.Tasks.Update(ctx, stored))
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, first.Equal(*stored.CompletedAt))

	stored.Status = domain.StatusCancelled
	require.NoError(t, store.Tasks.Update(ctx, stored))
	assert.Nil(t, stored.CompletedAt)
}

func TestDeletingProjectCascades(t *testing.T) {
	store := testutil.NewStore(t)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "P")
	store.CreateTask(t, project, alice, "child")
	ctx := context.Background()

	require.NoError(t, store.Projects.Delete(ctx, project.ID))
	n, err := store.Tasks.Count(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, store.Projects.Delete(ctx, project.ID), domain.ErrProjectNotFound)
}

func TestDeletingAssigneeClearsAssignment(t *testing.T) {
	store := testutil.NewStore(t)
	alice := store.CreateUser(t, "alice")
	bob := store.CreateUser(t, "bob")
	project := store.CreateProject(t, alice, "P")
	task := store.CreateTask(t, project, alice, "for bob", testutil.AssignedTo(bob))
	ctx := context.Background()

	require.NoError(t, store.Users.Delete(ctx, bob.ID))
	stored, err := store.Tasks.Get(ctx, repository.TaskFilter{ID: task.ID})
	require.NoError(t, err)
	assert.Nil(t, stored.AssigneeID)
}

func TestUsers_UsernameCaseInsensitiveEmailExact(t *testing.T) {
	store := testutil.NewStore(t)
	store.CreateUser(t, "Alice")
	ctx := context.Background()

	exists, err := store.Users.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Users.EmailExists(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, exists, "fixture email keeps the username's case")

	exists, err = store.Users.EmailExists(ctx, "Alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	dup := &domain.User{Username: "ALICE", PasswordHash: "!", IsActive: true}
	err = store.Users.Create(ctx, dup)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	user, err := store.Users.GetByUsername(ctx, "aLiCe")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Username)
}

func TestTasks_DueBeforeAndExcludedStatuses(t *testing.T) {
	store := testutil.NewStore(t)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "P")
	past := func(task *domain.Task) { task.DueDate = testutil.Date(-1) }
	store.CreateTask(t, project, alice, "late", past)
	store.CreateTask(t, project, alice, "late done", past, func(task *domain.Task) {
		task.Status = domain.StatusCompleted
	})
	store.CreateTask(t, project, alice, "today", func(task *domain.Task) { task.DueDate = testutil.Date(0) })

	today := testutil.Date(0)
	n, err := store.Tasks.Count(context.Background(), repository.TaskFilter{
		DueBefore:       &today,
		ExcludeStatuses: []domain.Status{domain.StatusCompleted, domain.StatusCancelled},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
