package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/testutil"
	"github.com/fastygo/tracker/repository"
)

func newUseCase(store *testutil.Store) *UseCase {
	return New(store.Users, store.Projects, store.Tasks, store.AdminLog, store.Clock, nil,
		WithBcryptCost(bcrypt.MinCost))
}

func TestRequireStaff(t *testing.T) {
	assert.ErrorIs(t, RequireStaff(nil), domain.ErrUnauthorized)
	assert.ErrorIs(t, RequireStaff(&domain.User{ID: "u", IsActive: true}), domain.ErrForbidden)
	assert.NoError(t, RequireStaff(&domain.User{ID: "u", IsActive: true, IsStaff: true}))
}

func TestListUsers_StaffSeesOnlySelf(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	staff := store.CreateUser(t, "staff", testutil.Staff)
	root := store.CreateUser(t, "root", testutil.Superuser)
	store.CreateUser(t, "alice")
	ctx := context.Background()

	users, err := uc.ListUsers(ctx, staff, repository.UserFilter{})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, staff.ID, users[0].ID)

	users, err = uc.ListUsers(ctx, root, repository.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = uc.GetUser(ctx, staff, root.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestListUsers_Filters(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	root := store.CreateUser(t, "root", testutil.Superuser)
	store.CreateUser(t, "staffer", testutil.Staff)
	store.CreateUser(t, "alice")

	staffOnly := true
	users, err := uc.ListUsers(context.Background(), root, repository.UserFilter{IsStaff: &staffOnly})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = uc.ListUsers(context.Background(), root, repository.UserFilter{Search: "ALI"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestNonStaffIsForbidden(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	alice := store.CreateUser(t, "alice")

	_, err := uc.ListProjects(context.Background(), alice, repository.ProjectFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.ListTasks(context.Background(), alice, repository.TaskFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateUser_HashesPasswordAndLogs(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	root := store.CreateUser(t, "root", testutil.Superuser)
	ctx := context.Background()

	user, err := uc.CreateUser(ctx, root, UserInput{
		Username: "newbie",
		Email:    "newbie@example.com",
		Password: "Xq7!mountain",
		IsActive: true,
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Xq7!mountain")))

	entries, err := uc.Log(ctx, root, repository.AdminLogFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AdminAddition, entries[0].Action)
	assert.Equal(t, "newbie", entries[0].ObjectRepr)
}

func TestCreateUser_StaffForbidden(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	staff := store.CreateUser(t, "staff", testutil.Staff)

	_, err := uc.CreateUser(context.Background(), staff, UserInput{Username: "x", Password: "y"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateUser_StaffCannotElevate(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	staff := store.CreateUser(t, "staff", testutil.Staff)

	updated, err := uc.UpdateUser(context.Background(), staff, staff.ID, UserInput{
		Username:    "staff",
		FirstName:   "Stella",
		IsSuperuser: true,
		IsActive:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Stella", updated.FirstName)
	assert.False(t, updated.IsSuperuser)
}

func TestCreateProject_EnforcesDateOrder(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	staff := store.CreateUser(t, "staff", testutil.Staff)
	alice := store.CreateUser(t, "alice")

	_, err := uc.CreateProject(context.Background(), staff, ProjectInput{
		Name:        "P",
		Description: "d",
		OwnerID:     alice.ID,
		StartDate:   testutil.Date(2).Format(domain.DateLayout),
		EndDate:     testutil.Date(1).Format(domain.DateLayout),
	})
	fe, ok := domain.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{domain.MsgEndBeforeStart}, fe["end_date"])
}

func TestCreateTask_DefaultsCreatorToActor(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	staff := store.CreateUser(t, "staff", testutil.Staff)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "P")

	task, err := uc.CreateTask(context.Background(), staff, TaskInput{
		Title:       "Admin task",
		Description: "d",
		ProjectID:   project.ID,
		Status:      "completed",
		DueDate:     testutil.Date(1).Format(domain.DateLayout),
	})
	require.NoError(t, err)
	assert.Equal(t, staff.ID, task.CreatorID)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.NotNil(t, task.CompletedAt, "completion rule applies on admin saves")
}

func TestCreateTask_KeepsExplicitCreator(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	staff := store.CreateUser(t, "staff", testutil.Staff)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "P")

	task, err := uc.CreateTask(context.Background(), staff, TaskInput{
		Title:       "For alice",
		Description: "d",
		ProjectID:   project.ID,
		CreatorID:   alice.ID,
		DueDate:     testutil.Date(1).Format(domain.DateLayout),
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, task.CreatorID)
}

func TestUpdateTask_ClearsCompletionWhenReopened(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	staff := store.CreateUser(t, "staff", testutil.Staff)
	alice := store.CreateUser(t, "alice")
	project := store.CreateProject(t, alice, "P")
	task := store.CreateTask(t, project, alice, "done", func(task *domain.Task) {
		task.Status = domain.StatusCompleted
	})
	require.NotNil(t, task.CompletedAt)

	updated, err := uc.UpdateTask(context.Background(), staff, task.ID, TaskInput{
		Title:       task.Title,
		Description: task.Description,
		ProjectID:   project.ID,
		Status:      "pending",
		DueDate:     testutil.Date(3).Format(domain.DateLayout),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)
	assert.Equal(t, alice.ID, updated.CreatorID)
}

func TestLog_StaffSeesOwnEntries(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	staff := store.CreateUser(t, "staff", testutil.Staff)
	root := store.CreateUser(t, "root", testutil.Superuser)
	alice := store.CreateUser(t, "alice")
	ctx := context.Background()

	in := ProjectInput{
		Name:        "P",
		Description: "d",
		OwnerID:     alice.ID,
		StartDate:   testutil.Date(0).Format(domain.DateLayout),
	}
	_, err := uc.CreateProject(ctx, staff, in)
	require.NoError(t, err)
	_, err = uc.CreateProject(ctx, root, in)
	require.NoError(t, err)

	entries, err := uc.Log(ctx, staff, repository.AdminLogFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, staff.ID, entries[0].ActorID)

	entries, err = uc.Log(ctx, root, repository.AdminLogFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDeleteUser_ClearsAssignments(t *testing.T) {
	store := testutil.NewStore(t)
	uc := newUseCase(store)
	root := store.CreateUser(t, "root", testutil.Superuser)
	alice := store.CreateUser(t, "alice")
	bob := store.CreateUser(t, "bob")
	project := store.CreateProject(t, alice, "P")
	task := store.CreateTask(t, project, alice, "for bob", testutil.AssignedTo(bob))
	ctx := context.Background()

	require.NoError(t, uc.DeleteUser(ctx, root, bob.ID))
	stored, err := store.Tasks.Get(ctx, repository.TaskFilter{ID: task.ID})
	require.NoError(t, err)
	assert.Nil(t, stored.AssigneeID)

	require.NoError(t, uc.DeleteUser(ctx, root, alice.ID))
	n, err := store.Tasks.Count(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
