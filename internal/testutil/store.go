// Package testutil builds in-memory stores and fixtures for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/sqlite"
)

// Today is the fixed calendar date reported by Store.Clock.
var Today = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

// Store bundles SQLite repositories over one in-memory database.
type Store struct {
	DB       *sqlx.DB
	Clock    domain.Clock
	Users    repository.UserRepository
	Projects repository.ProjectRepository
	Tasks    repository.TaskRepository
	AdminLog repository.AdminLogRepository

	now time.Time
}

// NewStore opens a migrated in-memory database closed at test cleanup.
// Its clock starts at noon on Today and only moves through Advance.
func NewStore(t testing.TB) *Store {
	t.Helper()

	db, err := sqlite.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := &Store{DB: db, now: Today.Add(12 * time.Hour)}
	s.Clock = func() time.Time { return s.now }
	s.Users = sqlite.NewUserRepository(db, s.Clock)
	s.Projects = sqlite.NewProjectRepository(db, s.Clock)
	s.Tasks = sqlite.NewTaskRepository(db, s.Clock)
	s.AdminLog = sqlite.NewAdminLogRepository(db, s.Clock)
	return s
}

// Advance moves the store clock forward.
func (s *Store) Advance(d time.Duration) {
	s.now = s.now.Add(d)
}

// Date returns Today shifted by days.
func Date(days int) time.Time {
	return Today.AddDate(0, 0, days)
}

// CreateUser inserts an active user with an unusable password hash.
func (s *Store) CreateUser(t testing.TB, username string, opts ...func(*domain.User)) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "!",
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(user)
	}
	require.NoError(t, s.Users.Create(context.Background(), user))
	return user
}

// Staff marks a fixture user as staff.
func Staff(u *domain.User) { u.IsStaff = true }

// Superuser marks a fixture user as staff and superuser.
func Superuser(u *domain.User) {
	u.IsStaff = true
	u.IsSuperuser = true
}

// CreateProject inserts a project owned by owner starting Today.
func (s *Store) CreateProject(t testing.TB, owner *domain.User, name string) *domain.Project {
	t.Helper()
	project := &domain.Project{
		Name:        name,
		Description: name + " description",
		OwnerID:     owner.ID,
		StartDate:   Today,
	}
	require.NoError(t, s.Projects.Create(context.Background(), project))
	return project
}

// CreateTask inserts a task in project, created by creator and due in
// three days.
func (s *Store) CreateTask(t testing.TB, project *domain.Project, creator *domain.User, title string, opts ...func(*domain.Task)) *domain.Task {
	t.Helper()
	task := &domain.Task{
		Title:       title,
		Description: title + " description",
		ProjectID:   project.ID,
		CreatorID:   creator.ID,
		DueDate:     Date(3),
	}
	for _, opt := range opts {
		opt(task)
	}
	require.NoError(t, s.Tasks.Create(context.Background(), task))
	return task
}

// AssignedTo sets the task assignee.
func AssignedTo(u *domain.User) func(*domain.Task) {
	return func(task *domain.Task) {
		id := u.ID
		task.AssigneeID = &id
	}
}
