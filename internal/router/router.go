package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tracker/api/handler"
	"github.com/fastygo/tracker/internal/middleware"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Project   *apiHandler.ProjectHandler
	Task      *apiHandler.TaskHandler
	Dashboard *apiHandler.DashboardHandler
	Admin     *apiHandler.AdminHandler
	Health    *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New wires every route. authenticate resolves the actor and never
// rejects; login and staff gates are layered on top of it.
func New(handlers Handlers, authenticate Middleware) *router.Router {
	r := router.New()

	public := authenticate
	login := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return authenticate(middleware.RequireLogin(h))
	}
	staff := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return login(middleware.RequireStaff(h))
	}

	r.GET("/health", handlers.Health.Check)

	r.GET("/", public(handlers.Auth.Home))
	r.GET("/register", public(handlers.Auth.RegisterForm))
	r.POST("/register", public(handlers.Auth.Register))
	r.GET("/login", public(handlers.Auth.LoginForm))
	r.POST("/login", public(handlers.Auth.Login))
	r.POST("/logout", public(handlers.Auth.Logout))
	r.POST("/api/token", handlers.Auth.Token)

	r.GET("/projects", login(handlers.Project.List))
	r.GET("/projects/new", login(handlers.Project.NewForm))
	r.POST("/projects/new", login(handlers.Project.Create))
	r.GET("/projects/{id}", login(handlers.Project.Detail))
	r.GET("/projects/{id}/edit", login(handlers.Project.EditForm))
	r.POST("/projects/{id}/edit", login(handlers.Project.Update))
	r.GET("/projects/{id}/delete", login(handlers.Project.ConfirmDelete))
	r.POST("/projects/{id}/delete", login(handlers.Project.Delete))

	r.GET("/tasks", login(handlers.Task.List))
	r.GET("/tasks/new", login(handlers.Task.NewForm))
	r.POST("/tasks/new", login(handlers.Task.Create))
	r.GET("/tasks/{id}", login(handlers.Task.Detail))
	r.GET("/tasks/{id}/edit", login(handlers.Task.EditForm))
	r.POST("/tasks/{id}/edit", login(handlers.Task.Update))
	r.GET("/tasks/{id}/delete", login(handlers.Task.ConfirmDelete))
	r.POST("/tasks/{id}/delete", login(handlers.Task.Delete))

	r.GET("/dashboard", login(handlers.Dashboard.Show))

	admin := r.Group("/admin")
	admin.GET("/users", staff(handlers.Admin.ListUsers))
	admin.POST("/users", staff(handlers.Admin.CreateUser))
	admin.GET("/users/{id}", staff(handlers.Admin.GetUser))
	admin.POST("/users/{id}", staff(handlers.Admin.UpdateUser))
	admin.POST("/users/{id}/delete", staff(handlers.Admin.DeleteUser))
	admin.GET("/projects", staff(handlers.Admin.ListProjects))
	admin.POST("/projects", staff(handlers.Admin.CreateProject))
	admin.GET("/projects/{id}", staff(handlers.Admin.GetProject))
	admin.POST("/projects/{id}", staff(handlers.Admin.UpdateProject))
	admin.POST("/projects/{id}/delete", staff(handlers.Admin.DeleteProject))
	admin.GET("/tasks", staff(handlers.Admin.ListTasks))
	admin.POST("/tasks", staff(handlers.Admin.CreateTask))
	admin.GET("/tasks/{id}", staff(handlers.Admin.GetTask))
	admin.POST("/tasks/{id}", staff(handlers.Admin.UpdateTask))
	admin.POST("/tasks/{id}/delete", staff(handlers.Admin.DeleteTask))
	admin.GET("/log", staff(handlers.Admin.Log))

	return r
}
