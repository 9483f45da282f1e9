package handler_test

import (
	"context"
	"encoding/json"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"

	apiHandler "github.com/fastygo/tracker/api/handler"
	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/infrastructure/monitor"
	"github.com/fastygo/tracker/internal/middleware"
	"github.com/fastygo/tracker/internal/router"
	"github.com/fastygo/tracker/internal/testutil"
	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/pkg/i18n"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/bolt"
	"github.com/fastygo/tracker/usecase/admin"
	authUC "github.com/fastygo/tracker/usecase/auth"
	dashboardUC "github.com/fastygo/tracker/usecase/dashboard"
	"github.com/fastygo/tracker/usecase/form"
	projectUC "github.com/fastygo/tracker/usecase/project"
	taskUC "github.com/fastygo/tracker/usecase/task"
)

const cookieName = "sessionid"

type app struct {
	store   *testutil.Store
	auth    *authUC.UseCase
	handler fasthttp.RequestHandler
}

func newApp(t *testing.T) *app {
	t.Helper()

	store := testutil.NewStore(t)
	sessions, err := bolt.Open(filepath.Join(t.TempDir(), "sessions.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	translator, err := i18n.New("es")
	require.NoError(t, err)

	auth := authUC.New(store.Users, sessions, authUC.Options{
		SessionTTL: time.Hour,
		JWTSecret:  "test-secret",
		JWTIssuer:  "tracker",
		BcryptCost: bcrypt.MinCost,
	}, nil)

	adapter := httpcontext.NewAdapter(time.Second)
	base := apiHandler.Base{Adapter: adapter, Translator: translator, Flasher: auth}

	mon := monitor.New(time.Minute, nil)
	mon.Register("sqlite", monitor.PingFunc(func(ctx context.Context) error { return store.DB.PingContext(ctx) }))

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(auth, apiHandler.SessionCookie{Name: cookieName, TTL: time.Hour}, base),
		Project:   apiHandler.NewProjectHandler(projectUC.New(store.Projects, store.Tasks, nil), base),
		Task:      apiHandler.NewTaskHandler(taskUC.New(store.Tasks, store.Projects, store.Users, store.Clock, nil), base),
		Dashboard: apiHandler.NewDashboardHandler(dashboardUC.New(store.Projects, store.Tasks, store.Clock, nil), base),
		Admin:     apiHandler.NewAdminHandler(admin.New(store.Users, store.Projects, store.Tasks, store.AdminLog, store.Clock, nil, admin.WithBcryptCost(bcrypt.MinCost)), base),
		Health:    apiHandler.NewHealthHandler(mon, base),
	}
	r := router.New(handlers, middleware.Authenticate(auth, adapter, cookieName, nil))

	return &app{store: store, auth: auth, handler: r.Handler}
}

// client keeps the session cookie between requests like a browser.
type client struct {
	app     *app
	session string
	bearer  string
}

func (a *app) client() *client {
	return &client{app: a}
}

func (a *app) loggedIn(t *testing.T, user *domain.User) *client {
	t.Helper()
	session, err := a.auth.CreateSession(context.Background(), user.ID, time.Hour)
	require.NoError(t, err)
	return &client{app: a, session: session.ID}
}

func (c *client) do(method, uri string, values url.Values) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	req.Header.Set("Accept-Language", "en")
	if c.session != "" {
		req.Header.SetCookie(cookieName, c.session)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	if values != nil {
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBodyString(values.Encode())
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	c.app.handler(ctx)

	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(cookieName)
	if ctx.Response.Header.Cookie(cookie) {
		c.session = string(cookie.Value())
	}
	return ctx
}

func (c *client) get(uri string) *fasthttp.RequestCtx {
	return c.do(fasthttp.MethodGet, uri, nil)
}

func (c *client) post(uri string, values url.Values) *fasthttp.RequestCtx {
	if values == nil {
		values = url.Values{}
	}
	return c.do(fasthttp.MethodPost, uri, values)
}

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  json.RawMessage `json:"error"`
	Meta   struct {
		Messages []string `json:"messages"`
	} `json:"meta"`
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env), string(ctx.Response.Body()))
	return env
}

func decodeForm(t *testing.T, ctx *fasthttp.RequestCtx) form.View {
	t.Helper()
	var payload struct {
		Form form.View `json:"form"`
	}
	require.NoError(t, json.Unmarshal(decode(t, ctx).Data, &payload))
	return payload.Form
}

func fieldErrors(view form.View, name string) []string {
	for _, f := range view.Fields {
		if f.Name == name {
			return f.Errors
		}
	}
	return nil
}

func location(ctx *fasthttp.RequestCtx) string {
	return string(ctx.Response.Header.Peek("Location"))
}

func TestRegisterThenLogin(t *testing.T) {
	a := newApp(t)
	c := a.client()

	resp := c.post("/register", url.Values{
		"username":  {"ana"},
		"email":     {"ana@example.com"},
		"password1": {"Xk9!mnopq"},
		"password2": {"Xk9!mnopq"},
	})
	require.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode(), string(resp.Response.Body()))
	assert.Equal(t, "/login", location(resp))
	require.NotEmpty(t, c.session)

	resp = c.get("/login")
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())
	assert.Equal(t, []string{"Account created for ana! You can now log in."}, decode(t, resp).Meta.Messages)

	resp = c.get("/login")
	assert.Empty(t, decode(t, resp).Meta.Messages)

	anonymous := c.session
	resp = c.post("/login", url.Values{"username": {"ANA"}, "password": {"wrong"}})
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())
	view := decodeForm(t, resp)
	assert.False(t, view.Valid)
	assert.Equal(t, []string{"Invalid username or password."}, view.NonFieldErrors)

	resp = c.post("/login", url.Values{"username": {"ana"}, "password": {"Xk9!mnopq"}, "next": {"/dashboard"}})
	require.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode())
	assert.Equal(t, "/dashboard", location(resp))
	assert.NotEqual(t, anonymous, c.session)

	resp = c.get("/dashboard")
	assert.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())

	resp = c.get("/")
	assert.Equal(t, "/projects", location(resp))
}

func TestLoginIgnoresExternalNext(t *testing.T) {
	a := newApp(t)
	hash, err := authUC.HashPassword("Xk9!mnopq", bcrypt.MinCost)
	require.NoError(t, err)
	a.store.CreateUser(t, "ana", func(u *domain.User) { u.PasswordHash = hash })

	resp := a.client().post("/login", url.Values{"username": {"ana"}, "password": {"Xk9!mnopq"}, "next": {"//evil.example"}})
	require.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode())
	assert.Equal(t, "/projects", location(resp))
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	a := newApp(t)

	resp := a.client().get("/projects?page=2")
	assert.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode())
	assert.Equal(t, "/login?next="+url.QueryEscape("/projects?page=2"), location(resp))

	resp = a.client().get("/")
	assert.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())
}

func TestRegisterWithTakenEmail(t *testing.T) {
	a := newApp(t)
	a.store.CreateUser(t, "ana")

	resp := a.client().post("/register", url.Values{
		"username":  {"luis"},
		"email":     {"ana@example.com"},
		"password1": {"Xk9!mnopq"},
		"password2": {"Xk9!mnopq"},
	})
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())

	view := decodeForm(t, resp)
	assert.False(t, view.Valid)
	assert.Equal(t, []string{"This email address is already registered."}, fieldErrors(view, "email"))
	assert.Empty(t, fieldErrors(view, "username"))
	assert.Empty(t, fieldErrors(view, "password1"))
	assert.Empty(t, fieldErrors(view, "password2"))
}

func TestCreateProject(t *testing.T) {
	a := newApp(t)
	owner := a.store.CreateUser(t, "ana")
	c := a.loggedIn(t, owner)

	resp := c.post("/projects/new", url.Values{
		"name":        {"Test Project"},
		"description": {"Tracker rollout"},
		"start_date":  {"2024-03-10"},
		"end_date":    {"2024-03-17"},
		"status":      {"pending"},
	})
	require.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode(), string(resp.Response.Body()))
	assert.Equal(t, "/projects", location(resp))

	resp = c.get("/projects")
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())
	env := decode(t, resp)
	assert.Equal(t, []string{"Project created successfully!"}, env.Meta.Messages)

	var data struct {
		Projects []domain.Project `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Projects, 1)
	assert.Equal(t, "Test Project", data.Projects[0].Name)
	assert.Equal(t, owner.ID, data.Projects[0].OwnerID)
}

func TestCreateProjectWithEndBeforeStart(t *testing.T) {
	a := newApp(t)
	c := a.loggedIn(t, a.store.CreateUser(t, "ana"))

	resp := c.post("/projects/new", url.Values{
		"name":        {"Test Project"},
		"description": {"Tracker rollout"},
		"start_date":  {"2024-03-11"},
		"end_date":    {"2024-03-10"},
		"status":      {"pending"},
	})
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())

	view := decodeForm(t, resp)
	assert.False(t, view.Valid)
	assert.Equal(t, []string{"The end date cannot be earlier than the start date."}, fieldErrors(view, "end_date"))
}

func TestEditingAnotherUsersProjectIsNotFound(t *testing.T) {
	a := newApp(t)
	owner := a.store.CreateUser(t, "ana")
	project := a.store.CreateProject(t, owner, "Private")
	c := a.loggedIn(t, a.store.CreateUser(t, "luis"))

	for _, resp := range []*fasthttp.RequestCtx{
		c.get("/projects/" + project.ID + "/edit"),
		c.post("/projects/"+project.ID+"/edit", url.Values{"name": {"Stolen"}}),
		c.get("/projects/" + project.ID),
		c.post("/projects/"+project.ID+"/delete", nil),
	} {
		assert.Equal(t, fasthttp.StatusNotFound, resp.Response.StatusCode())
		assert.Equal(t, string(domain.ErrCodeNotFound), decode(t, resp).Code)
	}

	missing := c.get("/projects/does-not-exist/edit")
	assert.Equal(t, fasthttp.StatusNotFound, missing.Response.StatusCode())
}

func TestUpdateAndDeleteProject(t *testing.T) {
	a := newApp(t)
	owner := a.store.CreateUser(t, "ana")
	project := a.store.CreateProject(t, owner, "Rollout")
	a.store.CreateTask(t, project, owner, "Kickoff")
	c := a.loggedIn(t, owner)

	resp := c.post("/projects/"+project.ID+"/edit", url.Values{
		"name":        {"Rollout v2"},
		"description": {"Second phase"},
		"start_date":  {"2024-03-10"},
		"status":      {"in_progress"},
	})
	require.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode(), string(resp.Response.Body()))
	assert.Equal(t, "/projects/"+project.ID, location(resp))

	resp = c.get("/projects/" + project.ID + "/delete")
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())

	resp = c.post("/projects/"+project.ID+"/delete", nil)
	require.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode())
	assert.Equal(t, "/projects", location(resp))

	count, err := a.store.Tasks.Count(context.Background(), taskFilterForProject(project.ID))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMyTasksFilterWithoutAssignments(t *testing.T) {
	a := newApp(t)
	c := a.loggedIn(t, a.store.CreateUser(t, "ana"))

	resp := c.get("/tasks?filter=my_tasks")
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())

	var data struct {
		Tasks  []domain.Task `json:"tasks"`
		Filter string        `json:"filter"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
	assert.Empty(t, data.Tasks)
	assert.Equal(t, "my_tasks", data.Filter)
}

func TestCreateTaskAndAssigneeCannotDelete(t *testing.T) {
	a := newApp(t)
	owner := a.store.CreateUser(t, "ana")
	assignee := a.store.CreateUser(t, "luis")
	project := a.store.CreateProject(t, owner, "Rollout")
	c := a.loggedIn(t, owner)

	resp := c.post("/tasks/new", url.Values{
		"title":       {"Test Task"},
		"description": {"Prepare the kickoff"},
		"project":     {project.ID},
		"assigned_to": {assignee.ID},
		"priority":    {"medium"},
		"status":      {"pending"},
		"due_date":    {"2024-03-13"},
	})
	require.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode(), string(resp.Response.Body()))
	assert.Equal(t, "/tasks", location(resp))

	tasks, err := a.store.Tasks.List(context.Background(), taskFilterForProject(project.ID))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, owner.ID, task.CreatorID)

	other := a.loggedIn(t, assignee)
	resp = other.get("/tasks/" + task.ID)
	assert.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())
	resp = other.post("/tasks/"+task.ID+"/delete", nil)
	assert.Equal(t, fasthttp.StatusNotFound, resp.Response.StatusCode())

	resp = c.post("/tasks/"+task.ID+"/delete", nil)
	assert.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode())
}

func TestCreateTaskWithPastDueDate(t *testing.T) {
	a := newApp(t)
	owner := a.store.CreateUser(t, "ana")
	project := a.store.CreateProject(t, owner, "Rollout")
	c := a.loggedIn(t, owner)

	resp := c.post("/tasks/new", url.Values{
		"title":       {"Late"},
		"description": {"Already due"},
		"project":     {project.ID},
		"priority":    {"high"},
		"status":      {"pending"},
		"due_date":    {"2024-03-09"},
	})
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())
	view := decodeForm(t, resp)
	assert.False(t, view.Valid)
	assert.NotEmpty(t, fieldErrors(view, "due_date"))
}

func TestAdminRequiresStaff(t *testing.T) {
	a := newApp(t)

	resp := a.client().get("/admin/users")
	assert.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode())

	resp = a.loggedIn(t, a.store.CreateUser(t, "ana")).get("/admin/users")
	assert.Equal(t, fasthttp.StatusForbidden, resp.Response.StatusCode())

	staff := a.loggedIn(t, a.store.CreateUser(t, "root", testutil.Superuser))
	resp = staff.get("/admin/users")
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())

	resp = staff.post("/admin/users", url.Values{
		"username":  {"marta"},
		"email":     {"marta@example.com"},
		"password":  {"Xk9!mnopq"},
		"is_active": {"on"},
	})
	require.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode(), string(resp.Response.Body()))
	assert.Equal(t, "/admin/users", location(resp))

	resp = staff.post("/admin/users", url.Values{"username": {"bad name"}})
	assert.Equal(t, fasthttp.StatusBadRequest, resp.Response.StatusCode())

	resp = staff.get("/admin/log")
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())
	var data struct {
		Entries []domain.AdminLogEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
	assert.Len(t, data.Entries, 1)
}

func TestBearerToken(t *testing.T) {
	a := newApp(t)
	hash, err := authUC.HashPassword("Xk9!mnopq", bcrypt.MinCost)
	require.NoError(t, err)
	a.store.CreateUser(t, "ana", func(u *domain.User) { u.PasswordHash = hash })

	resp := a.client().post("/api/token", url.Values{"username": {"ana"}, "password": {"nope"}})
	assert.Equal(t, fasthttp.StatusUnauthorized, resp.Response.StatusCode())

	resp = a.client().post("/api/token", url.Values{"username": {"ana"}, "password": {"Xk9!mnopq"}})
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())
	var token struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &token))
	require.NotEmpty(t, token.Token)

	c := &client{app: a, bearer: token.Token}
	resp = c.get("/projects")
	assert.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())
}

func TestLogout(t *testing.T) {
	a := newApp(t)
	c := a.loggedIn(t, a.store.CreateUser(t, "ana"))
	old := c.session

	resp := c.post("/logout", nil)
	require.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode())
	assert.Equal(t, "/", location(resp))
	assert.NotEqual(t, old, c.session)

	resp = c.get("/")
	require.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())
	assert.Equal(t, []string{"You have been logged out."}, decode(t, resp).Meta.Messages)

	resp = c.get("/projects")
	assert.Equal(t, fasthttp.StatusFound, resp.Response.StatusCode())
}

func TestHealth(t *testing.T) {
	a := newApp(t)

	resp := a.client().get("/health")
	assert.Equal(t, fasthttp.StatusOK, resp.Response.StatusCode())
}

func taskFilterForProject(projectID string) repository.TaskFilter {
	return repository.TaskFilter{ProjectID: projectID}
}
