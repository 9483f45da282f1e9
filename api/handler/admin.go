package handler

import (
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/admin"
	"github.com/fastygo/tracker/usecase/form"
)

// AdminHandler exposes user, project and task management to staff.
// Writes answer 302 to the matching list, like a change form would.
type AdminHandler struct {
	baseHandler
	uc *admin.UseCase
}

func NewAdminHandler(uc *admin.UseCase, base Base) *AdminHandler {
	return &AdminHandler{
		baseHandler: newBaseHandler(base),
		uc:          uc,
	}
}

// @Summary List users
// @Tags admin
// @Param q query string false "search"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	args := ctx.QueryArgs()
	limit, offset := paging(args)
	filter := repository.UserFilter{
		IsStaff:     parseBoolArg(args, "is_staff"),
		IsSuperuser: parseBoolArg(args, "is_superuser"),
		Search:      string(args.Peek("q")),
		Limit:       limit,
		Offset:      offset,
	}
	users, err := h.uc.ListUsers(stdCtx, actor(ctx), filter)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{"users": users})
}

// @Summary Create user
// @Tags admin
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.CreateUser(stdCtx, actor(ctx), bindUserInput(values(ctx)))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, stdCtx, "/admin/users", domain.MsgAdminSaved, user.String())
}

// @Summary Get user
// @Tags admin
// @Router /admin/users/{id} [get]
func (h *AdminHandler) GetUser(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.GetUser(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{"user": user})
}

// @Summary Update user
// @Tags admin
// @Router /admin/users/{id} [post]
func (h *AdminHandler) UpdateUser(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.UpdateUser(stdCtx, actor(ctx), pathID(ctx), bindUserInput(values(ctx)))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, stdCtx, "/admin/users", domain.MsgAdminSaved, user.String())
}

// @Summary Delete user
// @Tags admin
// @Router /admin/users/{id}/delete [post]
func (h *AdminHandler) DeleteUser(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.GetUser(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if err := h.uc.DeleteUser(stdCtx, actor(ctx), user.ID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, stdCtx, "/admin/users", domain.MsgAdminDeleted, user.String())
}

// @Summary List projects
// @Tags admin
// @Router /admin/projects [get]
func (h *AdminHandler) ListProjects(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	args := ctx.QueryArgs()
	limit, offset := paging(args)
	filter := repository.ProjectFilter{
		OwnerID: string(args.Peek("owner")),
		Status:  domain.Status(args.Peek("status")),
		Search:  string(args.Peek("q")),
		Limit:   limit,
		Offset:  offset,
	}
	projects, err := h.uc.ListProjects(stdCtx, actor(ctx), filter)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{"projects": projects})
}

// @Summary Create project
// @Tags admin
// @Router /admin/projects [post]
func (h *AdminHandler) CreateProject(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.CreateProject(stdCtx, actor(ctx), bindProjectInput(values(ctx)))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, stdCtx, "/admin/projects", domain.MsgAdminSaved, project.String())
}

// @Summary Get project
// @Tags admin
// @Router /admin/projects/{id} [get]
func (h *AdminHandler) GetProject(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.GetProject(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{"project": project})
}

// @Summary Update project
// @Tags admin
// @Router /admin/projects/{id} [post]
func (h *AdminHandler) UpdateProject(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.UpdateProject(stdCtx, actor(ctx), pathID(ctx), bindProjectInput(values(ctx)))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, stdCtx, "/admin/projects", domain.MsgAdminSaved, project.String())
}

// @Summary Delete project
// @Tags admin
// @Router /admin/projects/{id}/delete [post]
func (h *AdminHandler) DeleteProject(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.GetProject(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if err := h.uc.DeleteProject(stdCtx, actor(ctx), project.ID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, stdCtx, "/admin/projects", domain.MsgAdminDeleted, project.String())
}

// @Summary List tasks
// @Tags admin
// @Router /admin/tasks [get]
func (h *AdminHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	args := ctx.QueryArgs()
	limit, offset := paging(args)
	filter := repository.TaskFilter{
		ProjectID:  string(args.Peek("project")),
		AssigneeID: string(args.Peek("assigned_to")),
		CreatorID:  string(args.Peek("created_by")),
		Priority:   domain.Priority(args.Peek("priority")),
		Search:     string(args.Peek("q")),
		Limit:      limit,
		Offset:     offset,
	}
	if status := string(args.Peek("status")); status != "" {
		filter.Statuses = []domain.Status{domain.Status(status)}
	}
	tasks, err := h.uc.ListTasks(stdCtx, actor(ctx), filter)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{"tasks": tasks})
}

// @Summary Create task
// @Tags admin
// @Router /admin/tasks [post]
func (h *AdminHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.CreateTask(stdCtx, actor(ctx), bindTaskInput(values(ctx)))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, stdCtx, "/admin/tasks", domain.MsgAdminSaved, task.String())
}

// @Summary Get task
// @Tags admin
// @Router /admin/tasks/{id} [get]
func (h *AdminHandler) GetTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{"task": task})
}

// @Summary Update task
// @Tags admin
// @Router /admin/tasks/{id} [post]
func (h *AdminHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.UpdateTask(stdCtx, actor(ctx), pathID(ctx), bindTaskInput(values(ctx)))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, stdCtx, "/admin/tasks", domain.MsgAdminSaved, task.String())
}

// @Summary Delete task
// @Tags admin
// @Router /admin/tasks/{id}/delete [post]
func (h *AdminHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if err := h.uc.DeleteTask(stdCtx, actor(ctx), task.ID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, stdCtx, "/admin/tasks", domain.MsgAdminDeleted, task.String())
}

// @Summary Admin change history
// @Tags admin
// @Router /admin/log [get]
func (h *AdminHandler) Log(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	args := ctx.QueryArgs()
	limit, offset := paging(args)
	entries, err := h.uc.Log(stdCtx, actor(ctx), repository.AdminLogFilter{
		ObjectType: string(args.Peek("object_type")),
		ObjectID:   string(args.Peek("object_id")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{"entries": entries})
}

func bindUserInput(get form.Getter) admin.UserInput {
	return admin.UserInput{
		Username:    get("username"),
		Email:       get("email"),
		Password:    get("password"),
		FirstName:   get("first_name"),
		LastName:    get("last_name"),
		IsStaff:     checked(get("is_staff")),
		IsSuperuser: checked(get("is_superuser")),
		IsActive:    checked(get("is_active")),
	}
}

func bindProjectInput(get form.Getter) admin.ProjectInput {
	return admin.ProjectInput{
		Name:        get("name"),
		Description: get("description"),
		OwnerID:     get("owner"),
		StartDate:   get("start_date"),
		EndDate:     get("end_date"),
		Status:      get("status"),
	}
}

func bindTaskInput(get form.Getter) admin.TaskInput {
	return admin.TaskInput{
		Title:       get("title"),
		Description: get("description"),
		ProjectID:   get("project"),
		AssigneeID:  get("assigned_to"),
		CreatorID:   get("created_by"),
		Priority:    get("priority"),
		Status:      get("status"),
		DueDate:     get("due_date"),
	}
}

// checked reads an HTML checkbox or a JSON boolean.
func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func parseBoolArg(args *fasthttp.Args, key string) *bool {
	if !args.Has(key) {
		return nil
	}
	v := checked(string(args.Peek(key)))
	return &v
}

func paging(args *fasthttp.Args) (int, int) {
	return parseInt(string(args.Peek("limit")), 100), parseInt(string(args.Peek("offset")), 0)
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	v, err := strconv.Atoi(value)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
