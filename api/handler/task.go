package handler

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/usecase/form"
	"github.com/fastygo/tracker/usecase/scope"
	taskUC "github.com/fastygo/tracker/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, base Base) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(base),
		uc:          uc,
	}
}

// @Summary List visible tasks
// @Tags tasks
// @Param filter query string false "all | my_tasks | created_by_me"
// @Router /tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	mode := scope.ParseTaskListMode(string(ctx.QueryArgs().Peek("filter")))
	tasks, err := h.uc.List(stdCtx, actor(ctx), mode)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{
		"tasks":  tasks,
		"filter": string(mode),
	})
}

// @Summary Task detail
// @Tags tasks
// @Router /tasks/{id} [get]
func (h *TaskHandler) Detail(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Get(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{"task": task})
}

// @Summary Task creation form
// @Tags tasks
// @Router /tasks/new [get]
func (h *TaskHandler) NewForm(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	f, err := h.uc.NewForm(stdCtx, actor(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondForm(ctx, stdCtx, f.View(), nil)
}

// @Summary Create task
// @Tags tasks
// @Router /tasks/new [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	_, f, err := h.uc.Create(stdCtx, actor(ctx), values(ctx))
	if err != nil {
		h.taskFailure(ctx, stdCtx, err, f, nil)
		return
	}
	h.redirect(ctx, stdCtx, "/tasks", domain.MsgTaskCreated)
}

// @Summary Task edit form
// @Tags tasks
// @Router /tasks/{id}/edit [get]
func (h *TaskHandler) EditForm(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	f, err := h.uc.EditForm(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondForm(ctx, stdCtx, f.View(), nil)
}

// @Summary Update task
// @Tags tasks
// @Router /tasks/{id}/edit [post]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, f, err := h.uc.Update(stdCtx, actor(ctx), pathID(ctx), values(ctx))
	if err != nil {
		h.taskFailure(ctx, stdCtx, err, f, nil)
		return
	}
	h.redirect(ctx, stdCtx, "/tasks/"+task.ID, domain.MsgTaskUpdated)
}

// @Summary Task delete confirmation
// @Tags tasks
// @Router /tasks/{id}/delete [get]
func (h *TaskHandler) ConfirmDelete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetDeletable(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{"task": task})
}

// @Summary Delete task
// @Tags tasks
// @Router /tasks/{id}/delete [post]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, actor(ctx), pathID(ctx)); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, stdCtx, "/tasks", domain.MsgTaskDeleted)
}

func (h *TaskHandler) taskFailure(ctx *fasthttp.RequestCtx, std context.Context, err error, f *form.TaskForm, object interface{}) {
	if f == nil {
		h.respondError(ctx, std, err)
		return
	}
	h.formFailure(ctx, std, err, f, object)
}
