package handler

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/usecase/form"
	projectUC "github.com/fastygo/tracker/usecase/project"
)

type ProjectHandler struct {
	baseHandler
	uc *projectUC.UseCase
}

func NewProjectHandler(uc *projectUC.UseCase, base Base) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(base),
		uc:          uc,
	}
}

// @Summary List own projects
// @Tags projects
// @Router /projects [get]
func (h *ProjectHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	projects, err := h.uc.List(stdCtx, actor(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{"projects": projects})
}

// @Summary Project detail with its visible tasks
// @Tags projects
// @Router /projects/{id} [get]
func (h *ProjectHandler) Detail(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	detail, err := h.uc.Detail(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, detail)
}

// @Summary Project creation form
// @Tags projects
// @Router /projects/new [get]
func (h *ProjectHandler) NewForm(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondForm(ctx, stdCtx, form.NewProjectForm(nil).View(), nil)
}

// @Summary Create project
// @Tags projects
// @Router /projects/new [post]
func (h *ProjectHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	f := form.NewProjectForm(nil)
	f.Bind(values(ctx))

	if _, err := h.uc.Create(stdCtx, actor(ctx), f); err != nil {
		h.formFailure(ctx, stdCtx, err, f, nil)
		return
	}
	h.redirect(ctx, stdCtx, "/projects", domain.MsgProjectCreated)
}

// @Summary Project edit form
// @Tags projects
// @Router /projects/{id}/edit [get]
func (h *ProjectHandler) EditForm(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.Get(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondForm(ctx, stdCtx, form.NewProjectForm(project).View(), project)
}

// @Summary Update project
// @Tags projects
// @Router /projects/{id}/edit [post]
func (h *ProjectHandler) Update(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	f := form.NewProjectForm(nil)
	f.Bind(values(ctx))

	project, err := h.uc.Update(stdCtx, actor(ctx), pathID(ctx), f)
	if err != nil {
		h.formFailure(ctx, stdCtx, err, f, nil)
		return
	}
	h.redirect(ctx, stdCtx, "/projects/"+project.ID, domain.MsgProjectUpdated)
}

// @Summary Project delete confirmation
// @Tags projects
// @Router /projects/{id}/delete [get]
func (h *ProjectHandler) ConfirmDelete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.Get(stdCtx, actor(ctx), pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, map[string]interface{}{"project": project})
}

// @Summary Delete project and its tasks
// @Tags projects
// @Router /projects/{id}/delete [post]
func (h *ProjectHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, actor(ctx), pathID(ctx)); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.redirect(ctx, stdCtx, "/projects", domain.MsgProjectDeleted)
}

type viewer interface {
	View() form.View
}

// formFailure re-renders f when err carries field errors and falls back
// to the regular error mapping otherwise.
func (h baseHandler) formFailure(ctx *fasthttp.RequestCtx, std context.Context, err error, f viewer, object interface{}) {
	if _, ok := domain.AsFieldErrors(err); ok && f != nil {
		h.respondForm(ctx, std, f.View(), object)
		return
	}
	h.respondError(ctx, std, err)
}
