package handler

import (
	"github.com/valyala/fasthttp"

	dashboardUC "github.com/fastygo/tracker/usecase/dashboard"
)

type DashboardHandler struct {
	baseHandler
	uc *dashboardUC.UseCase
}

func NewDashboardHandler(uc *dashboardUC.UseCase, base Base) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(base),
		uc:          uc,
	}
}

// @Summary Personal dashboard
// @Tags dashboard
// @Router /dashboard [get]
func (h *DashboardHandler) Show(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	dashboard, err := h.uc.Build(stdCtx, actor(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondView(ctx, stdCtx, dashboard)
}
