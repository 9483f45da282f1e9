package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/internal/infrastructure/monitor"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, base Base) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(base),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	if status.LastCheck.IsZero() {
		stdCtx, cancel := h.requestContext(ctx)
		status = h.monitor.Refresh(stdCtx)
		cancel()
	}

	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, status)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", status))
}
