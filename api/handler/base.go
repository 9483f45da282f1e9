package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/pkg/i18n"
	appLogger "github.com/fastygo/tracker/pkg/logger"
	"github.com/fastygo/tracker/usecase/form"
)

// Flasher stores one-shot notifications in the cookie session.
type Flasher interface {
	AddFlash(ctx context.Context, session *domain.Session, message string) error
	PopFlashes(ctx context.Context, session *domain.Session) ([]string, error)
}

// Base carries the collaborators shared by every handler.
type Base struct {
	Adapter    *httpcontext.Adapter
	Translator *i18n.Translator
	Flasher    Flasher
	Logger     *zap.Logger
}

type baseHandler struct {
	adapter    *httpcontext.Adapter
	translator *i18n.Translator
	flasher    Flasher
	logger     *zap.Logger
}

func newBaseHandler(base Base) baseHandler {
	if base.Logger == nil {
		base.Logger = zap.NewNop()
	}
	return baseHandler{
		adapter:    base.Adapter,
		translator: base.Translator,
		flasher:    base.Flasher,
		logger:     base.Logger,
	}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) translate(ctx *fasthttp.RequestCtx, key string, args ...any) string {
	if h.translator == nil {
		if len(args) == 0 {
			return key
		}
		return fmt.Sprintf("%s %v", key, args)
	}
	return h.translator.Translate(string(ctx.Request.Header.Peek("Accept-Language")), key, args...)
}

func (h baseHandler) localizer(ctx *fasthttp.RequestCtx) func(string) string {
	return func(key string) string { return h.translate(ctx, key) }
}

// meta pops pending flash messages; they are shown exactly once.
func (h baseHandler) meta(ctx *fasthttp.RequestCtx, std context.Context) transport.Meta {
	meta := transport.Meta{RequestID: appLogger.RequestID(std)}
	if h.flasher == nil {
		return meta
	}
	messages, err := h.flasher.PopFlashes(std, httpcontext.Session(ctx))
	if err != nil {
		appLogger.WithRequestID(std, h.logger).Warn("failed to read flash messages", zap.Error(err))
		return meta
	}
	meta.Messages = messages
	return meta
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

// respondView renders a page payload together with pending flashes.
func (h baseHandler) respondView(ctx *fasthttp.RequestCtx, std context.Context, data interface{}) {
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(data, h.meta(ctx, std)))
}

type formPayload struct {
	Form   form.View   `json:"form"`
	Object interface{} `json:"object,omitempty"`
}

// respondForm renders (or re-renders) a form with localized errors.
func (h baseHandler) respondForm(ctx *fasthttp.RequestCtx, std context.Context, view form.View, object interface{}) {
	view.Localize(h.localizer(ctx))
	h.respondView(ctx, std, formPayload{Form: view, Object: object})
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, std context.Context, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		appLogger.WithRequestID(std, h.logger).Error("request failed",
			zap.ByteString("path", ctx.Path()),
			zap.Error(err),
		)
		h.respondJSON(ctx, status, transport.NewError(code, "internal error", nil))
		return
	}

	if fields, ok := domain.AsFieldErrors(err); ok {
		localized := make(map[string][]string, len(fields))
		for field, keys := range fields {
			name := field
			if name == domain.NonField {
				name = "__all__"
			}
			for _, key := range keys {
				localized[name] = append(localized[name], h.translate(ctx, key))
			}
		}
		h.respondJSON(ctx, status, transport.NewError(code, transport.FormError{
			Message: domain.ErrValidationFailed.Message,
			Fields:  localized,
		}, nil))
		return
	}
	h.respondJSON(ctx, status, transport.NewError(code, err.Error(), nil))
}

// redirect answers 302 and queues a localized flash for the next page.
func (h baseHandler) redirect(ctx *fasthttp.RequestCtx, std context.Context, location, messageKey string, args ...any) {
	if messageKey != "" && h.flasher != nil {
		if err := h.flasher.AddFlash(std, httpcontext.Session(ctx), h.translate(ctx, messageKey, args...)); err != nil {
			appLogger.WithRequestID(std, h.logger).Warn("failed to store flash message", zap.Error(err))
		}
	}
	ctx.Response.Header.Set("Location", location)
	ctx.SetStatusCode(fasthttp.StatusFound)
}

func actor(ctx *fasthttp.RequestCtx) *domain.User {
	return httpcontext.Actor(ctx)
}

func pathID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}

// values reads a submission from a JSON object body or from
// url-encoded/multipart form fields.
func values(ctx *fasthttp.RequestCtx) form.Getter {
	if strings.HasPrefix(string(ctx.Request.Header.ContentType()), "application/json") {
		var raw map[string]interface{}
		if err := json.Unmarshal(ctx.PostBody(), &raw); err == nil {
			flat := make(map[string]string, len(raw))
			for key, value := range raw {
				switch v := value.(type) {
				case nil:
				case string:
					flat[key] = v
				default:
					flat[key] = fmt.Sprint(v)
				}
			}
			return form.Values(flat)
		}
		return form.Values(nil)
	}
	return func(key string) string {
		if v := ctx.PostArgs().Peek(key); v != nil {
			return string(v)
		}
		if mf, err := ctx.MultipartForm(); err == nil && mf != nil {
			if vals := mf.Value[key]; len(vals) > 0 {
				return vals[0]
			}
		}
		return ""
	}
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
