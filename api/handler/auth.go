package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/pkg/httpcontext"
	authUC "github.com/fastygo/tracker/usecase/auth"
	"github.com/fastygo/tracker/usecase/form"
)

// SessionCookie configures the session cookie written at login.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	baseHandler
	uc     *authUC.UseCase
	cookie SessionCookie
}

func NewAuthHandler(uc *authUC.UseCase, cookie SessionCookie, base Base) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "sessionid"
	}
	if cookie.TTL <= 0 {
		cookie.TTL = 14 * 24 * time.Hour
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(base),
		uc:          uc,
		cookie:      cookie,
	}
}

// @Summary Landing page
// @Tags pages
// @Router / [get]
func (h *AuthHandler) Home(ctx *fasthttp.RequestCtx) {
	if actor(ctx) != nil {
		ctx.Response.Header.Set("Location", "/projects")
		ctx.SetStatusCode(fasthttp.StatusFound)
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondView(ctx, stdCtx, map[string]interface{}{
		"links": map[string]string{
			"login":    "/login",
			"register": "/register",
		},
	})
}

// @Summary Registration form
// @Tags auth
// @Router /register [get]
func (h *AuthHandler) RegisterForm(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondForm(ctx, stdCtx, form.NewRegisterForm().View(), nil)
}

// @Summary Register an account
// @Tags auth
// @Router /register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	f := form.NewRegisterForm()
	f.Bind(values(ctx))

	user, err := h.uc.Register(stdCtx, f)
	if err != nil {
		h.formFailure(ctx, stdCtx, err, f, nil)
		return
	}
	h.ensureSession(ctx, stdCtx)
	h.redirect(ctx, stdCtx, "/login", domain.MsgAccountCreated, user.Username)
}

// @Summary Login form
// @Tags auth
// @Router /login [get]
func (h *AuthHandler) LoginForm(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondForm(ctx, stdCtx, loginView("", string(ctx.QueryArgs().Peek("next")), nil), nil)
}

// @Summary Log in
// @Tags auth
// @Router /login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	get := values(ctx)
	username := strings.TrimSpace(get("username"))
	next := get("next")
	if next == "" {
		next = string(ctx.QueryArgs().Peek("next"))
	}

	session, _, err := h.uc.Login(stdCtx, username, get("password"))
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			errs := domain.FieldErrors{}
			errs.Add(domain.NonField, domain.MsgInvalidCredentials)
			h.respondForm(ctx, stdCtx, loginView(username, next, errs), nil)
			return
		}
		h.respondError(ctx, stdCtx, err)
		return
	}

	if previous := httpcontext.Session(ctx); previous != nil && previous.UserID == "" {
		if err := h.uc.RevokeSession(stdCtx, previous.ID); err != nil {
			h.logger.Warn("failed to drop anonymous session", zap.Error(err))
		}
	}
	h.setSessionCookie(ctx, session.ID, session.ExpiresAt)
	ctx.Response.Header.Set("Location", safeNext(next))
	ctx.SetStatusCode(fasthttp.StatusFound)
}

// @Summary Log out
// @Tags auth
// @Router /logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if sessionID := string(ctx.Request.Header.Cookie(h.cookie.Name)); sessionID != "" {
		if err := h.uc.RevokeSession(stdCtx, sessionID); err != nil {
			h.respondError(ctx, stdCtx, err)
			return
		}
	}
	httpcontext.SetSession(ctx, nil)
	if !h.ensureSession(ctx, stdCtx) {
		ctx.Response.Header.DelClientCookie(h.cookie.Name)
	}
	h.redirect(ctx, stdCtx, "/", domain.MsgLoggedOut)
}

// @Summary Issue a bearer token
// @Tags auth
// @Router /api/token [post]
func (h *AuthHandler) Token(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	get := values(ctx)
	user, err := h.uc.Authenticate(stdCtx, strings.TrimSpace(get("username")), get("password"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	token, expires, err := h.uc.IssueToken(user)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expires.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) setSessionCookie(ctx *fasthttp.RequestCtx, sessionID string, expires time.Time) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(h.cookie.Name)
	cookie.SetValue(sessionID)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(h.cookie.Secure)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetExpire(expires)
	ctx.Response.Header.SetCookie(cookie)
}

// ensureSession opens an anonymous session when the request has none so
// the next flash survives the redirect. It reports whether a session
// cookie is set afterwards.
func (h *AuthHandler) ensureSession(ctx *fasthttp.RequestCtx, std context.Context) bool {
	if httpcontext.Session(ctx) != nil {
		return true
	}
	session, err := h.uc.StartSession(std)
	if err != nil {
		h.logger.Warn("failed to open anonymous session", zap.Error(err))
		return false
	}
	httpcontext.SetSession(ctx, session)
	h.setSessionCookie(ctx, session.ID, session.ExpiresAt)
	return true
}

func loginView(username, next string, errs domain.FieldErrors) form.View {
	return form.View{
		Fields: []form.Field{
			{Name: "username", Value: username},
			{Name: "password"},
			{Name: "next", Value: next},
		},
		NonFieldErrors: errs[domain.NonField],
		Valid:          errs.Empty(),
	}
}

// safeNext only follows local absolute paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/projects"
	}
	return next
}
