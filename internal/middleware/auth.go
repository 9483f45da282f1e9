package middleware

import (
	"context"
	"net/url"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/pkg/httpcontext"
)

// Identity resolves sessions and bearer tokens to users.
type Identity interface {
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	ParseToken(tokenString string) (string, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

// Authenticate attaches the acting user (and session) to the request when
// a valid session cookie or bearer token is present. It never rejects;
// RequireLogin and RequireStaff do.
func Authenticate(identity Identity, adapter *httpcontext.Adapter, cookieName string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			reqCtx, cancel := adapter.Attach(ctx)
			defer cancel()

			userID := ""
			if sessionID := string(ctx.Request.Header.Cookie(cookieName)); sessionID != "" {
				session, err := identity.GetSession(reqCtx, sessionID)
				switch {
				case err == nil:
					httpcontext.SetSession(ctx, session)
					userID = session.UserID
				case !domain.IsDomainError(err, domain.ErrCodeNotFound):
					logger.Warn("session lookup failed", zap.Error(err))
				}
			}
			if userID == "" {
				if tokenString := extractToken(ctx); tokenString != "" {
					id, err := identity.ParseToken(tokenString)
					if err != nil {
						logger.Warn("invalid jwt token", zap.Error(err))
					}
					userID = id
				}
			}

			if userID != "" {
				user, err := identity.CurrentUser(reqCtx, userID)
				if err == nil {
					httpcontext.SetActor(ctx, user)
				} else {
					logger.Debug("identity rejected", zap.String("user_id", userID), zap.Error(err))
				}
			}

			next(ctx)
		}
	}
}

// RequireLogin redirects anonymous requests to the login page, keeping
// the requested path in next.
func RequireLogin(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if httpcontext.Actor(ctx) == nil {
			ctx.Response.Header.Set("Location", "/login?next="+url.QueryEscape(string(ctx.RequestURI())))
			ctx.SetStatusCode(fasthttp.StatusFound)
			return
		}
		next(ctx)
	}
}

// RequireStaff applies RequireLogin and answers 403 to non-staff users.
func RequireStaff(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return RequireLogin(func(ctx *fasthttp.RequestCtx) {
		actor := httpcontext.Actor(ctx)
		if !actor.IsStaff {
			ctx.SetStatusCode(fasthttp.StatusForbidden)
			ctx.Response.Header.SetContentType("application/json")
			ctx.SetBodyString(`{"status":"error","code":"FORBIDDEN","error":"permission denied"}`)
			return
		}
		next(ctx)
	})
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
