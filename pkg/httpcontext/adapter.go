package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/tracker/domain"
	appLogger "github.com/fastygo/tracker/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
)

// fasthttp user value keys set by the authentication middleware.
const (
	userValueActor   = "tracker.actor"
	userValueSession = "tracker.session"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	base := context.Background()

	stdCtx, cancel := context.WithTimeout(base, a.timeout)

	reqID := getRequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	if actor := Actor(ctx); actor != nil {
		stdCtx = appLogger.ContextWithUserID(stdCtx, actor.ID)
	}
	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

// getRequestID reuses the id of a previous Attach on the same request so
// middleware and handlers log the same value.
func getRequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if existing := string(ctx.Response.Header.Peek("X-Request-ID")); existing != "" {
		return existing
	}
	if header := string(ctx.Request.Header.Peek("X-Request-ID")); strings.TrimSpace(header) != "" {
		return header
	}
	return uuid.NewString()
}

// SetActor stores the authenticated user on the request.
func SetActor(ctx *fasthttp.RequestCtx, user *domain.User) {
	ctx.SetUserValue(userValueActor, user)
}

// Actor returns the authenticated user, or nil for anonymous requests.
func Actor(ctx *fasthttp.RequestCtx) *domain.User {
	if ctx == nil {
		return nil
	}
	user, _ := ctx.UserValue(userValueActor).(*domain.User)
	return user
}

// SetSession stores the cookie session on the request.
func SetSession(ctx *fasthttp.RequestCtx, session *domain.Session) {
	ctx.SetUserValue(userValueSession, session)
}

// Session returns the cookie session; bearer-token requests have none.
func Session(ctx *fasthttp.RequestCtx) *domain.Session {
	if ctx == nil {
		return nil
	}
	session, _ := ctx.UserValue(userValueSession).(*domain.Session)
	return session
}
