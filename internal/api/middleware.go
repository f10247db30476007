package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/inventory"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	TraceIDHeader     = "X-Trace-ID"
	TraceParentHeader = "traceparent"
)

// traceID returns the trace id of a W3C traceparent header, then of
// X-Trace-ID, or a new one.
func traceID(r *http.Request) string {
	if tp := r.Header.Get(TraceParentHeader); tp != "" {
		// version-trace_id-parent_id-flags
		if parts := strings.Split(tp, "-"); len(parts) >= 2 && parts[1] != "" {
			return parts[1]
		}
	}
	if id := r.Header.Get(TraceIDHeader); id != "" {
		return id
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RequestLogger attaches a trace-scoped logger to the request context and
// logs every request when it completes.
func RequestLogger(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := traceID(r)

			logger := base.With().Str("trace_id", id).Logger()
			r = r.WithContext(logger.WithContext(r.Context()))
			w.Header().Set(TraceIDHeader, id)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			var event *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				event = logger.Error()
			case status >= http.StatusBadRequest:
				event = logger.Warn()
			default:
				event = logger.Info()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Str("client_ip", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("HTTP request")
		})
	}
}

// HTTPObserver receives one call per served request.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// Metrics reports each request with its matched route pattern.
func Metrics(obs HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			obs.ObserveHTTP(r.Method, route, status, time.Since(start))
		})
	}
}

// AccessToken binds the session token from the Authorization bearer header
// or, failing that, from cookie to the request context.
func AccessToken(cookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFrom(r, cookie); token != "" {
				r = r.WithContext(backend.WithAccessToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFrom(r *http.Request, cookie string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(cookie); err == nil {
		return c.Value
	}
	return ""
}

type scopeKey struct{}

type scope struct {
	workspace *inventory.Workspace
	owner     string
}

// WorkspaceResolver finds the workspace of the principal bound to ctx.
type WorkspaceResolver interface {
	WorkspaceFor(ctx context.Context) (*inventory.Workspace, string, error)
}

// RequireSession rejects requests without a live session with 401 and
// otherwise binds the caller's workspace to the context.
func RequireSession(resolver WorkspaceResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws, owner, err := resolver.WorkspaceFor(r.Context())
			if err != nil {
				writeError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), scopeKey{}, scope{workspace: ws, owner: owner})
			logger := zerolog.Ctx(ctx).With().Str("user_id", owner).Logger()
			next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
		})
	}
}

func scopeFrom(ctx context.Context) (scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(scope)
	return s, ok
}
