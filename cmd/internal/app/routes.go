package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"articles/cmd/internal/auth"
	"articles/cmd/internal/auth/token"
	"articles/cmd/internal/httpx"
)

// Route declares one endpoint of the HTTP surface and whether it is reachable
// without a token. This table is the single source of truth the access guard
// consults; there is no per-handler annotation to reflect over.
type Route struct {
	Method  string
	Path    string
	Public  bool
	Handler http.HandlerFunc
}

// Routes returns the route table. The auth entry points are always public;
// everything under /users requires a valid bearer token.
func (a *App) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/api/v1/auth/register", Public: true, Handler: a.authH.Register},
		{Method: http.MethodPost, Path: "/api/v1/auth/login", Public: true, Handler: a.authH.Login},
		{Method: http.MethodGet, Path: "/api/v1/auth/login/google", Public: true, Handler: a.authH.GoogleLogin},
		{Method: http.MethodGet, Path: "/api/v1/auth/google/callback", Public: true, Handler: a.authH.GoogleCallback},
		{Method: http.MethodGet, Path: "/api/v1/users/me", Public: false, Handler: a.usersH.Me},
		{Method: http.MethodPatch, Path: "/api/v1/users", Public: false, Handler: a.usersH.Update},
	}
}

// RequireAuth is the access guard for protected routes. It runs once per
// request ahead of the handler: a missing, malformed, tampered, or expired
// token all short-circuit into the same 401 envelope; a valid token has its
// claims attached to the request context before the handler executes.
func RequireAuth(log *slog.Logger, tokens *token.Manager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.Fail(log, w, r, fmt.Errorf("%w: missing bearer token", auth.ErrUnauthenticated))
			return
		}

		claims, err := tokens.Validate(raw, time.Now().UTC())
		if err != nil {
			httpx.Fail(log, w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// registerRoutes mounts the table on mux: protected routes get the guard,
// every route gets metrics observation under its registered pattern.
func registerRoutes(mux *http.ServeMux, log *slog.Logger, tokens *token.Manager, metrics *Metrics, routes []Route) {
	for _, rt := range routes {
		var h http.Handler = rt.Handler
		if !rt.Public {
			h = RequireAuth(log, tokens, h)
		}
		if metrics != nil {
			h = metrics.Observe(rt.Path, h)
		}
		mux.Handle(rt.Method+" "+rt.Path, h)
	}
}
