package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	"github.com/rafaelq80/livraria-react-sub000/internal/observability/metrics"
	"github.com/rafaelq80/livraria-react-sub000/internal/ports"
	"github.com/rafaelq80/livraria-react-sub000/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush lets the API proxy stream through the logging wrapper.
func (w *respWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// GuardDeps groups what the access guard reads and reports to.
type GuardDeps struct {
	Session  SessionManager
	Notifier ports.Notifier          // optional; receives the login-required notice
	Metrics  metrics.SessionRecorder // optional
	Logger   *slog.Logger            // optional
	// BootstrapWait bounds how long a request waits for session bootstrap; zero waits for the request context.
	BootstrapWait time.Duration
}

// RequireRoles returns the access guard for a protected route.
//
// The guard waits for session bootstrap, then:
//   - no session: browsers are redirected to /login (with a one-time
//     login-required notice unless the session was just logged out);
//     API callers get 401.
//   - session without any of roles (exact name match): browsers are
//     redirected to /forbidden; API callers get 403.
//   - otherwise the session state is stored in the request context.
//
// With no roles, any authenticated session passes.
func RequireRoles(deps GuardDeps, roles ...string) func(http.Handler) http.Handler {
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.Noop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	required := append([]string(nil), roles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Flags read before bootstrap finishes would be the anonymous defaults.
			waitCtx := r.Context()
			if deps.BootstrapWait > 0 {
				var cancel context.CancelFunc
				waitCtx, cancel = context.WithTimeout(waitCtx, deps.BootstrapWait)
				defer cancel()
			}
			if err := deps.Session.WaitReady(waitCtx); err != nil {
				logger.WarnContext(r.Context(), "session not ready", "path", r.URL.Path, "error", err)
				WriteError(w, ErrorParams{
					Code:    http.StatusServiceUnavailable,
					ErrCode: "session_not_ready",
					Err:     errors.New("session is still loading"),
				})
				return
			}

			state := deps.Session.State()
			if !state.IsAuthenticated {
				rec.GuardDecision(metrics.DecisionLogin)
				denyUnauthenticated(w, r, deps)
				return
			}

			if len(required) > 0 && !domainauth.HasAnyRole(state.Identity, required...) {
				rec.GuardDecision(metrics.DecisionForbidden)
				logger.InfoContext(r.Context(), "access denied",
					"path", r.URL.Path,
					"usuario", state.Identity.Usuario,
					"roles", state.Identity.Roles.Names(),
					"required", required)
				denyForbidden(w, r)
				return
			}

			rec.GuardDecision(metrics.DecisionAllow)
			next.ServeHTTP(w, r.WithContext(SetStateInContext(r.Context(), state)))
		})
	}
}

func denyUnauthenticated(w http.ResponseWriter, r *http.Request, deps GuardDeps) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}
	// Checked on every browser redirect so the flag never outlives the
	// redirect that immediately follows a logout.
	if !deps.Session.ConsumeJustLoggedOut() && deps.Notifier != nil {
		deps.Notifier.Notify(r.Context(), ports.Notice{Level: ports.NoticeWarning, Message: service.NoticeLoginRequired})
	}
	redirectToLogin(w, r)
}

func denyForbidden(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "insufficient_permissions",
			Err:     errors.New("insufficient permissions"),
		})
		return
	}
	if IsHTMX(r) {
		SetHXRedirect(w, PathForbidden)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, PathForbidden, http.StatusSeeOther)
}

// browserRequestKey is an unexported context key type for browser request detection.
type browserRequestKey struct{}

// BrowserDetection returns a middleware that detects browser requests vs API requests.
// It sets a context value that can be used by downstream handlers to determine
// whether to return HTML or JSON responses.
func BrowserDetection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isBrowser := isBrowserRequest(r)
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsBrowserRequest returns true if the current request is from a browser.
func IsBrowserRequest(r *http.Request) bool {
	if val := r.Context().Value(browserRequestKey{}); val != nil {
		if isBrowser, ok := val.(bool); ok {
			return isBrowser
		}
	}
	return isBrowserRequest(r)
}

// isBrowserRequest treats /api/ and /auth/status as API routes, HTMX as browser,
// and otherwise follows the Accept header (missing Accept counts as browser).
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == PathAuthStatus {
		return false
	}
	if IsHTMX(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html")
}

// redirectToLogin redirects browser requests to the login page with the current URL as redirect_uri.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	loginURL := loginURLFor(redirectPathForRequest(r))

	if IsHTMX(r) {
		SetHXRedirect(w, loginURL)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

func redirectPathForRequest(r *http.Request) string {
	if IsHTMX(r) {
		if current := safeRedirectFromURL(r.Header.Get("Hx-Current-Url")); current != "" {
			return current
		}
	}
	return safeRedirectPath(r.URL.RequestURI())
}

func safeRedirectFromURL(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	// Reject scheme-relative or host-only references.
	if u.Host != "" && !u.IsAbs() {
		return ""
	}

	// For absolute URLs, use just the path/query portion to keep redirects within the app.
	if u.IsAbs() {
		return safeRedirectPath(u.RequestURI())
	}

	return safeRedirectPath(raw)
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	return candidate
}
