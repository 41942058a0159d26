package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rafaelq80/livraria-react-sub000/internal/observability/metrics"
)

// DefaultSections returns the catalog sections with the given role lists.
func DefaultSections(catalogRoles, adminRoles []string) []Section {
	return []Section{
		{Slug: "autores", Title: "Autores", Roles: catalogRoles},
		{Slug: "categorias", Title: "Categorias", Roles: catalogRoles},
		{Slug: "editoras", Title: "Editoras", Roles: catalogRoles},
		{Slug: "produtos", Title: "Produtos", Roles: catalogRoles},
		{Slug: "usuarios", Title: "Usuários", Roles: adminRoles},
		{Slug: "roles", Title: "Perfis", Roles: adminRoles},
	}
}

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Session  SessionManager
	Renderer *TemplateRenderer
	Notices  NoticeQueue
	Sections []Section
	// APIProxy forwards /api/* to the catalog backend (optional).
	APIProxy http.Handler
	// MetricsHandler serves /metrics (optional).
	MetricsHandler http.Handler
	Metrics        metrics.SessionRecorder
	CSRF           CSRFConfig
	BootstrapWait  time.Duration
	Logger         *slog.Logger
}

// NewRouter creates and configures the HTTP router with its middleware chain.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Session:  services.Session,
		Renderer: services.Renderer,
		Notices:  services.Notices,
		Logger:   logger,
	}
	registerAuthRoutes(mux, authHandlers)

	guard := GuardDeps{
		Session:       services.Session,
		Notifier:      services.Notices,
		Metrics:       services.Metrics,
		Logger:        logger,
		BootstrapWait: services.BootstrapWait,
	}
	ui := &UIHandlers{Renderer: services.Renderer, Notices: services.Notices, Sections: services.Sections}
	mux.Handle("GET /{$}", RequireRoles(guard)(http.HandlerFunc(ui.Home)))
	for _, s := range services.Sections {
		mux.Handle("GET "+s.Path(), RequireRoles(guard, s.Roles...)(ui.Section(s)))
	}

	if services.APIProxy != nil {
		mux.Handle(PathAPIPrefix+"/", RequireRoles(guard)(services.APIProxy))
	}
	if services.MetricsHandler != nil {
		mux.Handle("GET /metrics", services.MetricsHandler)
	}
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Session.Ready()))

	var h http.Handler = mux
	h = CSRFProtection(services.CSRF)(h)
	h = BrowserDetection()(h)
	h = Logging(logger)(h)
	h = Recover(logger)(h)
	return h
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET "+PathLogin, h.LoginPage)
	mux.HandleFunc("POST "+PathLogin, h.SubmitLogin)
	mux.HandleFunc("POST "+PathLogout, h.Logout)
	mux.HandleFunc("GET "+PathForbidden, h.Forbidden)
	mux.HandleFunc("GET "+PathAuthStatus, h.Status)
}
