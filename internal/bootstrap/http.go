package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rafaelq80/livraria-react-sub000/config"
	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/backend"
	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/notice"
	httpx "github.com/rafaelq80/livraria-react-sub000/internal/http"
	"github.com/rafaelq80/livraria-react-sub000/internal/observability/metrics"
	"github.com/rafaelq80/livraria-react-sub000/internal/service"
)

// HTTPServerConfig contains configuration for the HTTP handler.
type HTTPServerConfig struct {
	Config     *config.AppConfig
	Session    *service.SessionService
	Notices    *notice.Queue
	TemplateFS fs.FS
	// Registry serves /metrics when metrics are enabled (optional).
	Registry *prometheus.Registry
	Metrics  metrics.SessionRecorder
	Logger   *slog.Logger
}

// BuildHTTPHandler assembles the router, guard, proxy and middleware.
func BuildHTTPHandler(cfg *HTTPServerConfig) (http.Handler, error) {
	if cfg == nil || cfg.Config == nil || cfg.Session == nil {
		return nil, errors.New("http server config requires Config and Session")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	renderer, err := httpx.NewTemplateRenderer(httpx.TemplateRendererConfig{
		TemplateFS: cfg.TemplateFS,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	services := httpx.RouterServices{
		Session:       cfg.Session,
		Renderer:      renderer,
		Notices:       cfg.Notices,
		Sections:      httpx.DefaultSections(appCfg.Auth.CatalogRoles, appCfg.Auth.AdminRoles),
		Metrics:       cfg.Metrics,
		CSRF:          httpx.CSRFConfig{CookieDomain: appCfg.HTTP.CookieDomain},
		BootstrapWait: time.Duration(appCfg.HTTP.BootstrapWaitSeconds) * time.Second,
		Logger:        logger,
	}

	if appCfg.Backend.ProxyEnabled {
		proxy, perr := backend.NewAPIProxy(backend.ProxyConfig{
			BaseURL:     appCfg.Backend.URL,
			StripPrefix: httpx.PathAPIPrefix,
			Source:      cfg.Session,
			Logger:      logger,
		})
		if perr != nil {
			return nil, fmt.Errorf("build api proxy: %w", perr)
		}
		services.APIProxy = proxy
	}

	if appCfg.Observability.Metrics.Enabled && cfg.Registry != nil {
		services.MetricsHandler = promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})
	}

	return httpx.NewRouter(services), nil
}

// NewHTTPServer wraps handler in an http.Server with the service timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}
