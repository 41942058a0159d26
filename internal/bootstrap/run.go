package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rafaelq80/livraria-react-sub000/config"
	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/notice"
	"github.com/rafaelq80/livraria-react-sub000/internal/observability/metrics"
	"golang.org/x/sync/errgroup"
)

// RunConfig groups what Run needs to serve the admin front end.
type RunConfig struct {
	Config     *config.AppConfig
	TemplateFS fs.FS
	Logger     *slog.Logger
}

// Run wires every component, starts session bootstrap and serves HTTP until
// ctx is canceled or the server fails.
func Run(ctx context.Context, rc RunConfig) error {
	if rc.Config == nil {
		return errors.New("run config missing AppConfig")
	}
	logger := rc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var rec metrics.SessionRecorder = metrics.Noop{}
	if rc.Config.Observability.Metrics.Enabled {
		prom, err := metrics.NewPrometheus(registry)
		if err != nil {
			return fmt.Errorf("register session metrics: %w", err)
		}
		rec = prom
	}

	queue := notice.NewQueue(0)
	session, closeStore, err := BuildSession(ctx, SessionDeps{
		Config:   rc.Config,
		Notifier: notice.Logging{Logger: logger, Next: queue},
		Metrics:  rec,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Error("close snapshot store failed", "error", cerr)
		}
	}()

	handler, err := BuildHTTPHandler(&HTTPServerConfig{
		Config:     rc.Config,
		Session:    session,
		Notices:    queue,
		TemplateFS: rc.TemplateFS,
		Registry:   registry,
		Metrics:    rec,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	server := NewHTTPServer(rc.Config.HTTP.Addr, handler)

	group, gctx := errgroup.WithContext(ctx)
	StartSessionBootstrap(gctx, session, logger)

	group.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if serr := server.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", serr)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		return ShutdownHTTPServer(context.WithoutCancel(gctx), server, logger)
	})

	return group.Wait()
}
