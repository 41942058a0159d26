package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	livraria "github.com/rafaelq80/livraria-react-sub000"
	"github.com/rafaelq80/livraria-react-sub000/config"
	"github.com/rafaelq80/livraria-react-sub000/internal/bootstrap"
	httpx "github.com/rafaelq80/livraria-react-sub000/internal/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger = bootstrap.InitLoggerWithLevel(os.Stdout, cfg.Observability.SlogLevel())

	logStartupInfo(ctx, logger, &cfg)

	templates, err := templateFS(cfg.IsDev)
	if err != nil {
		return err
	}

	return bootstrap.Run(ctx, bootstrap.RunConfig{
		Config:     &cfg,
		TemplateFS: templates,
		Logger:     logger,
	})
}

// templateFS serves templates from disk in dev mode so edits show without a rebuild.
//
//nolint:ireturn // embedded and on-disk template sources share fs.FS.
func templateFS(isDev bool) (fs.FS, error) {
	if isDev {
		return os.DirFS(httpx.TemplatePathFromRoot), nil
	}
	sub, err := fs.Sub(livraria.TemplateFS, httpx.TemplatePathFromRoot)
	if err != nil {
		return nil, fmt.Errorf("embedded templates: %w", err)
	}
	return sub, nil
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting livraria admin",
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"backend_url", cfg.Backend.URL,
		"storage", cfg.Storage.Driver,
		"dev", cfg.IsDev)
}
