package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rafaelq80/livraria-react-sub000/config"
	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/backend"
	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/devauth"
	redisadapter "github.com/rafaelq80/livraria-react-sub000/internal/adapters/redis"
	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/sqlite"
	"github.com/rafaelq80/livraria-react-sub000/internal/observability/metrics"
	"github.com/rafaelq80/livraria-react-sub000/internal/ports"
	"github.com/rafaelq80/livraria-react-sub000/internal/service"
)

// CloseFunc releases a resource acquired during wiring.
type CloseFunc func() error

// BuildSnapshotStore opens the configured snapshot storage.
// The returned CloseFunc releases the underlying connection.
func BuildSnapshotStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (ports.SnapshotStore, CloseFunc, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is required")
	}
	storage := cfg.Storage

	switch storage.Driver {
	case config.StorageRedis:
		client, err := ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		store := redisadapter.NewSnapshotStoreWithOptions(client, redisadapter.SnapshotStoreOptions{
			Prefix:         storage.RedisPrefix,
			SnapshotKey:    storage.SnapshotKey,
			LegacyTokenKey: storage.LegacyTokenKey,
			TTL:            storage.TTL,
		})
		return store, client.Close, nil

	case config.StorageSQLite, "":
		store, err := sqlite.Open(storage.SQLitePath, sqlite.Options{
			SnapshotKey:    storage.SnapshotKey,
			LegacyTokenKey: storage.LegacyTokenKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite snapshot store: %w", err)
		}
		if logger != nil {
			logger.InfoContext(ctx, "session storage opened", "driver", "sqlite", "path", storage.SQLitePath)
		}
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", storage.Driver)
	}
}

// BuildAuthClient selects the authentication endpoint for the configured auth mode.
//
//nolint:ireturn // the concrete client depends on AUTH_MODE.
func BuildAuthClient(cfg *config.AppConfig, logger *slog.Logger) (ports.AuthClient, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		dev := cfg.Auth.DevAuth
		client, err := devauth.NewClient(devauth.Config{
			Nome:    dev.Nome,
			Usuario: dev.Usuario,
			Foto:    dev.Foto,
			Roles:   dev.Roles,
			Delay:   dev.Delay,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev auth client: %w", err)
		}
		if logger != nil {
			logger.Warn("dev auth enabled; do not use in production", "usuario", dev.Usuario, "roles", dev.Roles)
		}
		return client, nil

	case config.AuthModeBackend, "":
		client, err := backend.NewClient(backend.Config{
			BaseURL:   cfg.Backend.URL,
			LoginPath: cfg.Backend.LoginPath,
			Timeout:   cfg.Backend.Timeout,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build backend client: %w", err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

// SessionDeps groups dependencies for BuildSession.
type SessionDeps struct {
	Config   *config.AppConfig
	Notifier ports.Notifier          // optional
	Metrics  metrics.SessionRecorder // optional
	Logger   *slog.Logger
}

// BuildSession wires the auth client and snapshot storage into a SessionService.
// Bootstrap is not started; callers run it once they are ready to serve.
func BuildSession(ctx context.Context, deps SessionDeps) (*service.SessionService, CloseFunc, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := BuildAuthClient(deps.Config, logger)
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := BuildSnapshotStore(ctx, deps.Config, logger)
	if err != nil {
		return nil, nil, err
	}

	svc, err := service.NewSessionService(service.SessionServiceOptions{
		Client:    client,
		Snapshots: store,
		Notifier:  deps.Notifier,
		Metrics:   deps.Metrics,
		Logger:    logger,
	})
	if err != nil {
		if cerr := closeStore(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close snapshot store: %w", cerr))
		}
		return nil, nil, err
	}
	return svc, closeStore, nil
}

// StartSessionBootstrap rehydrates the session in the background.
// A storage failure is logged and the session stays anonymous; Ready closes either way.
func StartSessionBootstrap(ctx context.Context, svc *service.SessionService, logger *slog.Logger) <-chan struct{} {
	go func() {
		if err := svc.Bootstrap(ctx); err != nil && logger != nil {
			logger.ErrorContext(ctx, "session bootstrap failed; starting anonymous", "error", err)
		}
	}()
	return svc.Ready()
}
