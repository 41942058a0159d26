package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rafaelq80/livraria-react-sub000/config"
	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/backend"
	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/devauth"
	redisadapter "github.com/rafaelq80/livraria-react-sub000/internal/adapters/redis"
	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/sqlite"
	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func mockConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := &config.AppConfig{
		Auth: config.AuthConfig{
			Mode: config.AuthModeMock,
			DevAuth: config.DevAuthConfig{
				Usuario: "admin@livraria.com",
				Nome:    "Administrador",
				Roles:   []string{"admin"},
			},
			CatalogRoles: []string{"admin", "user"},
			AdminRoles:   []string{"admin"},
		},
		Backend: config.BackendConfig{URL: "http://localhost:8000"},
		Storage: config.StorageConfig{
			Driver:     config.StorageSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "session.db"),
		},
	}
	cfg.Sanitize()
	return cfg
}

func TestBuildAuthClient(t *testing.T) {
	cfg := mockConfig(t)

	client, err := BuildAuthClient(cfg, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &devauth.Client{}, client)

	cfg.Auth.Mode = config.AuthModeBackend
	client, err = BuildAuthClient(cfg, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &backend.Client{}, client)

	cfg.Backend.URL = "ftp://nope"
	_, err = BuildAuthClient(cfg, discardLogger())
	assert.Error(t, err)

	cfg.Auth.Mode = config.AuthModeMock
	cfg.Auth.DevAuth.Usuario = ""
	_, err = BuildAuthClient(cfg, discardLogger())
	assert.Error(t, err)

	_, err = BuildAuthClient(nil, discardLogger())
	assert.Error(t, err)
}

func TestBuildSnapshotStore_SQLite(t *testing.T) {
	cfg := mockConfig(t)

	store, closeFn, err := BuildSnapshotStore(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })
	assert.IsType(t, &sqlite.SnapshotStore{}, store)
}

func TestBuildSnapshotStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := mockConfig(t)
	cfg.Storage.Driver = config.StorageRedis
	cfg.Storage.RedisPrefix = "livraria:"
	cfg.Redis.URI = mr.Addr()

	store, closeFn, err := BuildSnapshotStore(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })
	assert.IsType(t, &redisadapter.SnapshotStore{}, store)

	require.NoError(t, store.Save(context.Background(), domainauth.Snapshot{IsAuthenticated: true}))
	assert.True(t, mr.Exists("livraria:usuario-storage"))
}

func TestBuildSnapshotStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := mockConfig(t)
	cfg.Storage.Driver = config.StorageRedis
	cfg.Redis.URI = addr

	_, _, err := BuildSnapshotStore(context.Background(), cfg, discardLogger())
	assert.Error(t, err)
}

func TestBuildSession_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	cfg := mockConfig(t)

	first, closeFirst, err := BuildSession(ctx, SessionDeps{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	require.NoError(t, first.Bootstrap(ctx))
	require.NoError(t, first.Login(ctx, domainauth.Credentials{Usuario: "admin@livraria.com", Senha: "x"}))
	require.True(t, first.State().IsAdmin)
	require.NoError(t, closeFirst())

	second, closeSecond, err := BuildSession(ctx, SessionDeps{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeSecond() })

	ready := StartSessionBootstrap(ctx, second, discardLogger())
	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("bootstrap did not finish")
	}

	state := second.State()
	assert.True(t, state.IsAuthenticated)
	assert.True(t, state.IsAdmin)
	assert.Equal(t, "Administrador", state.Identity.Nome)
}
