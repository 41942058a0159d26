package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.Mode != AuthModeBackend {
		t.Fatalf("expected backend auth mode, got %q", cfg.Auth.Mode)
	}
	if !reflect.DeepEqual(cfg.Auth.CatalogRoles, []string{"admin", "user"}) {
		t.Fatalf("unexpected catalog roles: %#v", cfg.Auth.CatalogRoles)
	}
	if !reflect.DeepEqual(cfg.Auth.AdminRoles, []string{"admin"}) {
		t.Fatalf("unexpected admin roles: %#v", cfg.Auth.AdminRoles)
	}
	if cfg.Backend.URL != "http://localhost:8000" || cfg.Backend.Timeout != 10*time.Second {
		t.Fatalf("unexpected backend config: %#v", cfg.Backend)
	}
	if cfg.Storage.Driver != StorageSQLite {
		t.Fatalf("expected sqlite storage, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.SnapshotKey != "usuario-storage" || cfg.Storage.LegacyTokenKey != "token" {
		t.Fatalf("unexpected storage keys: %#v", cfg.Storage)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTP.Addr)
	}
	if cfg.IsDev {
		t.Fatalf("expected production mode by default")
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "MOCK")
	t.Setenv("DEV_AUTH_USUARIO", " dev@livraria.com ")
	t.Setenv("DEV_AUTH_NOME", "Dev")
	t.Setenv("DEV_AUTH_ROLES", "admin; user ;")
	t.Setenv("GUARD_CATALOG_ROLES", "admin;editor")
	t.Setenv("GUARD_ADMIN_ROLES", "root")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	expected := AuthConfig{
		Mode: AuthModeMock,
		DevAuth: DevAuthConfig{
			Usuario: "dev@livraria.com",
			Nome:    "Dev",
			Roles:   []string{"admin", "user"},
		},
		CatalogRoles: []string{"admin", "editor"},
		AdminRoles:   []string{"root"},
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAppConfig_InvalidEnums(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "auth mode", key: "AUTH_MODE", val: "oauth"},
		{name: "storage driver", key: "SESSION_STORAGE", val: "memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			var cfg AppConfig
			if err := env.Parse(&cfg); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestAppConfig_ParseStorageAndRedis(t *testing.T) {
	t.Setenv("SESSION_STORAGE", "redis")
	t.Setenv("SESSION_TTL", "12h")
	t.Setenv("SESSION_REDIS_PREFIX", "adm:")
	t.Setenv("REDIS_URI", "cache:6379")
	t.Setenv("REDIS_USE_CLUSTER", "true")
	t.Setenv("REDIS_CLUSTER_NODES", "a:7000,b:7001")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Storage.Driver != StorageRedis || cfg.Storage.TTL != 12*time.Hour || cfg.Storage.RedisPrefix != "adm:" {
		t.Fatalf("unexpected storage config: %#v", cfg.Storage)
	}
	if cfg.Redis.URI != "cache:6379" || !cfg.Redis.UseCluster {
		t.Fatalf("unexpected redis config: %#v", cfg.Redis)
	}
	if !reflect.DeepEqual(cfg.Redis.ClusterNodes, []string{"a:7000", "b:7001"}) {
		t.Fatalf("unexpected cluster nodes: %#v", cfg.Redis.ClusterNodes)
	}
}

func TestStorageConfig_Sanitize(t *testing.T) {
	cfg := StorageConfig{SnapshotKey: " ", LegacyTokenKey: "", TTL: -time.Second}
	cfg.Sanitize()

	if cfg.Driver != StorageSQLite {
		t.Fatalf("expected sqlite default, got %q", cfg.Driver)
	}
	if cfg.SnapshotKey != "usuario-storage" || cfg.LegacyTokenKey != "token" {
		t.Fatalf("expected default keys, got %#v", cfg)
	}
	if cfg.TTL != 0 {
		t.Fatalf("expected negative TTL to be cleared, got %v", cfg.TTL)
	}
}

func TestBackendConfig_Sanitize(t *testing.T) {
	cfg := BackendConfig{URL: " http://api:8000/ ", Timeout: 0}
	cfg.Sanitize()

	if cfg.URL != "http://api:8000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.URL)
	}
	if cfg.Timeout != 10*time.Second || cfg.LoginPath != "/usuarios/logar" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestObservabilityConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityConfig{LogLevel: " DEBUG ", Metrics: ObservabilityMetricsConfig{Path: "metrics"}}
	cfg.Sanitize()

	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.SlogLevel())
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Fatalf("expected leading slash, got %q", cfg.Metrics.Path)
	}

	cfg = ObservabilityConfig{LogLevel: "verbose"}
	cfg.Sanitize()
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("expected info fallback, got %v", cfg.SlogLevel())
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Fatalf("expected default path, got %q", cfg.Metrics.Path)
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	cfg := HTTPConfig{}
	cfg.Sanitize()
	if cfg.Addr != ":8080" || cfg.BootstrapWaitSeconds != 1 {
		t.Fatalf("unexpected http config: %#v", cfg)
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Fatalf("expected dev mode from NODE_ENV")
	}
}
