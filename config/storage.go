package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageDriver selects where the session snapshot is persisted.
type StorageDriver string

const (
	// StorageSQLite keeps the snapshot in a local SQLite file.
	StorageSQLite StorageDriver = "sqlite"
	// StorageRedis keeps the snapshot in Redis.
	StorageRedis StorageDriver = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageDriver.
func (d *StorageDriver) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "sqlite", "redis":
		*d = StorageDriver(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageDriver: %q (valid options: sqlite, redis)", v)
	}
}

// StorageConfig controls session snapshot persistence.
type StorageConfig struct {
	Driver StorageDriver `env:"SESSION_STORAGE" envDefault:"sqlite"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `env:"SESSION_SQLITE_PATH" envDefault:"livraria-session.db"`
	// SnapshotKey names the persisted snapshot entry.
	SnapshotKey string `env:"SESSION_SNAPSHOT_KEY" envDefault:"usuario-storage"`
	// LegacyTokenKey names the bare-token entry older builds wrote; it is only ever deleted.
	LegacyTokenKey string `env:"SESSION_LEGACY_TOKEN_KEY" envDefault:"token"`
	// RedisPrefix is prepended to both keys by the redis driver.
	RedisPrefix string `env:"SESSION_REDIS_PREFIX" envDefault:"livraria:"`
	// TTL expires the redis snapshot when no login refreshes it; zero disables.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"0s"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	if s.Driver == "" {
		s.Driver = StorageSQLite
	}
	if s.SnapshotKey = strings.TrimSpace(s.SnapshotKey); s.SnapshotKey == "" {
		s.SnapshotKey = "usuario-storage"
	}
	if s.LegacyTokenKey = strings.TrimSpace(s.LegacyTokenKey); s.LegacyTokenKey == "" {
		s.LegacyTokenKey = "token"
	}
	if s.TTL < 0 {
		s.TTL = 0
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
