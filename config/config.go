// Package config defines the environment-driven configuration of the
// livraria admin front end and its operator CLI.
package config

import (
	"os"
	"strings"
)

// AppConfig composes domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual files for details:
//   - auth.go: authentication mode, dev identity and guard roles
//   - backend.go: catalog backend endpoint
//   - storage.go: session snapshot storage and Redis
//   - http.go: HTTP server
//   - observability.go: logging and metrics
type AppConfig struct {
	// IsDev controls development mode behavior (templates from disk, text logs).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth          AuthConfig
	Backend       BackendConfig
	Storage       StorageConfig
	Redis         RedisConfig `envPrefix:"REDIS_"`
	HTTP          HTTPConfig
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.Backend.Sanitize()
	c.Storage.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks NODE_ENV as a fallback for DEV.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
