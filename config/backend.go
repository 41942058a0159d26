package config

import (
	"strings"
	"time"
)

// BackendConfig locates the catalog API.
type BackendConfig struct {
	// URL is the API base, e.g. "http://localhost:8000".
	URL string `env:"BACKEND_URL" envDefault:"http://localhost:8000"`
	// LoginPath is appended to URL for authentication.
	LoginPath string `env:"BACKEND_LOGIN_PATH" envDefault:"/usuarios/logar"`
	// Timeout bounds each backend call, including login.
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	// ProxyEnabled mounts /api/* as an authenticated proxy to URL.
	ProxyEnabled bool `env:"BACKEND_PROXY_ENABLED" envDefault:"true"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.URL = strings.TrimRight(strings.TrimSpace(b.URL), "/")
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
	if b.LoginPath == "" {
		b.LoginPath = "/usuarios/logar"
	}
}
