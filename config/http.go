package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for the CSRF cookie.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// BootstrapWaitSeconds bounds how long a request waits for session bootstrap.
	BootstrapWaitSeconds int `env:"HTTP_BOOTSTRAP_WAIT_SECONDS" envDefault:"10"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	if h.BootstrapWaitSeconds < 1 {
		h.BootstrapWaitSeconds = 1
	}
}
