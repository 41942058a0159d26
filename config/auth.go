package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeBackend submits credentials to the catalog backend.
	AuthModeBackend AuthMode = "backend"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "backend", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: backend, mock)", v)
	}
}

// DevAuthConfig controls the mock identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Usuario string   `env:"USUARIO" envDefault:"admin@livraria.com"`
	Nome    string   `env:"NOME"    envDefault:"Administrador"`
	Foto    string   `env:"FOTO"`
	Roles   []string `env:"ROLES"   envDefault:"admin"              envSeparator:";"`
	// Delay simulates backend latency on every login.
	Delay time.Duration `env:"DELAY" envDefault:"0s"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which AuthClient is used.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"backend"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// CatalogRoles may open autores, categorias, editoras and produtos.
	CatalogRoles []string `env:"GUARD_CATALOG_ROLES" envDefault:"admin;user" envSeparator:";"`
	// AdminRoles may open usuarios and roles.
	AdminRoles []string `env:"GUARD_ADMIN_ROLES" envDefault:"admin" envSeparator:";"`
}

// Sanitize trims role names and drops blanks. Role matching is exact, so
// surrounding whitespace from env files would otherwise never match.
func (a *AuthConfig) Sanitize() {
	a.CatalogRoles = cleanList(a.CatalogRoles)
	a.AdminRoles = cleanList(a.AdminRoles)
	a.DevAuth.Roles = cleanList(a.DevAuth.Roles)
	a.DevAuth.Usuario = strings.TrimSpace(a.DevAuth.Usuario)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
