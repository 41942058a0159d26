// Package devauth provides a config-driven AuthClient for local development
// without a running catalog backend.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	apperrors "github.com/rafaelq80/livraria-react-sub000/internal/errors"
	"github.com/rafaelq80/livraria-react-sub000/internal/ports"
)

// Config controls the dev auth client behavior.
// Usuario is required; Roles may be empty.
type Config struct {
	ID      int
	Nome    string
	Usuario string
	Foto    string
	Roles   []string
	// Delay simulates backend latency (optional).
	Delay time.Duration
}

// Client implements ports.AuthClient for local development.
// It accepts the configured login name with any non-empty password and
// returns the configured identity with a fresh bearer token.
type Client struct {
	identity domainauth.Identity
	delay    time.Duration
}

var _ ports.AuthClient = (*Client)(nil)

// NewClient constructs a dev auth client from Config.
func NewClient(cfg Config) (*Client, error) {
	usuario := strings.TrimSpace(cfg.Usuario)
	if usuario == "" {
		return nil, errors.New("dev auth: Usuario is required")
	}
	nome := cfg.Nome
	if nome == "" {
		nome = usuario
	}
	id := cfg.ID
	if id == 0 {
		id = 1
	}

	roles := make(domainauth.Roles, 0, len(cfg.Roles))
	for i, name := range cfg.Roles {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		roles = append(roles, domainauth.Role{ID: i + 1, Nome: name, Descricao: name})
	}

	return &Client{
		identity: domainauth.Identity{
			ID:      id,
			Nome:    nome,
			Usuario: usuario,
			Foto:    cfg.Foto,
			Roles:   roles,
		},
		delay: cfg.Delay,
	}, nil
}

// Login returns the dev identity when creds match.
func (c *Client) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Identity, error) {
	if c.delay > 0 {
		t := time.NewTimer(c.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return domainauth.Identity{}, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeCanceled, "login request canceled")
		}
	}

	if !strings.EqualFold(strings.TrimSpace(creds.Usuario), c.identity.Usuario) || creds.Senha == "" {
		return domainauth.Identity{}, apperrors.InvalidCredentials(http.StatusUnauthorized)
	}

	token, err := randomString(32)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("generate token: %w", err)
	}

	id := c.identity
	id.Roles = append(domainauth.Roles{}, c.identity.Roles...)
	id.Token = "Bearer " + token
	return id, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	return s[:n], nil
}
