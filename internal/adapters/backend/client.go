// Package backend talks to the livraria catalog API over HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	apperrors "github.com/rafaelq80/livraria-react-sub000/internal/errors"
	"github.com/rafaelq80/livraria-react-sub000/internal/ports"
)

// DefaultLoginPath is the authentication endpoint of the catalog API.
const DefaultLoginPath = "/usuarios/logar"

// maxResponseBytes bounds how much of a login response is read.
const maxResponseBytes = 1 << 20

// Config controls the backend client.
type Config struct {
	BaseURL   string
	LoginPath string        // default DefaultLoginPath
	Timeout   time.Duration // default 10s; ignored when HTTPClient is set
	// HTTPClient overrides the client used for requests (optional).
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements ports.AuthClient against the catalog API.
type Client struct {
	loginURL string
	http     *http.Client
	logger   *slog.Logger
}

var _ ports.AuthClient = (*Client)(nil)

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	path := cfg.LoginPath
	if path == "" {
		path = DefaultLoginPath
	}
	loginURL := base.JoinPath(path)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		loginURL: loginURL.String(),
		http:     httpClient,
		logger:   logger.With("component", "backend_client"),
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("backend base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend base URL must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("backend base URL has no host")
	}
	return u, nil
}

// Login posts creds to the authentication endpoint and decodes the returned identity.
// Failures are classified: 401/403 as invalid credentials, other statuses and
// network errors as transport, undecodable or token-less bodies as malformed.
func (c *Client) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Identity, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL, bytes.NewReader(body))
	if err != nil {
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build login request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domainauth.Identity{}, classifyTransportError(err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(ctx, "close login response body", "error", cerr)
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domainauth.Identity{}, classifyTransportError(err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domainauth.Identity{}, apperrors.InvalidCredentials(resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.WarnContext(ctx, "unexpected login status",
			"status", resp.StatusCode,
			"body", truncate(string(payload), 256))
		return domainauth.Identity{}, apperrors.Transportf(resp.StatusCode, "login returned status %d", resp.StatusCode)
	}

	var identity domainauth.Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeMalformedResponse, "decode login response")
	}
	if !domainauth.IsAuthenticated(identity.Token) {
		return domainauth.Identity{}, apperrors.MalformedResponse("login response carries no token")
	}
	if identity.Roles == nil {
		identity.Roles = domainauth.Roles{}
	}
	return identity, nil
}

func classifyTransportError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "login request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "login request timed out")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "login request timed out")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeTransport, "login request failed")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
