package backend

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"

	apperrors "github.com/rafaelq80/livraria-react-sub000/internal/errors"
	"golang.org/x/oauth2"
)

// NewAuthorizedTransport wraps base so every request carries
// "Authorization: Bearer <token>" taken from src at call time.
func NewAuthorizedTransport(base http.RoundTripper, src oauth2.TokenSource) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &oauth2.Transport{Source: src, Base: base}
}

// NewAuthorizedClient returns an http.Client using NewAuthorizedTransport.
func NewAuthorizedClient(base http.RoundTripper, src oauth2.TokenSource) *http.Client {
	return &http.Client{Transport: NewAuthorizedTransport(base, src)}
}

// ProxyConfig controls the catalog API proxy.
type ProxyConfig struct {
	BaseURL string
	// StripPrefix is removed from incoming paths before forwarding (e.g. "/api").
	StripPrefix string
	Source      oauth2.TokenSource
	Base        http.RoundTripper
	Logger      *slog.Logger
}

// NewAPIProxy forwards catalog requests to the backend with the session's bearer token.
func NewAPIProxy(cfg ProxyConfig) (http.Handler, error) {
	target, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Source == nil {
		return nil, errors.New("token source is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	prefix := strings.TrimRight(cfg.StripPrefix, "/")
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path = joinPath(target.Path, strings.TrimPrefix(pr.In.URL.Path, prefix))
			pr.Out.URL.RawPath = ""
			pr.Out.Host = target.Host
			// The browser never gets to choose the credential.
			pr.Out.Header.Del("Authorization")
			pr.Out.Header.Del("Cookie")
		},
		Transport: NewAuthorizedTransport(cfg.Base, cfg.Source),
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			status := http.StatusBadGateway
			if apperrors.GetCode(err) == apperrors.ErrCodeNotAuthenticated {
				status = http.StatusUnauthorized
			}
			logger.WarnContext(r.Context(), "backend proxy failed", "path", r.URL.Path, "status", status, "error", err)
			w.WriteHeader(status)
		},
	}
	return proxy, nil
}

func joinPath(base, p string) string {
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if base == "" || base == "/" {
		return p
	}
	return strings.TrimRight(base, "/") + p
}
