package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/notice"
	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	mocksauth "github.com/rafaelq80/livraria-react-sub000/internal/mocks/auth"
	"github.com/rafaelq80/livraria-react-sub000/internal/observability/metrics"
	"github.com/rafaelq80/livraria-react-sub000/internal/service"
	"github.com/stretchr/testify/require"
)

const testCSRFToken = "test-csrf-token"

type testEnv struct {
	Router  http.Handler
	Session *service.SessionService
	Client  *mocksauth.MockAuthClient
	Store   *mocksauth.MemorySnapshotStore
	Notices *notice.Queue
}

type testEnvOptions struct {
	SkipBootstrap bool
	APIProxy      http.Handler
	Metrics       metrics.SessionRecorder
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	r, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Logger:     discardLogger(),
	})
	require.NoError(t, err)
	return r
}

func newTestEnv(t *testing.T, opts testEnvOptions) *testEnv {
	t.Helper()
	client := mocksauth.NewMockAuthClient()
	store := mocksauth.NewMemorySnapshotStore()
	queue := notice.NewQueue(0)
	svc := service.MustNewSessionService(service.SessionServiceOptions{
		Client:    client,
		Snapshots: store,
		Notifier:  queue,
		Logger:    discardLogger(),
	})
	if !opts.SkipBootstrap {
		require.NoError(t, svc.Bootstrap(context.Background()))
	}

	router := NewRouter(RouterServices{
		Session:  svc,
		Renderer: newTestRenderer(t),
		Notices:  queue,
		Sections: DefaultSections([]string{"admin", "user"}, []string{"admin"}),
		APIProxy: opts.APIProxy,
		Metrics:  opts.Metrics,
		Logger:   discardLogger(),
	})
	return &testEnv{Router: router, Session: svc, Client: client, Store: store, Notices: queue}
}

// signIn logs the env's session in as identity.
func (e *testEnv) signIn(t *testing.T, identity domainauth.Identity) {
	t.Helper()
	e.Client.DefaultUser = identity
	require.NoError(t, e.Session.Login(context.Background(), domainauth.Credentials{Usuario: identity.Usuario, Senha: "x"}))
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

func browserGet(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	return req
}

func apiGet(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	return req
}

// formPost builds a form POST carrying a valid CSRF cookie and field.
func formPost(path string, form url.Values) *http.Request {
	form.Set("csrf_token", testCSRFToken)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	return req
}

func jsonPost(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(DefaultCSRFHeaderName, testCSRFToken)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	return req
}

func identityWithRoles(names ...string) domainauth.Identity {
	roles := make(domainauth.Roles, 0, len(names))
	for i, n := range names {
		roles = append(roles, domainauth.Role{ID: i + 1, Nome: n})
	}
	return domainauth.Identity{ID: 9, Nome: "Carla", Usuario: "carla@livraria.com", Token: "Bearer tok-9", Roles: roles}
}
