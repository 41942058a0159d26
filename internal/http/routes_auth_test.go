package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_APIProxyUsesSessionToken(t *testing.T) {
	var gotAuth, gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"nome":"Machado de Assis"}]`)
	}))
	defer upstream.Close()

	// The proxy needs the session as its token source, so wire it after the env exists.
	env := newTestEnv(t, testEnvOptions{})
	proxy, err := backend.NewAPIProxy(backend.ProxyConfig{
		BaseURL:     upstream.URL,
		StripPrefix: PathAPIPrefix,
		Source:      env.Session,
		Logger:      discardLogger(),
	})
	require.NoError(t, err)
	env.Router = NewRouter(RouterServices{
		Session:  env.Session,
		Renderer: newTestRenderer(t),
		Notices:  env.Notices,
		APIProxy: proxy,
		Logger:   discardLogger(),
	})

	rec := env.do(apiGet("/api/autores"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "anonymous sessions never reach the backend")
	assert.Empty(t, gotAuth)

	env.signIn(t, identityWithRoles("user"))
	rec = env.do(apiGet("/api/autores"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer tok-9", gotAuth)
	assert.Equal(t, "/autores", gotPath)
	assert.Contains(t, rec.Body.String(), "Machado de Assis")
}

func TestRouter_HealthAndReady(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})

	assert.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	assert.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)
}

func TestRouter_MetricsEndpointOptional(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	assert.Equal(t, http.StatusNotFound, env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}

func TestRouter_HomeListsVisibleSections(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	env.signIn(t, identityWithRoles("user"))

	rec := env.do(browserGet("/"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/autores"`)
	assert.NotContains(t, body, `href="/usuarios"`)
	assert.Contains(t, body, "Carla")
}
