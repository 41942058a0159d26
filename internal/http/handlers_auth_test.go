package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	apperrors "github.com/rafaelq80/livraria-react-sub000/internal/errors"
	"github.com/rafaelq80/livraria-react-sub000/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPage_RendersForm(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})

	rec := env.do(browserGet("/login?redirect_uri=%2Feditoras"))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/login"`)
	assert.Contains(t, body, `name="redirect_uri" value="/editoras"`)
	assert.Contains(t, body, `name="csrf_token"`)
	assert.NotEmpty(t, rec.Result().Cookies(), "csrf cookie is issued")
}

func TestLoginPage_AuthenticatedIsSentOn(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	env.signIn(t, identityWithRoles("user"))

	rec := env.do(browserGet("/login?redirect_uri=%2Fautores"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/autores", rec.Header().Get("Location"))
}

func TestSubmitLogin_FormSuccess(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	env.Client.DefaultUser = identityWithRoles("admin")

	rec := env.do(formPost("/login", url.Values{
		"usuario":      {"  carla@livraria.com "},
		"senha":        {"123456"},
		"redirect_uri": {"/usuarios"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/usuarios", rec.Header().Get("Location"))

	calls := env.Client.Calls()
	require.Len(t, calls, 1, "exactly one login call, no retries")
	assert.Equal(t, domainauth.Credentials{Usuario: "carla@livraria.com", Senha: "123456"}, calls[0])

	state := env.Session.State()
	assert.True(t, state.IsAuthenticated)
	assert.True(t, state.IsAdmin)
	snap, ok := env.Store.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "carla@livraria.com", snap.Usuario.Usuario)
}

func TestSubmitLogin_OpenRedirectRejected(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})

	rec := env.do(formPost("/login", url.Values{
		"usuario":      {"a@b.com"},
		"senha":        {"x"},
		"redirect_uri": {"https://evil.example/phish"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSubmitLogin_InvalidCredentialsRerendersWithNotice(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	env.Client.LoginFunc = func(context.Context, domainauth.Credentials) (domainauth.Identity, error) {
		return domainauth.Identity{}, apperrors.InvalidCredentials(http.StatusUnauthorized)
	}

	rec := env.do(formPost("/login", url.Values{"usuario": {"carla@livraria.com"}, "senha": {"errada"}}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, service.NoticeInvalidCredentials), "notice shown exactly once")
	assert.Contains(t, body, `value="carla@livraria.com"`)
	assert.False(t, env.Session.State().IsAuthenticated)
	assert.Empty(t, env.Notices.Drain())
}

func TestSubmitLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})

	rec := env.do(formPost("/login", url.Values{"usuario": {"   "}, "senha": {"x"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), NoticeMissingCredentials)
	assert.Empty(t, env.Client.Calls())
}

func TestSubmitLogin_RequiresCSRF(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})

	req := formPost("/login", url.Values{"usuario": {"a"}, "senha": {"b"}})
	req.Header.Del("Cookie")
	rec := env.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, env.Client.Calls())
}

func TestSubmitLogin_JSON(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})

	rec := env.do(jsonPost("/login", `{"usuario":"mock@livraria.com","senha":"x","redirect_uri":"/produtos"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/produtos", body["redirect_to"])
	assert.True(t, env.Session.State().IsAuthenticated)
}

func TestSubmitLogin_JSONErrorCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid credentials", apperrors.InvalidCredentials(http.StatusUnauthorized), http.StatusUnauthorized, "invalid_credentials"},
		{"malformed", apperrors.MalformedResponse("no token"), http.StatusBadGateway, "malformed_response"},
		{"transport", apperrors.Transportf(http.StatusInternalServerError, "boom"), http.StatusBadGateway, "transport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, testEnvOptions{})
			env.Client.LoginFunc = func(context.Context, domainauth.Credentials) (domainauth.Identity, error) {
				return domainauth.Identity{}, tt.err
			}

			rec := env.do(jsonPost("/login", `{"usuario":"a","senha":"b"}`))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["error"])
		})
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	env.signIn(t, identityWithRoles("admin"))

	rec := env.do(formPost("/logout", url.Values{}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, PathLogin, rec.Header().Get("Location"))
	state := env.Session.State()
	assert.False(t, state.IsAuthenticated)
	assert.False(t, state.IsAdmin)
	_, ok := env.Store.Snapshot()
	assert.False(t, ok)
}

func TestForbiddenPage(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})

	rec := env.do(browserGet("/forbidden"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acesso negado")
}

func TestStatus_NeverExposesToken(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	env.signIn(t, identityWithRoles("admin"))

	rec := env.do(apiGet("/auth/status"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "tok-9")
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["isAuthenticated"])
	assert.Equal(t, true, body["isAdmin"])
	assert.Equal(t, true, body["ready"])
}

func TestStatus_Anonymous(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{SkipBootstrap: true})

	rec := env.do(apiGet("/auth/status"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["isAuthenticated"])
	assert.Equal(t, false, body["ready"])
	assert.NotContains(t, body, "usuario")
}
