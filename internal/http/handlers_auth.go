package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	apperrors "github.com/rafaelq80/livraria-react-sub000/internal/errors"
	"github.com/rafaelq80/livraria-react-sub000/internal/ports"
)

// NoticeMissingCredentials is shown when the login form is submitted with a blank field.
const NoticeMissingCredentials = "Informe o usuário e a senha."

// SessionManager is the session surface used by handlers and the guard.
type SessionManager interface {
	Login(ctx context.Context, creds domainauth.Credentials) error
	Logout(ctx context.Context) error
	State() domainauth.State
	Ready() <-chan struct{}
	WaitReady(ctx context.Context) error
	ConsumeJustLoggedOut() bool
}

// NoticeQueue is where pending user notices are queued and drained for rendering.
type NoticeQueue interface {
	ports.Notifier
	Drain() []ports.Notice
}

// AuthHandlers provides HTTP handlers for the credential submission flow.
type AuthHandlers struct {
	Session  SessionManager
	Renderer *TemplateRenderer
	Notices  NoticeQueue
	Logger   *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// LoginPage renders the login form.
// GET /login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	// Reaching the login page ends the post-logout window.
	h.Session.ConsumeJustLoggedOut()
	if err := h.Session.WaitReady(r.Context()); err == nil && h.Session.State().IsAuthenticated {
		http.Redirect(w, r, redirectURI, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, loginView{Status: http.StatusOK, RedirectURI: redirectURI})
}

type loginView struct {
	Status      int
	Usuario     string
	RedirectURI string
}

func (h *AuthHandlers) renderLogin(w http.ResponseWriter, r *http.Request, v loginView) {
	data := basePageData(r, PageMeta{Title: "Entrar", CurrentPage: PageLogin}, h.Session.State(), h.Notices.Drain())
	data.Usuario = v.Usuario
	data.RedirectURI = v.RedirectURI
	if err := h.Renderer.Render(w, v.Status, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

type loginRequest struct {
	Usuario     string `json:"usuario"`
	Senha       string `json:"senha"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

// SubmitLogin handles the credential form.
// POST /login with a form or JSON body {usuario, senha}.
func (h *AuthHandlers) SubmitLogin(w http.ResponseWriter, r *http.Request) {
	isJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")

	var req loginRequest
	if isJSON {
		if !DecodeJSON(w, r, &req) {
			return
		}
	} else {
		req.Usuario = r.PostFormValue("usuario")
		req.Senha = r.PostFormValue("senha")
		req.RedirectURI = r.PostFormValue("redirect_uri")
	}
	req.Usuario = strings.TrimSpace(req.Usuario)
	redirectURI := safeRedirectPath(req.RedirectURI)
	view := loginView{Usuario: req.Usuario, RedirectURI: redirectURI}

	if req.Usuario == "" || req.Senha == "" {
		err := apperrors.ValidationField("usuario", NoticeMissingCredentials)
		if isJSON {
			WriteAppError(w, err)
			return
		}
		h.Notices.Notify(r.Context(), ports.Notice{Level: ports.NoticeWarning, Message: NoticeMissingCredentials})
		view.Status = http.StatusBadRequest
		h.renderLogin(w, r, view)
		return
	}

	// Login already logged and queued a notice for any failure.
	err := h.Session.Login(r.Context(), domainauth.Credentials{Usuario: req.Usuario, Senha: req.Senha})
	if err != nil {
		if isJSON {
			h.Notices.Drain()
			WriteAppError(w, err)
			return
		}
		view.Status = StatusForError(err)
		h.renderLogin(w, r, view)
		return
	}

	if !h.Session.State().IsAuthenticated {
		// A concurrent logout won; stay on the login view.
		h.logger().WarnContext(r.Context(), "session not authenticated after login")
		view.Status = http.StatusConflict
		if isJSON {
			WriteAppError(w, apperrors.Superseded())
			return
		}
		h.renderLogin(w, r, view)
		return
	}

	switch {
	case isJSON:
		WriteJSON(w, http.StatusOK, map[string]string{"status": "success", "redirect_to": redirectURI})
	case IsHTMX(r):
		SetHXRedirect(w, redirectURI)
		w.WriteHeader(http.StatusOK)
	default:
		http.Redirect(w, r, redirectURI, http.StatusSeeOther)
	}
}

// Logout ends the session.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Logout(r.Context()); err != nil {
		// The in-memory session is already anonymous.
		h.logger().WarnContext(r.Context(), "logout failed", "error", err)
	}

	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	switch {
	case isAJAX:
		WriteJSON(w, http.StatusOK, map[string]string{"status": "success", "redirect_to": PathLogin})
	case IsHTMX(r):
		SetHXRedirect(w, PathLogin)
		w.WriteHeader(http.StatusOK)
	default:
		http.Redirect(w, r, PathLogin, http.StatusSeeOther)
	}
}

// Forbidden renders the access-denied view.
// GET /forbidden.
func (h *AuthHandlers) Forbidden(w http.ResponseWriter, r *http.Request) {
	data := basePageData(r, PageMeta{Title: "Acesso negado", CurrentPage: PageForbidden}, h.Session.State(), h.Notices.Drain())
	if err := h.Renderer.Render(w, http.StatusForbidden, data); err != nil {
		http.Error(w, "Access Denied", http.StatusForbidden)
	}
}

// Status returns the current session state without the token.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	ready := true
	select {
	case <-h.Session.Ready():
	default:
		ready = false
	}

	s := h.Session.State()
	body := map[string]any{
		"ready":           ready,
		"loading":         s.Loading,
		"isAuthenticated": s.IsAuthenticated,
		"isAdmin":         s.IsAdmin,
	}
	if s.IsAuthenticated {
		body["usuario"] = map[string]any{
			"id":      s.Identity.ID,
			"nome":    s.Identity.Nome,
			"usuario": s.Identity.Usuario,
			"foto":    s.Identity.Foto,
			"roles":   s.Identity.Roles,
		}
	}
	WriteJSON(w, http.StatusOK, body)
}

// loginURLFor builds /login?redirect_uri=<path>.
func loginURLFor(path string) string {
	q := url.Values{}
	q.Set("redirect_uri", safeRedirectPath(path))
	return PathLogin + "?" + q.Encode()
}
