package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	apperrors "github.com/rafaelq80/livraria-react-sub000/internal/errors"
	"github.com/rafaelq80/livraria-react-sub000/internal/observability/metrics"
	"github.com/rafaelq80/livraria-react-sub000/internal/ports"
	"golang.org/x/oauth2"
)

// User-facing notices emitted by the session service.
const (
	NoticeInvalidCredentials = "Usuário ou senha inconsistentes!"
	NoticeMalformedResponse  = "Resposta inválida do servidor."
	NoticeUnreachable        = "Não foi possível conectar ao servidor."
	NoticeLoginRequired      = "Você precisa estar logado!"
)

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Client    ports.AuthClient        // Required: authentication endpoint
	Snapshots ports.SnapshotStore     // Required: durable snapshot storage
	Notifier  ports.Notifier          // Optional: user-facing notices
	Metrics   metrics.SessionRecorder // Optional: session metrics
	Logger    *slog.Logger            // Optional: structured logger
}

// SessionService owns the signed-in identity of this process and the flags derived from it.
// One instance is constructed at startup and shared by reference; it is safe for concurrent use.
type SessionService struct {
	client    ports.AuthClient
	snapshots ports.SnapshotStore
	notifier  ports.Notifier
	metrics   metrics.SessionRecorder
	logger    *slog.Logger

	mu              sync.RWMutex
	identity        domainauth.Identity
	isAdmin         bool
	isAuthenticated bool
	inFlight        int
	// generation advances on every login and logout; a login response is only
	// applied while its generation is still current.
	generation    uint64
	justLoggedOut bool

	// persistMu orders snapshot writes with the generation check.
	persistMu sync.Mutex

	ready    chan struct{}
	bootOnce sync.Once
	bootErr  error
}

// NewSessionService constructs a SessionService holding the anonymous identity.
func NewSessionService(opts SessionServiceOptions) (*SessionService, error) {
	if opts.Client == nil {
		return nil, errors.New("AuthClient is required")
	}
	if opts.Snapshots == nil {
		return nil, errors.New("SnapshotStore is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rec := opts.Metrics
	if rec == nil {
		rec = metrics.Noop{}
	}

	return &SessionService{
		client:    opts.Client,
		snapshots: opts.Snapshots,
		notifier:  opts.Notifier,
		metrics:   rec,
		logger:    logger.With("component", "session_service"),
		identity:  domainauth.Anonymous(),
		ready:     make(chan struct{}),
	}, nil
}

// MustNewSessionService constructs a new SessionService and panics on error.
// Use this when you want fail-fast behavior during application startup.
func MustNewSessionService(opts SessionServiceOptions) *SessionService {
	svc, err := NewSessionService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
	}
	return svc
}

// Login submits creds to the authentication endpoint and, on success, replaces the
// session identity and persists it. On failure the session is left anonymous, the
// persisted snapshot is cleared, one notice is emitted and the error is returned.
//
// Concurrent logins are serialized by generation: when a newer Login or Logout
// starts before this one resolves, the response is discarded and a superseded
// error is returned.
func (s *SessionService) Login(ctx context.Context, creds domainauth.Credentials) error {
	attempt := uuid.NewString()
	start := time.Now()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.inFlight++
	s.justLoggedOut = false
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	s.logger.InfoContext(ctx, "login started", "attempt_id", attempt, "usuario", creds.Usuario)

	identity, err := s.client.Login(ctx, creds)
	if err == nil && !domainauth.IsAuthenticated(identity.Token) {
		err = apperrors.MalformedResponse("login response carries no token")
	}

	// The result belongs to the session, not to the caller: apply it even if
	// the caller's context is gone by now.
	persistCtx := context.WithoutCancel(ctx)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "login response discarded", "attempt_id", attempt, "reason", "superseded")
		s.metrics.LoginAttempt(string(apperrors.ErrCodeSuperseded), time.Since(start))
		if err != nil {
			return errors.Join(apperrors.Superseded(), err)
		}
		return apperrors.Superseded()
	}

	if err != nil {
		s.setIdentityLocked(domainauth.Anonymous())
		s.mu.Unlock()

		s.persist(persistCtx, gen, nil)
		s.logger.WarnContext(ctx, "login failed",
			"attempt_id", attempt,
			"usuario", creds.Usuario,
			"error_code", apperrors.GetCode(err),
			"error", err)
		s.notify(ctx, loginFailureNotice(err))
		s.metrics.LoginAttempt(outcomeOf(err), time.Since(start))
		return fmt.Errorf("login: %w", err)
	}

	s.setIdentityLocked(identity)
	snap := domainauth.SnapshotOf(s.identity)
	s.mu.Unlock()

	s.persist(persistCtx, gen, &snap)
	s.logger.InfoContext(ctx, "login succeeded",
		"attempt_id", attempt,
		"user_id", identity.ID,
		"usuario", identity.Usuario,
		"is_admin", snap.IsAdmin)
	s.metrics.LoginAttempt(metrics.ResultSuccess, time.Since(start))
	return nil
}

// Logout resets the session to anonymous and clears persisted state.
// The in-memory reset always happens; a storage failure is returned afterwards.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.setIdentityLocked(domainauth.Anonymous())
	s.justLoggedOut = true
	s.mu.Unlock()

	s.metrics.Logout()

	if err := s.clearIfCurrent(ctx, gen); err != nil {
		s.logger.ErrorContext(ctx, "clear session snapshot failed", "error", err)
		return fmt.Errorf("clear session snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "logged out")
	return nil
}

// UpdateAuthState recomputes the derived flags from the current identity.
func (s *SessionService) UpdateAuthState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isAdmin = domainauth.IsAdmin(s.identity.Roles)
	s.isAuthenticated = domainauth.IsAuthenticated(s.identity.Token)
}

// Bootstrap rehydrates the session from the persisted snapshot and recomputes the
// derived flags. It runs at most once; later calls return the first result.
// Ready is closed when it finishes, whether or not a snapshot was found.
func (s *SessionService) Bootstrap(ctx context.Context) error {
	s.bootOnce.Do(func() {
		defer close(s.ready)
		s.bootErr = s.rehydrate(ctx)
		s.UpdateAuthState()
	})
	return s.bootErr
}

func (s *SessionService) rehydrate(ctx context.Context) error {
	snap, err := s.snapshots.Load(ctx)
	switch {
	case err == nil:
	case apperrors.IsNotFound(err):
		s.logger.DebugContext(ctx, "no persisted session")
		return nil
	case apperrors.IsMalformedResponse(err):
		s.logger.WarnContext(ctx, "discarding malformed session snapshot", "error", err)
		s.persistMu.Lock()
		clearErr := s.snapshots.Clear(ctx)
		s.persistMu.Unlock()
		if clearErr != nil {
			s.logger.WarnContext(ctx, "clear malformed snapshot failed", "error", clearErr)
		}
		return nil
	default:
		s.logger.ErrorContext(ctx, "load session snapshot failed", "error", err)
		return fmt.Errorf("load session snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != 0 {
		// A login or logout already ran; it wins over the older snapshot.
		return nil
	}
	identity := snap.Usuario
	if identity.Roles == nil {
		identity.Roles = domainauth.Roles{}
	}
	// Stored flags act as placeholders until UpdateAuthState recomputes them.
	s.identity = identity
	s.isAdmin = snap.IsAdmin
	s.isAuthenticated = snap.IsAuthenticated
	s.logger.InfoContext(ctx, "session restored", "user_id", identity.ID, "usuario", identity.Usuario)
	return nil
}

// Ready is closed once Bootstrap has finished.
func (s *SessionService) Ready() <-chan struct{} { return s.ready }

// WaitReady blocks until Bootstrap has finished or ctx is done.
func (s *SessionService) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a copy of the current session state.
func (s *SessionService) State() domainauth.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity := s.identity
	identity.Roles = append(domainauth.Roles{}, s.identity.Roles...)
	return domainauth.State{
		Identity:        identity,
		Loading:         s.inFlight > 0,
		IsAdmin:         s.isAdmin,
		IsAuthenticated: s.isAuthenticated,
	}
}

// ConsumeJustLoggedOut reports whether the last session change was an explicit
// logout and resets the flag. Any later Login also resets it.
func (s *SessionService) ConsumeJustLoggedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.justLoggedOut
	s.justLoggedOut = false
	return v
}

// Token implements oauth2.TokenSource. The bearer value is derived from the
// current identity on every call, with any "Bearer " prefix stripped.
func (s *SessionService) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	token, ok := s.identity.Token, s.isAuthenticated
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotAuthenticated()
	}
	return &oauth2.Token{AccessToken: domainauth.BearerToken(token), TokenType: "Bearer"}, nil
}

var _ oauth2.TokenSource = (*SessionService)(nil)

func (s *SessionService) setIdentityLocked(identity domainauth.Identity) {
	if identity.Roles == nil {
		identity.Roles = domainauth.Roles{}
	}
	s.identity = identity
	s.isAdmin = domainauth.IsAdmin(identity.Roles)
	s.isAuthenticated = domainauth.IsAuthenticated(identity.Token)
}

// persist saves snap, or clears storage when snap is nil, unless a newer
// generation has taken over in the meantime.
func (s *SessionService) persist(ctx context.Context, gen uint64, snap *domainauth.Snapshot) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	current := s.generation == gen
	s.mu.RUnlock()
	if !current {
		return
	}

	if snap == nil {
		if err := s.snapshots.Clear(ctx); err != nil {
			s.logger.WarnContext(ctx, "clear session snapshot failed", "error", err)
		}
		return
	}
	if err := s.snapshots.Save(ctx, *snap); err != nil {
		s.logger.WarnContext(ctx, "persist session snapshot failed", "error", err)
	}
}

// clearIfCurrent clears storage unless a newer generation has taken over.
func (s *SessionService) clearIfCurrent(ctx context.Context, gen uint64) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	current := s.generation == gen
	s.mu.RUnlock()
	if !current {
		return nil
	}
	return s.snapshots.Clear(ctx)
}

func (s *SessionService) notify(ctx context.Context, n ports.Notice) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, n)
}

func loginFailureNotice(err error) ports.Notice {
	msg := NoticeUnreachable
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidCredentials:
		msg = NoticeInvalidCredentials
	case apperrors.ErrCodeMalformedResponse, apperrors.ErrCodeInternal:
		msg = NoticeMalformedResponse
	}
	return ports.Notice{Level: ports.NoticeError, Message: msg}
}

func outcomeOf(err error) string {
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}
	return metrics.ResultError
}
