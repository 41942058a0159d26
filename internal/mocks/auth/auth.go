// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"sync"

	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	apperrors "github.com/rafaelq80/livraria-react-sub000/internal/errors"
	"github.com/rafaelq80/livraria-react-sub000/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthClient    = (*MockAuthClient)(nil)
	_ ports.SnapshotStore = (*MemorySnapshotStore)(nil)
	_ ports.Notifier      = (*RecordingNotifier)(nil)
)

// MockAuthClient simulates the authentication endpoint.
type MockAuthClient struct {
	LoginFunc func(ctx context.Context, creds domainauth.Credentials) (domainauth.Identity, error)

	// DefaultUser is returned when LoginFunc is nil.
	DefaultUser domainauth.Identity

	mu    sync.Mutex
	calls []domainauth.Credentials
}

// NewMockAuthClient creates a MockAuthClient that signs in a regular user.
func NewMockAuthClient() *MockAuthClient {
	return &MockAuthClient{
		DefaultUser: domainauth.Identity{
			ID:      1,
			Nome:    "Mock User",
			Usuario: "mock@livraria.com",
			Token:   "Bearer mock-token",
			Roles:   domainauth.Roles{{ID: 2, Nome: "user", Descricao: "Usuário"}},
		},
	}
}

func (m *MockAuthClient) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Identity, error) {
	m.mu.Lock()
	m.calls = append(m.calls, creds)
	m.mu.Unlock()

	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return m.DefaultUser, nil
}

// Calls returns the credentials submitted so far.
func (m *MockAuthClient) Calls() []domainauth.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domainauth.Credentials(nil), m.calls...)
}

// MemorySnapshotStore is an in-memory snapshot store for unit tests.
type MemorySnapshotStore struct {
	mu      sync.Mutex
	snap    *domainauth.Snapshot
	saves   int
	clears  int
	SaveErr error
	LoadErr error
}

// NewMemorySnapshotStore creates an empty store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

func (m *MemorySnapshotStore) Load(_ context.Context) (domainauth.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return domainauth.Snapshot{}, m.LoadErr
	}
	if m.snap == nil {
		return domainauth.Snapshot{}, apperrors.NotFound("snapshot not found")
	}
	return *m.snap, nil
}

func (m *MemorySnapshotStore) Save(_ context.Context, snap domainauth.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.saves++
	cp := snap
	m.snap = &cp
	return nil
}

func (m *MemorySnapshotStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.snap = nil
	m.LoadErr = nil
	return nil
}

// Put seeds the store as if a previous process had persisted snap.
func (m *MemorySnapshotStore) Put(snap domainauth.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := snap
	m.snap = &cp
}

// Snapshot returns the stored snapshot and whether one exists.
func (m *MemorySnapshotStore) Snapshot() (domainauth.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return domainauth.Snapshot{}, false
	}
	return *m.snap, true
}

// Counts returns how many saves and clears happened.
func (m *MemorySnapshotStore) Counts() (saves, clears int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves, m.clears
}

// RecordingNotifier keeps every notice it receives.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []ports.Notice
}

func (n *RecordingNotifier) Notify(_ context.Context, notice ports.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

// Notices returns the recorded notices.
func (n *RecordingNotifier) Notices() []ports.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.Notice(nil), n.notices...)
}
