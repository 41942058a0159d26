// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
)

// AuthClient submits credentials to the authentication endpoint.
type AuthClient interface {
	// Login exchanges credentials for an identity. Implementations classify failures
	// with internal/errors codes (invalid credentials, transport, malformed response).
	Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Identity, error)
}

// SnapshotStore persists the session snapshot in durable key-value storage.
type SnapshotStore interface {
	// Load returns the persisted snapshot or an error satisfying errors.IsNotFound when absent.
	Load(ctx context.Context) (domainauth.Snapshot, error)
	Save(ctx context.Context, snap domainauth.Snapshot) error
	// Clear removes the snapshot and any legacy cached token entry.
	Clear(ctx context.Context) error
}

// NoticeLevel classifies a user-facing notice.
type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeWarning NoticeLevel = "warning"
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
)

// Notice is a short message shown to the operator.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier presents notices; the presentation itself belongs to the UI layer.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}
