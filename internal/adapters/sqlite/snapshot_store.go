// Package sqlite keeps the session snapshot in a local SQLite key-value table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	apperrors "github.com/rafaelq80/livraria-react-sub000/internal/errors"
	"github.com/rafaelq80/livraria-react-sub000/internal/ports"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// Options configures key names for a SnapshotStore.
type Options struct {
	SnapshotKey    string // default "usuario-storage"
	LegacyTokenKey string // default "token"
}

// SnapshotStore implements ports.SnapshotStore on a single SQLite file.
type SnapshotStore struct {
	db          *sql.DB
	snapshotKey string
	legacyKey   string
}

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// Open opens (or creates) the database at path with WAL mode enabled.
func Open(path string, opts Options) (*SnapshotStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &SnapshotStore{db: db, snapshotKey: opts.SnapshotKey, legacyKey: opts.LegacyTokenKey}
	if s.snapshotKey == "" {
		s.snapshotKey = "usuario-storage"
	}
	if s.legacyKey == "" {
		s.legacyKey = "token"
	}
	return s, nil
}

// Close releases the database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Load returns the persisted snapshot, or a not-found error when none is stored.
func (s *SnapshotStore) Load(ctx context.Context) (domainauth.Snapshot, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, s.snapshotKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domainauth.Snapshot{}, apperrors.NotFound("session snapshot")
	}
	if err != nil {
		return domainauth.Snapshot{}, fmt.Errorf("select snapshot: %w", err)
	}

	var snap domainauth.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return domainauth.Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeMalformedResponse, "decode session snapshot")
	}
	return snap, nil
}

// Save writes snap under the snapshot key, replacing any previous value.
func (s *SnapshotStore) Save(ctx context.Context, snap domainauth.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.snapshotKey, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Clear deletes the snapshot and the legacy token entry in one statement.
func (s *SnapshotStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key IN (?, ?)`, s.snapshotKey, s.legacyKey); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
