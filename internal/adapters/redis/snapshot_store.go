// Package redis provides Redis-based adapters for the livraria session.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	apperrors "github.com/rafaelq80/livraria-react-sub000/internal/errors"
	"github.com/rafaelq80/livraria-react-sub000/internal/ports"
)

// Default key names, shared with the browser build of the catalog admin.
const (
	DefaultSnapshotKey    = "usuario-storage"
	DefaultLegacyTokenKey = "token"
)

// SnapshotStoreOptions configures a SnapshotStore.
type SnapshotStoreOptions struct {
	Prefix         string // prepended to both keys, e.g. "livraria:"
	SnapshotKey    string
	LegacyTokenKey string
	// TTL bounds how long a snapshot survives without a new login; zero keeps it until logout.
	TTL time.Duration
}

// SnapshotStore keeps the session snapshot in a single Redis key.
type SnapshotStore struct {
	client      redis.UniversalClient
	snapshotKey string
	legacyKey   string
	ttl         time.Duration
}

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a Redis-based snapshot store with default key names.
func NewSnapshotStore(client redis.UniversalClient) *SnapshotStore {
	return NewSnapshotStoreWithOptions(client, SnapshotStoreOptions{})
}

// NewSnapshotStoreWithOptions creates a Redis snapshot store with custom keys.
func NewSnapshotStoreWithOptions(client redis.UniversalClient, opts SnapshotStoreOptions) *SnapshotStore {
	snapKey := opts.SnapshotKey
	if snapKey == "" {
		snapKey = DefaultSnapshotKey
	}
	legacyKey := opts.LegacyTokenKey
	if legacyKey == "" {
		legacyKey = DefaultLegacyTokenKey
	}
	return &SnapshotStore{
		client:      client,
		snapshotKey: opts.Prefix + snapKey,
		legacyKey:   opts.Prefix + legacyKey,
		ttl:         opts.TTL,
	}
}

// Load returns the persisted snapshot, or a not-found error when none is stored.
func (s *SnapshotStore) Load(ctx context.Context) (domainauth.Snapshot, error) {
	data, err := s.client.Get(ctx, s.snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Snapshot{}, apperrors.NotFound("session snapshot")
		}
		return domainauth.Snapshot{}, fmt.Errorf("redis get: %w", err)
	}

	var snap domainauth.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domainauth.Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeMalformedResponse, "decode session snapshot")
	}
	return snap, nil
}

// Save writes snap under the prefixed snapshot key with the configured TTL.
func (s *SnapshotStore) Save(ctx context.Context, snap domainauth.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	return s.client.Set(ctx, s.snapshotKey, data, s.ttl).Err()
}

// Clear removes the snapshot and any token cached under the legacy key.
func (s *SnapshotStore) Clear(ctx context.Context) error {
	// Separate DELs keep cluster mode happy when the keys hash to different slots.
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.snapshotKey)
		p.Del(ctx, s.legacyKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
