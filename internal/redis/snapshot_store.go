package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cbrevik/cbc-menu/internal/domain"
)

// SnapshotStore persists opaque saved/tasted snapshot blobs keyed by an
// external user identifier. Blobs are stored and returned verbatim.
type SnapshotStore struct {
	rdb *goredis.Client
}

func NewSnapshotStore(rdb *goredis.Client) *SnapshotStore {
	return &SnapshotStore{rdb: rdb}
}

func (s *SnapshotStore) Set(ctx context.Context, userID, blob string) error {
	if err := s.rdb.Set(ctx, snapshotKey(userID), blob, 0).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Get(ctx context.Context, userID string) (string, error) {
	blob, err := s.rdb.Get(ctx, snapshotKey(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrSnapshotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load snapshot: %w", err)
	}
	return blob, nil
}

func snapshotKey(userID string) string {
	return "_snapshot_" + userID
}
