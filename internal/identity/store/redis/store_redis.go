// Package redis holds the durable session record for "remember me"
// sessions. The record is JSON under a fixed key with a TTL; the refresh
// token inside is still subject to revocation by the identity provider.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"gridview/internal/identity"
	platformredis "gridview/internal/platform/redis"
	"gridview/pkg/platform/sentinel"
)

const recordKey = "gridview:session-record"

// Store keeps the durable session record in Redis.
type Store struct {
	client *platformredis.Client
	ttl    time.Duration
}

// New builds a Redis-backed store whose record expires after ttl.
func New(client *platformredis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Save(ctx context.Context, rec identity.SessionRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	if err := s.client.Set(ctx, recordKey, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session record: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (identity.SessionRecord, error) {
	payload, err := s.client.Get(ctx, recordKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return identity.SessionRecord{}, sentinel.ErrNotFound
	}
	if err != nil {
		return identity.SessionRecord{}, fmt.Errorf("load session record: %w", err)
	}

	var rec identity.SessionRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return identity.SessionRecord{}, fmt.Errorf("unmarshal session record: %w", err)
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, recordKey).Err(); err != nil {
		return fmt.Errorf("delete session record: %w", err)
	}
	return nil
}

var _ identity.RecordStore = (*Store)(nil)
