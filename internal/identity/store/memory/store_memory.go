// Package memory holds the session-scoped session record. The record lives
// only as long as the process, bounded by a TTL, which is the Go-side analog
// of a browser session that ends when the tab closes.
package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"gridview/internal/identity"
	"gridview/pkg/platform/sentinel"
)

const recordKey = "session-record"

// Store keeps at most one session record in process memory.
type Store struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// New builds a memory store whose record expires after ttl.
func New(ttl time.Duration) *Store {
	return &Store{
		cache: gocache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

func (s *Store) Save(_ context.Context, rec identity.SessionRecord) error {
	s.cache.Set(recordKey, rec, s.ttl)
	return nil
}

func (s *Store) Load(_ context.Context) (identity.SessionRecord, error) {
	v, ok := s.cache.Get(recordKey)
	if !ok {
		return identity.SessionRecord{}, sentinel.ErrNotFound
	}
	rec, ok := v.(identity.SessionRecord)
	if !ok {
		return identity.SessionRecord{}, sentinel.ErrNotFound
	}
	return rec, nil
}

func (s *Store) Delete(_ context.Context) error {
	s.cache.Delete(recordKey)
	return nil
}

var _ identity.RecordStore = (*Store)(nil)
