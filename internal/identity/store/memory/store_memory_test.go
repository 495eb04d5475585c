package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gridview/internal/identity"
	"gridview/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = New(time.Hour)
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) record() identity.SessionRecord {
	return identity.SessionRecord{
		RefreshToken: "refresh-1",
		Principal:    identity.Principal{ID: "user-1", Email: "user@example.com", Provider: identity.ProviderPassword},
		Persistence:  identity.PersistenceSession,
		CreatedAt:    time.Now(),
	}
}

func (s *MemoryStoreSuite) TestRoundTrip() {
	s.Run("load without a record reports not found", func() {
		_, err := s.store.Load(s.ctx)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("save then load returns the record", func() {
		rec := s.record()
		s.Require().NoError(s.store.Save(s.ctx, rec))

		got, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Equal(rec.RefreshToken, got.RefreshToken)
		s.Equal(rec.Principal.ID, got.Principal.ID)
	})

	s.Run("a second save replaces the record", func() {
		rec := s.record()
		rec.RefreshToken = "refresh-2"
		s.Require().NoError(s.store.Save(s.ctx, rec))

		got, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Equal("refresh-2", got.RefreshToken)
	})

	s.Run("delete removes the record and is idempotent", func() {
		s.Require().NoError(s.store.Delete(s.ctx))
		s.Require().NoError(s.store.Delete(s.ctx))

		_, err := s.store.Load(s.ctx)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestTTLExpiry() {
	store := New(10 * time.Millisecond)
	s.Require().NoError(store.Save(s.ctx, s.record()))

	time.Sleep(30 * time.Millisecond)

	_, err := store.Load(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
