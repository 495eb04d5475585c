// Package session exposes the process-wide session as read-only derived
// state. The identity client's subscription callback is the only writer;
// the guard and the views are readers.
package session

import (
	"sync"

	"gridview/internal/identity"
)

// Session is the observable authentication state. Loading is true only
// during the initial restore window after process start and becomes
// permanently false once the first identity notification arrives.
type Session struct {
	User    *identity.Principal
	Loading bool
}

// Subscriber is the part of the identity client the store consumes.
type Subscriber interface {
	Subscribe(onChange func(*identity.Principal)) func()
}

// Store holds the current Session, kept in sync by the identity
// subscription. Construct with New, release with Close on every exit path.
type Store struct {
	mu          sync.RWMutex
	current     Session
	unsubscribe func()
}

// New subscribes to the identity client. The session starts in the loading
// state and leaves it on the first notification.
func New(source Subscriber) *Store {
	s := &Store{
		current: Session{Loading: true},
	}
	s.unsubscribe = source.Subscribe(func(user *identity.Principal) {
		s.mu.Lock()
		s.current = Session{User: user, Loading: false}
		s.mu.Unlock()
	})
	return s
}

// Snapshot returns a copy of the current session. The principal pointer is
// shared but read-only by convention: nothing in this process mutates a
// Principal after the provider hands it over.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SignedIn reports whether a principal is attached right now.
func (s *Store) SignedIn() bool {
	snap := s.Snapshot()
	return !snap.Loading && snap.User != nil
}

// Close releases the identity subscription. Safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
