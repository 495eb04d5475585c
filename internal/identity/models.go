package identity

import "time"

// Federated provider sentinels. A sign-in identifier equal to one of these
// selects the federated exchange instead of the password exchange.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
	ProviderGithub   = "github"
)

// IsFederated reports whether identifier names a federated provider rather
// than an email address.
func IsFederated(identifier string) bool {
	return identifier == ProviderGoogle || identifier == ProviderGithub
}

// Principal is the authenticated identity reported by the provider. The
// application holds a read-only reference and never mutates it; profile
// changes go through the provider.
type Principal struct {
	ID          string
	Email       string
	DisplayName string
	Provider    string
}

// Persistence is the caller's "remember me" choice, committed immediately
// before a credential exchange so the resulting session record lands in the
// matching store.
type Persistence int

const (
	// PersistenceSession keeps the session only for this process lifetime.
	PersistenceSession Persistence = iota
	// PersistenceDurable keeps the session across process restarts.
	PersistenceDurable
)

func (p Persistence) String() string {
	if p == PersistenceDurable {
		return "durable"
	}
	return "session"
}

// SessionRecord is what a store keeps so a session can be restored at the
// next process start. The refresh token inside stays owned by the identity
// provider; we only replay it.
type SessionRecord struct {
	RefreshToken string      `json:"refresh_token"`
	Principal    Principal   `json:"principal"`
	Persistence  Persistence `json:"persistence"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Outcome is the result of a sign-in or sign-up call. Exactly one field is
// set: Principal for completed password exchanges, RedirectURL when the
// caller must send the browser through a federated exchange that finishes at
// CompleteFederated.
type Outcome struct {
	Principal   *Principal
	RedirectURL string
}
