// Package identity wraps the external identity provider: credential
// exchanges, federated redirects, session restoration, and fresh bearer
// tokens. It is the single writer of the process session; everything else
// observes it through Subscribe.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gridview/internal/identity/metrics"
	"gridview/pkg/platform/sentinel"
)

// providerAPI is the slice of ProviderClient the session logic needs,
// extracted so tests can run against an in-memory provider.
type providerAPI interface {
	SignInWithPassword(ctx context.Context, email, password string) (*tokenBundle, error)
	SignUp(ctx context.Context, email, password string) (*tokenBundle, error)
	SignInWithIDP(ctx context.Context, provider, accessToken string) (*tokenBundle, error)
	UpdateProfile(ctx context.Context, idToken, displayName string) error
	Refresh(ctx context.Context, refreshToken string) (*tokenBundle, error)
}

// pendingExchange tracks an in-flight federated redirect between SignIn and
// CompleteFederated. The persistence choice is committed here, before the
// exchange, so the eventual session honors it.
type pendingExchange struct {
	provider    string
	persistence Persistence
	startedAt   time.Time
}

// Client owns the process session lifecycle. One instance per process.
type Client struct {
	provider  providerAPI
	federated map[string]FederatedProvider
	scoped    RecordStore
	durable   RecordStore
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu           sync.Mutex
	current      *Principal
	refreshToken string
	persistence  Persistence
	resolved     bool
	pending      map[string]pendingExchange
	listeners    map[int]func(*Principal)
	nextListener int
}

// NewClient wires the identity client. durable may equal scoped when no
// durable backend is configured; "remember me" then degrades to the process
// lifetime, which is the safest available behavior.
func NewClient(provider providerAPI, federated []FederatedProvider, scoped, durable RecordStore, logger *slog.Logger, m *metrics.Metrics) *Client {
	fed := make(map[string]FederatedProvider, len(federated))
	for _, f := range federated {
		fed[f.Name()] = f
	}
	return &Client{
		provider:  provider,
		federated: fed,
		scoped:    scoped,
		durable:   durable,
		logger:    logger,
		metrics:   m,
		pending:   make(map[string]pendingExchange),
		listeners: make(map[int]func(*Principal)),
	}
}

// Start restores any persisted session and resolves the initial state.
// Subscribers registered before Start receive their one initial
// notification when it completes; later subscribers receive it immediately.
// Start never fails: a broken restore resolves to signed-out.
func (c *Client) Start(ctx context.Context) {
	rec, store, err := c.loadRecord(ctx)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			c.logger.Warn("session restore failed", "error", err)
		}
		c.resolve(nil, "", PersistenceSession)
		c.metrics.ObserveRestore(false)
		return
	}

	bundle, err := c.provider.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		c.logger.Info("persisted session no longer valid, discarding", "error", err)
		if err := store.Delete(ctx); err != nil {
			c.logger.Warn("failed to discard stale session record", "error", err)
		}
		c.resolve(nil, "", PersistenceSession)
		c.metrics.ObserveRestore(false)
		return
	}

	principal := principalFromBundle(bundle, rec.Principal.Provider)
	if principal.DisplayName == "" {
		principal.DisplayName = rec.Principal.DisplayName
	}
	c.saveRecord(ctx, store, SessionRecord{
		RefreshToken: bundle.RefreshToken,
		Principal:    *principal,
		Persistence:  rec.Persistence,
		CreatedAt:    rec.CreatedAt,
	})
	c.resolve(principal, bundle.RefreshToken, rec.Persistence)
	c.metrics.ObserveRestore(true)
	c.logger.Info("session restored", "user_id", principal.ID, "persistence", rec.Persistence.String())
}

// Subscribe registers a state-change listener. The listener is invoked
// exactly once with the current principal (nil while signed out) as soon as
// the initial state is resolved, and again on every subsequent sign-in or
// sign-out. The returned function releases the subscription.
func (c *Client) Subscribe(onChange func(*Principal)) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = onChange
	deliverNow := c.resolved
	current := c.current
	c.mu.Unlock()

	if deliverNow {
		onChange(current)
	}

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// SignIn authenticates with email/password, or starts a federated exchange
// when identifier is a provider sentinel. The persistence choice is
// committed before any exchange takes place.
func (c *Client) SignIn(ctx context.Context, identifier, secret string, persistence Persistence) (*Outcome, error) {
	if IsFederated(identifier) {
		return c.beginFederated(identifier, persistence)
	}

	bundle, err := c.provider.SignInWithPassword(ctx, identifier, secret)
	c.metrics.ObserveSignIn(ProviderPassword, err)
	if err != nil {
		return nil, err
	}

	principal := principalFromBundle(bundle, ProviderPassword)
	c.establish(ctx, principal, bundle.RefreshToken, persistence)
	return &Outcome{Principal: principal}, nil
}

// SignUp provisions a new password principal, applying displayName as a
// profile update after creation when supplied. Federated identifiers behave
// exactly like SignIn: the provider owns account creation there.
func (c *Client) SignUp(ctx context.Context, identifier, secret, displayName string, persistence Persistence) (*Outcome, error) {
	if IsFederated(identifier) {
		return c.beginFederated(identifier, persistence)
	}

	bundle, err := c.provider.SignUp(ctx, identifier, secret)
	c.metrics.ObserveSignIn(ProviderPassword, err)
	if err != nil {
		return nil, err
	}

	principal := principalFromBundle(bundle, ProviderPassword)
	if displayName != "" {
		if err := c.provider.UpdateProfile(ctx, bundle.IDToken, displayName); err != nil {
			// The account exists and is signed in; a failed rename is not
			// worth losing the session over.
			c.logger.Warn("profile update after sign-up failed", "error", err)
		} else {
			principal.DisplayName = displayName
		}
	}

	c.establish(ctx, principal, bundle.RefreshToken, persistence)
	return &Outcome{Principal: principal}, nil
}

// beginFederated commits the persistence choice and hands back the redirect
// URL for the provider's consent screen.
func (c *Client) beginFederated(providerName string, persistence Persistence) (*Outcome, error) {
	fed, ok := c.federated[providerName]
	if !ok {
		return nil, newAuthError("auth/operation-not-allowed", fmt.Sprintf("provider %q is not configured", providerName))
	}

	state := uuid.NewString()
	c.mu.Lock()
	c.pending[state] = pendingExchange{
		provider:    providerName,
		persistence: persistence,
		startedAt:   time.Now(),
	}
	c.mu.Unlock()

	return &Outcome{RedirectURL: fed.AuthURL(state)}, nil
}

// CompleteFederated finishes the redirect leg of a federated exchange.
// oauthErr carries the provider's error query parameter; a non-empty value
// means the user abandoned the consent screen.
func (c *Client) CompleteFederated(ctx context.Context, state, code, oauthErr string) (*Principal, error) {
	c.mu.Lock()
	pend, ok := c.pending[state]
	delete(c.pending, state)
	c.mu.Unlock()
	if !ok {
		return nil, newAuthError("auth/unknown", "no federated exchange in progress for this state")
	}

	if oauthErr != "" {
		err := newAuthError("auth/popup-closed-by-user", oauthErr)
		c.metrics.ObserveSignIn(pend.provider, err)
		return nil, err
	}

	fed := c.federated[pend.provider]
	accessToken, err := fed.ExchangeCode(ctx, code)
	if err != nil {
		c.metrics.ObserveSignIn(pend.provider, err)
		return nil, err
	}

	bundle, err := c.provider.SignInWithIDP(ctx, pend.provider, accessToken)
	c.metrics.ObserveSignIn(pend.provider, err)
	if err != nil {
		return nil, err
	}

	principal := principalFromBundle(bundle, pend.provider)
	c.establish(ctx, principal, bundle.RefreshToken, pend.persistence)
	return principal, nil
}

// SignOut terminates the current session. It is idempotent and best-effort:
// record cleanup failures are logged, and the principal is always detached.
func (c *Client) SignOut(ctx context.Context) {
	if err := c.scoped.Delete(ctx); err != nil {
		c.logger.Warn("failed to delete scoped session record", "error", err)
	}
	if c.durable != c.scoped {
		if err := c.durable.Delete(ctx); err != nil {
			c.logger.Warn("failed to delete durable session record", "error", err)
		}
	}

	c.mu.Lock()
	wasSignedIn := c.current != nil
	c.current = nil
	c.refreshToken = ""
	c.mu.Unlock()

	if wasSignedIn {
		c.notify(nil)
		c.logger.Info("signed out")
	}
}

// CurrentToken fetches a fresh bearer token for the current principal. The
// token is never cached here; the provider owns freshness and rotation.
// Returns sentinel.ErrUnauthenticated when no principal is attached.
func (c *Client) CurrentToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	refreshToken := c.refreshToken
	signedIn := c.current != nil
	persistence := c.persistence
	c.mu.Unlock()

	if !signedIn {
		return "", sentinel.ErrUnauthenticated
	}

	bundle, err := c.provider.Refresh(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("fetch fresh token: %w", err)
	}
	c.metrics.IncrementTokenFetches()

	// The provider may rotate the refresh token on every exchange.
	if bundle.RefreshToken != "" && bundle.RefreshToken != refreshToken {
		c.mu.Lock()
		stillSignedIn := c.current != nil
		var principal Principal
		if stillSignedIn {
			c.refreshToken = bundle.RefreshToken
			principal = *c.current
		}
		c.mu.Unlock()
		if stillSignedIn {
			c.saveRecord(ctx, c.storeFor(persistence), SessionRecord{
				RefreshToken: bundle.RefreshToken,
				Principal:    principal,
				Persistence:  persistence,
				CreatedAt:    time.Now(),
			})
		}
	}

	return bundle.IDToken, nil
}

// establish installs a freshly exchanged session and notifies subscribers.
func (c *Client) establish(ctx context.Context, principal *Principal, refreshToken string, persistence Persistence) {
	store := c.storeFor(persistence)
	other := c.scoped
	if store == c.scoped {
		other = c.durable
	}
	if other != store {
		if err := other.Delete(ctx); err != nil {
			c.logger.Warn("failed to clear previous session record", "error", err)
		}
	}
	c.saveRecord(ctx, store, SessionRecord{
		RefreshToken: refreshToken,
		Principal:    *principal,
		Persistence:  persistence,
		CreatedAt:    time.Now(),
	})

	c.mu.Lock()
	c.current = principal
	c.refreshToken = refreshToken
	c.persistence = persistence
	c.mu.Unlock()

	c.notify(principal)
	c.logger.Info("signed in",
		"user_id", principal.ID,
		"provider", principal.Provider,
		"persistence", persistence.String(),
	)
}

func (c *Client) storeFor(p Persistence) RecordStore {
	if p == PersistenceDurable {
		return c.durable
	}
	return c.scoped
}

func (c *Client) saveRecord(ctx context.Context, store RecordStore, rec SessionRecord) {
	if err := store.Save(ctx, rec); err != nil {
		// Losing the record only costs restore-at-restart, not the live
		// session.
		c.logger.Warn("failed to persist session record", "error", err)
	}
}

// resolve installs the initial state and delivers the one-per-subscription
// initial notification.
func (c *Client) resolve(principal *Principal, refreshToken string, persistence Persistence) {
	c.mu.Lock()
	c.current = principal
	c.refreshToken = refreshToken
	c.persistence = persistence
	c.resolved = true
	c.mu.Unlock()

	c.notify(principal)
}

// notify delivers a state change to all listeners outside the lock, so a
// listener may subscribe or unsubscribe reentrantly.
func (c *Client) notify(principal *Principal) {
	c.mu.Lock()
	fns := make([]func(*Principal), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(principal)
	}
}

// loadRecord checks the durable store first, then the scoped store.
func (c *Client) loadRecord(ctx context.Context) (SessionRecord, RecordStore, error) {
	rec, err := c.durable.Load(ctx)
	if err == nil {
		return rec, c.durable, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return SessionRecord{}, nil, err
	}
	if c.scoped == c.durable {
		return SessionRecord{}, nil, err
	}
	rec, err = c.scoped.Load(ctx)
	if err != nil {
		return SessionRecord{}, nil, err
	}
	return rec, c.scoped, nil
}

// principalFromBundle builds a Principal from the exchange response,
// filling gaps from the ID token claims. The token is provider-signed; we
// read claims without verifying because the provider just issued it to us
// over TLS.
func principalFromBundle(bundle *tokenBundle, provider string) *Principal {
	p := &Principal{
		ID:          bundle.UserID,
		Email:       bundle.Email,
		DisplayName: bundle.DisplayName,
		Provider:    provider,
	}

	if p.ID != "" && p.Email != "" && p.DisplayName != "" {
		return p
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(bundle.IDToken, claims); err != nil {
		return p
	}
	if p.ID == "" {
		if sub, ok := claims["sub"].(string); ok {
			p.ID = sub
		}
	}
	if p.Email == "" {
		if email, ok := claims["email"].(string); ok {
			p.Email = email
		}
	}
	if p.DisplayName == "" {
		if name, ok := claims["name"].(string); ok {
			p.DisplayName = name
		}
	}
	return p
}
