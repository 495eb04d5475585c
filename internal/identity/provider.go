package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProviderClient is the thin REST wrapper over the external identity
// service. It translates provider error payloads into AuthError and nothing
// else; session semantics live in Client.
type ProviderClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	tracer  trace.Tracer
}

// NewProviderClient builds a provider client for the given base URL. An
// empty apiKey is allowed for providers that authenticate the app another
// way.
func NewProviderClient(baseURL, apiKey string) *ProviderClient {
	return &ProviderClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    http.DefaultClient,
		tracer:  otel.Tracer("gridview/identity"),
	}
}

// tokenBundle is the provider's response to any successful credential
// exchange: a short-lived ID token plus the refresh token that can mint
// more of them.
type tokenBundle struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
}

type providerErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithPassword performs the email/password exchange.
func (p *ProviderClient) SignInWithPassword(ctx context.Context, email, password string) (*tokenBundle, error) {
	return p.exchange(ctx, "accounts:signInWithPassword", map[string]any{
		"email":               email,
		"password":            password,
		"return_secure_token": true,
	})
}

// SignUp provisions a new password-based principal.
func (p *ProviderClient) SignUp(ctx context.Context, email, password string) (*tokenBundle, error) {
	return p.exchange(ctx, "accounts:signUp", map[string]any{
		"email":               email,
		"password":            password,
		"return_secure_token": true,
	})
}

// SignInWithIDP completes a federated exchange with the access token handed
// back by the federated provider.
func (p *ProviderClient) SignInWithIDP(ctx context.Context, provider, accessToken string) (*tokenBundle, error) {
	return p.exchange(ctx, "accounts:signInWithIdp", map[string]any{
		"provider_id":  provider,
		"access_token": accessToken,
	})
}

// UpdateProfile applies a display-name change to the principal owning
// idToken.
func (p *ProviderClient) UpdateProfile(ctx context.Context, idToken, displayName string) error {
	_, err := p.exchange(ctx, "accounts:update", map[string]any{
		"id_token":     idToken,
		"display_name": displayName,
	})
	return err
}

// Refresh trades a refresh token for a fresh ID token. Called once per
// authenticated request; the provider owns freshness and rotation.
func (p *ProviderClient) Refresh(ctx context.Context, refreshToken string) (*tokenBundle, error) {
	return p.exchange(ctx, "token", map[string]any{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
}

func (p *ProviderClient) exchange(ctx context.Context, endpoint string, payload map[string]any) (*tokenBundle, error) {
	ctx, span := p.tracer.Start(ctx, "identity.exchange",
		trace.WithAttributes(attribute.String("identity.endpoint", endpoint)))
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", endpoint, err)
	}

	url := fmt.Sprintf("%s/v1/%s", p.baseURL, endpoint)
	if p.apiKey != "" {
		url += "?key=" + p.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, newAuthError("auth/network-request-failed", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody providerErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil || errBody.Error.Code == "" {
			return nil, newAuthError("auth/unknown", fmt.Sprintf("provider returned status %d", resp.StatusCode))
		}
		return nil, newAuthError(errBody.Error.Code, errBody.Error.Message)
	}

	var bundle tokenBundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return &bundle, nil
}
