package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// FederatedProvider abstracts one OAuth 2.0 provider behind the redirect
// exchange: build the authorize URL, then trade the returned code for an
// access token the identity service can verify.
type FederatedProvider interface {
	Name() string
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (accessToken string, err error)
}

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	githubAuthURL  = "https://github.com/login/oauth/authorize"
	githubTokenURL = "https://github.com/login/oauth/access_token"
)

// GoogleProvider implements the Google OAuth 2.0 exchange.
type GoogleProvider struct {
	clientID     string
	clientSecret string
	redirectURL  string

	// Overridable for tests.
	authURL  string
	tokenURL string
	http     *http.Client
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		authURL:      googleAuthURL,
		tokenURL:     googleTokenURL,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *GoogleProvider) Name() string { return ProviderGoogle }

func (p *GoogleProvider) AuthURL(state string) string {
	params := url.Values{
		"client_id":     {p.clientID},
		"redirect_uri":  {p.redirectURL},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	return p.authURL + "?" + params.Encode()
}

func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	return exchangeOAuthCode(ctx, p.http, p.tokenURL, url.Values{
		"code":          {code},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
		"redirect_uri":  {p.redirectURL},
		"grant_type":    {"authorization_code"},
	})
}

// GithubProvider implements the GitHub OAuth 2.0 exchange. GitHub has no ID
// tokens; the access token alone goes to the identity service.
type GithubProvider struct {
	clientID     string
	clientSecret string
	redirectURL  string

	authURL  string
	tokenURL string
	http     *http.Client
}

func NewGithubProvider(clientID, clientSecret, redirectURL string) *GithubProvider {
	return &GithubProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		authURL:      githubAuthURL,
		tokenURL:     githubTokenURL,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *GithubProvider) Name() string { return ProviderGithub }

func (p *GithubProvider) AuthURL(state string) string {
	params := url.Values{
		"client_id":    {p.clientID},
		"redirect_uri": {p.redirectURL},
		"scope":        {"user:email read:user"},
		"state":        {state},
	}
	return p.authURL + "?" + params.Encode()
}

func (p *GithubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	return exchangeOAuthCode(ctx, p.http, p.tokenURL, url.Values{
		"code":          {code},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
		"redirect_uri":  {p.redirectURL},
	})
}

type oauthTokenResponse struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
	ErrorDesc   string `json:"error_description"`
}

func exchangeOAuthCode(ctx context.Context, client *http.Client, tokenURL string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", newAuthError("auth/network-request-failed", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", newAuthError("auth/unknown", fmt.Sprintf("token exchange returned status %d", resp.StatusCode))
	}

	var tr oauthTokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if tr.Error != "" {
		return "", newAuthError("auth/unknown", fmt.Sprintf("%s: %s", tr.Error, tr.ErrorDesc))
	}
	if tr.AccessToken == "" {
		return "", newAuthError("auth/unknown", "empty access token in response")
	}
	return tr.AccessToken, nil
}

var (
	_ FederatedProvider = (*GoogleProvider)(nil)
	_ FederatedProvider = (*GithubProvider)(nil)
)
