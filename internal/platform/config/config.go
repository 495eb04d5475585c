// Package config loads deployment configuration from the environment so main
// stays lean. A .env file is honored when present; real environment variables
// win over it.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full process configuration.
type Config struct {
	Server   ServerConfig
	Identity IdentityConfig
	API      APIConfig
	Redis    RedisConfig
	Session  SessionConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr string `envconfig:"GRIDVIEW_ADDR" default:":8080"`
}

// IdentityConfig points the identity client at the external provider.
type IdentityConfig struct {
	BaseURL string `envconfig:"IDENTITY_BASE_URL" required:"true"`
	APIKey  string `envconfig:"IDENTITY_API_KEY"`

	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GithubClientID     string `envconfig:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `envconfig:"GITHUB_CLIENT_SECRET"`

	// OAuthRedirectURL is the externally reachable /oauth/callback address
	// handed to federated providers.
	OAuthRedirectURL string `envconfig:"OAUTH_REDIRECT_URL" default:"http://localhost:8080/oauth/callback"`
}

// APIConfig points the API client at the remote energy backend.
type APIConfig struct {
	BaseURL string `envconfig:"ENERGY_API_BASE_URL" required:"true"`
}

// RedisConfig configures the durable session record store. Leaving URL empty
// disables Redis; durable sessions then degrade to the in-process store.
type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"4"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// SessionConfig tunes session record retention.
type SessionConfig struct {
	// ScopedTTL bounds session-scoped ("remember me" off) records.
	ScopedTTL time.Duration `envconfig:"SESSION_SCOPED_TTL" default:"12h"`
	// DurableTTL bounds durable records; the identity provider still decides
	// whether the refresh token inside is usable.
	DurableTTL time.Duration `envconfig:"SESSION_DURABLE_TTL" default:"720h"`
}

// Load reads configuration from the environment, after merging in a local
// .env file when one exists.
func Load() (Config, error) {
	// Missing .env is the normal production case, not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}
