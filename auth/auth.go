package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/bg/auth/apikey"
	"github.com/kbukum/bg/auth/jwt"
)

// ScopeLaunch is the scope a token needs to call the launch endpoint.
const ScopeLaunch = "launch"

// Claims is the token body issued by `bg token` and accepted by the server.
type Claims struct {
	gojwt.RegisteredClaims
	Scopes []string `json:"scopes,omitempty"`
}

// SetDefaults fills the registered claims before signing.
func (c *Claims) SetDefaults(now time.Time, ttl time.Duration, issuer string, audience []string) {
	if c.Issuer == "" {
		c.Issuer = issuer
	}
	if len(c.Audience) == 0 && len(audience) > 0 {
		c.Audience = audience
	}
	if c.IssuedAt == nil {
		c.IssuedAt = gojwt.NewNumericDate(now)
	}
	if c.ExpiresAt == nil {
		c.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	}
}

// HasScope reports whether the token grants scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// TokenService issues and parses launch API tokens.
type TokenService = jwt.Service[*Claims]

// NewTokenService creates a TokenService from cfg.
func NewTokenService(cfg *jwt.Config) (*TokenService, error) {
	return jwt.NewService(cfg, func() *Claims { return &Claims{} })
}

// Config is the auth section of the server config. At least one of the
// JWT secret or the API key hash must be set unless Disabled is.
type Config struct {
	// Disabled turns authentication off. Only allowed on loopback hosts.
	Disabled bool `yaml:"disabled" mapstructure:"disabled"`
	// JWT configures bearer tokens. Unused when JWT.Secret is empty.
	JWT jwt.Config `yaml:"jwt" mapstructure:"jwt"`
	// APIKeyHash is the bcrypt hash of the static key accepted in X-Api-Key.
	APIKeyHash string `yaml:"api_key_hash" mapstructure:"api_key_hash"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
}

// Validate checks the configuration against the host it protects.
func (c *Config) Validate(host string) error {
	if c.Disabled {
		if !IsLoopback(host) {
			return fmt.Errorf("auth.disabled is only allowed on a loopback host (got: %q)", host)
		}
		return nil
	}
	if c.JWT.Secret == "" && c.APIKeyHash == "" {
		return errors.New("auth requires auth.jwt.secret or auth.api_key_hash")
	}
	if c.JWT.Secret != "" {
		if err := c.JWT.Validate(); err != nil {
			return fmt.Errorf("auth.jwt: %w", err)
		}
	}
	return nil
}

// IsLoopback reports whether host only accepts local connections.
func IsLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Principal is the authenticated caller.
type Principal struct {
	Subject string
	Method  string
}

// Authentication methods recorded on a Principal.
const (
	MethodBearer    = "bearer"
	MethodAPIKey    = "api_key"
	MethodAnonymous = "anonymous"
)

// Errors returned by Authenticator.
var (
	ErrNoCredentials  = errors.New("auth: no credentials")
	ErrInvalidToken   = errors.New("auth: invalid token")
	ErrInvalidKey     = errors.New("auth: invalid api key")
	ErrMissingScope   = errors.New("auth: token lacks launch scope")
	ErrMethodDisabled = errors.New("auth: method not configured")
)

// Authenticator checks bearer tokens and API keys.
type Authenticator struct {
	disabled bool
	tokens   *TokenService
	keyHash  string
	hasher   *apikey.Hasher
}

// NewAuthenticator builds an Authenticator from a validated Config.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	a := &Authenticator{disabled: cfg.Disabled, keyHash: cfg.APIKeyHash, hasher: apikey.NewHasher()}
	if cfg.JWT.Secret != "" {
		tokens, err := NewTokenService(&cfg.JWT)
		if err != nil {
			return nil, err
		}
		a.tokens = tokens
	}
	return a, nil
}

// Disabled reports whether every request is let through.
func (a *Authenticator) Disabled() bool {
	return a.disabled
}

// Authenticate checks a bearer token, or else an API key. Empty values
// mean the credential was not presented.
func (a *Authenticator) Authenticate(bearer, key string) (*Principal, error) {
	switch {
	case a.disabled:
		return &Principal{Subject: "anonymous", Method: MethodAnonymous}, nil
	case bearer != "":
		return a.authenticateBearer(bearer)
	case key != "":
		return a.authenticateKey(key)
	default:
		return nil, ErrNoCredentials
	}
}

func (a *Authenticator) authenticateBearer(token string) (*Principal, error) {
	if a.tokens == nil {
		return nil, ErrMethodDisabled
	}
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.HasScope(ScopeLaunch) {
		return nil, ErrMissingScope
	}
	return &Principal{Subject: claims.Subject, Method: MethodBearer}, nil
}

func (a *Authenticator) authenticateKey(key string) (*Principal, error) {
	if a.keyHash == "" {
		return nil, ErrMethodDisabled
	}
	if err := a.hasher.Verify(key, a.keyHash); err != nil {
		return nil, ErrInvalidKey
	}
	return &Principal{Subject: "api-key", Method: MethodAPIKey}, nil
}

type principalKey struct{}

// WithPrincipal stores the authenticated caller in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
