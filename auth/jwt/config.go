package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod defines supported JWT signing algorithms. Only HMAC
// methods are offered: the shared secret is loaded from config like any
// other value.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// minSecretLen is the shortest HMAC secret accepted.
const minSecretLen = 32

// Config configures the JWT token service.
type Config struct {
	// Secret is the HMAC signing key.
	Secret string `yaml:"secret" mapstructure:"secret"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `yaml:"method" mapstructure:"method"`

	// Issuer is the "iss" claim (default: bg).
	Issuer string `yaml:"issuer" mapstructure:"issuer"`

	// Audience is the "aud" claim (optional).
	Audience []string `yaml:"audience" mapstructure:"audience"`

	// TTL is the lifetime of issued tokens (default: 1h).
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.Issuer == "" {
		c.Issuer = "bg"
	}
	if c.TTL == 0 {
		c.TTL = time.Hour
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	switch c.Method {
	case HS256, HS384, HS512:
	default:
		return errors.New("unsupported signing method: " + string(c.Method))
	}
	if len(c.Secret) < minSecretLen {
		return fmt.Errorf("secret must be at least %d bytes", minSecretLen)
	}
	if c.TTL < 0 {
		return fmt.Errorf("ttl must not be negative (got: %s)", c.TTL)
	}
	return nil
}

// signingMethod returns the golang-jwt SigningMethod instance.
func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return gojwt.SigningMethodHS256
	}
}

// key returns the HMAC key used for signing and verification.
func (c *Config) key() []byte {
	return []byte(c.Secret)
}
