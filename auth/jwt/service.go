// Package jwt issues and verifies HMAC-signed tokens for the launch API.
//
// The service is parameterized by a claims type T, which must implement
// jwt.Claims (typically by embedding jwt.RegisteredClaims). Claims types
// that implement SetDefaults get issuer, audience and time claims filled
// in by Issue.
//
//	svc, err := jwt.NewService(&cfg, func() *auth.Claims { return &auth.Claims{} })
//	token, err := svc.Issue(&auth.Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "ci"}})
//	claims, err := svc.Parse(token)
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Service provides JWT token generation and parsing for claims type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	newEmpty func() T
	now      func() time.Time
}

// NewService creates a new JWT service.
// The newEmpty function returns a zero-value instance of T for parsing.
func NewService[T gojwt.Claims](cfg *Config, newEmpty func() T) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	return &Service[T]{cfg: *cfg, newEmpty: newEmpty, now: time.Now}, nil
}

// TTL returns the lifetime applied by Issue.
func (s *Service[T]) TTL() time.Duration {
	return s.cfg.TTL
}

// Sign creates a signed JWT token from the given claims as-is.
func (s *Service[T]) Sign(claims T) (string, error) {
	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString(s.cfg.key())
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Issue fills the standard claims with the configured issuer, audience and
// TTL (when T supports it) and signs the token.
func (s *Service[T]) Issue(claims T) (string, error) {
	if setter, ok := any(claims).(interface {
		SetDefaults(time.Time, time.Duration, string, []string)
	}); ok {
		setter.SetDefaults(s.now(), s.cfg.TTL, s.cfg.Issuer, s.cfg.Audience)
	}
	return s.Sign(claims)
}

// Parse validates and parses a JWT token string into claims of type T.
// It verifies the signature, expiry, issuer and the first audience.
func (s *Service[T]) Parse(tokenString string) (T, error) {
	var zero T
	claims := s.newEmpty()
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		return zero, fmt.Errorf("jwt: parse token: %w", err)
	}
	if !token.Valid {
		return zero, errors.New("jwt: invalid token")
	}
	parsed, ok := token.Claims.(T)
	if !ok {
		return zero, errors.New("jwt: unexpected claims type")
	}
	return parsed, nil
}

// ValidatorFunc adapts Parse to the untyped validator used by middleware.
func (s *Service[T]) ValidatorFunc() func(string) (any, error) {
	return func(token string) (any, error) {
		return s.Parse(token)
	}
}

func (s *Service[T]) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.cfg.signingMethod().Alg() {
		return nil, fmt.Errorf("jwt: unexpected signing method: %s", token.Method.Alg())
	}
	return s.cfg.key(), nil
}

func (s *Service[T]) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, gojwt.WithAudience(s.cfg.Audience[0]))
	}
	return opts
}
