// Package rememberme issues and validates signed persistent-login tokens
// and provides the auth.Provider that turns a valid token back into a
// principal.
//
// A token is a compact HS256 JWT whose claims carry the username (sub) and
// the expiry (exp). The signature is an HMAC-SHA256 over those claims keyed
// with the configured secret, so any change to the username, the expiry or
// the signature itself invalidates the token.
package rememberme

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/debug"
)

// MinKeyLength is the minimum accepted signing secret length in bytes.
const MinKeyLength = 16

// DefaultValidity is two weeks, the usual remember-me window.
const DefaultValidity = 14 * 24 * time.Hour

// ErrWeakKey is returned by NewService for a missing or short secret.
var ErrWeakKey = fmt.Errorf("remember-me key must be at least %d bytes", MinKeyLength)

// Config holds the token service settings.
type Config struct {
	// Key is the shared signing secret. Required, at least MinKeyLength bytes.
	Key []byte

	// Validity is how long an issued token stays valid. Default: DefaultValidity.
	Validity time.Duration

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// Token is an issued remember-me token.
type Token struct {
	Username string
	Expiry   time.Time

	// Signature is the base64url HMAC segment of Value.
	Signature string

	// Value is the complete encoded token placed in the cookie.
	Value string
}

// Service issues and validates tokens. The key is read-only after
// construction; a Service is safe for concurrent use.
type Service struct {
	key      []byte
	validity time.Duration
	now      func() time.Time
	parser   *jwtlib.Parser
}

// NewService creates a token service.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Key) < MinKeyLength {
		return nil, ErrWeakKey
	}
	if cfg.Validity <= 0 {
		cfg.Validity = DefaultValidity
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	key := make([]byte, len(cfg.Key))
	copy(key, cfg.Key)

	s := &Service{
		key:      key,
		validity: cfg.Validity,
		now:      cfg.Now,
	}
	s.parser = jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithStrictDecoding(),
		jwtlib.WithTimeFunc(s.now),
	)
	return s, nil
}

// Validity returns the configured validity window.
func (s *Service) Validity() time.Duration {
	return s.validity
}

// Issue creates a token for username expiring one validity window from now.
// The expiry has one-second precision.
func (s *Service) Issue(username string) (Token, error) {
	if username == "" {
		return Token{}, errors.New("remember-me token requires a username")
	}

	now := s.now()
	expiry := now.Add(s.validity).Truncate(time.Second)

	claims := jwtlib.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(expiry),
	}
	value, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return Token{}, fmt.Errorf("signing remember-me token: %w", err)
	}

	debug.Log("rememberme", "token issued", "username", username, "expiry", expiry)

	return Token{
		Username:  username,
		Expiry:    expiry,
		Signature: value[strings.LastIndex(value, ".")+1:],
		Value:     value,
	}, nil
}

// Validate checks an encoded token and returns the username it was issued
// for. A token that is malformed or whose signature does not match its
// claims fails with auth.ErrTamperedToken; a correctly signed token at or
// past its expiry fails with auth.ErrExpiredToken.
func (s *Service) Validate(value string) (string, error) {
	tok, err := s.Parse(value)
	if err != nil {
		return "", err
	}
	return tok.Username, nil
}

// Parse is Validate returning the decoded token.
func (s *Service) Parse(value string) (Token, error) {
	var claims jwtlib.RegisteredClaims
	_, err := s.parser.ParseWithClaims(value, &claims, func(*jwtlib.Token) (any, error) {
		return s.key, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwtlib.ErrTokenExpired):
		// The signature was verified before claims were validated.
		return Token{}, auth.ErrExpiredToken
	default:
		debug.Log("rememberme", "token rejected", "error", err)
		return Token{}, auth.ErrTamperedToken
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Token{}, auth.ErrTamperedToken
	}

	return Token{
		Username:  claims.Subject,
		Expiry:    claims.ExpiresAt.Time,
		Signature: value[strings.LastIndex(value, ".")+1:],
		Value:     value,
	}, nil
}
