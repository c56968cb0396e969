package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/rhuss/adminguard/pkg/debug"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	// Username is the unique directory name (required, non-empty).
	Username string

	// Authorities lists the granted authority strings, e.g. "ROLE_ADMIN".
	Authorities []string
}

// HasAuthority reports whether the principal holds exactly the given authority.
func (p *Principal) HasAuthority(authority string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Authorities, authority)
}

// CredentialKind identifies the shape of presented credentials so that
// providers can declare what they are able to handle.
type CredentialKind int

const (
	// UsernamePassword is a form login submission.
	UsernamePassword CredentialKind = iota

	// RememberMe is a persistent login token presented in a cookie.
	RememberMe
)

// String returns the metric/log label for the kind.
func (k CredentialKind) String() string {
	switch k {
	case UsernamePassword:
		return "form"
	case RememberMe:
		return "remember_me"
	default:
		return "unknown"
	}
}

// Credentials is what a request presents for authentication.
// Username and Secret are used for UsernamePassword, Token for RememberMe.
type Credentials struct {
	Kind     CredentialKind
	Username string
	Secret   string
	Token    string
}

// Result carries the outcome of an authentication attempt: either a
// Principal (success) or an error describing the failure reason.
type Result struct {
	Principal *Principal
	Err       error
}

// Success builds a successful result.
func Success(p *Principal) Result {
	return Result{Principal: p}
}

// Failure builds a failed result.
func Failure(reason error) Result {
	return Result{Err: reason}
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Err == nil && r.Principal != nil
}

// Provider authenticates one kind of credentials.
type Provider interface {
	// Supports reports whether the provider can handle the credential kind.
	// Providers that return false are skipped by the Manager.
	Supports(kind CredentialKind) bool

	// Authenticate verifies the credentials.
	Authenticate(ctx context.Context, creds Credentials) Result
}

// Manager tries providers in registration order and returns the first
// success. Order is significant.
type Manager struct {
	providers []Provider
}

// NewManager creates a Manager over the given providers, in order.
func NewManager(providers ...Provider) *Manager {
	ps := make([]Provider, len(providers))
	copy(ps, providers)
	return &Manager{providers: ps}
}

// Authenticate runs the providers able to handle creds.Kind. Individual
// failures are absorbed and the next provider is tried. When every
// applicable provider fails (or none applies), the returned failure is an
// *AuthenticationError carrying the last reason seen.
func (m *Manager) Authenticate(ctx context.Context, creds Credentials) Result {
	var last error
	for _, p := range m.providers {
		if !p.Supports(creds.Kind) {
			continue
		}
		res := p.Authenticate(ctx, creds)
		if res.OK() {
			debug.Log("auth", "authentication succeeded",
				"kind", creds.Kind.String(),
				"username", res.Principal.Username,
			)
			return res
		}
		last = res.Err
		if last == nil {
			last = ErrInvalidCredentials
		}
	}

	if last == nil {
		last = ErrNoProvider
	}

	slog.Debug("authentication failed", "kind", creds.Kind.String(), "reason", last)
	return Failure(&AuthenticationError{Reason: last})
}

// IsAuthenticationFailure reports whether err belongs to the authentication
// failure class (as opposed to authorization or fatal errors).
func IsAuthenticationFailure(err error) bool {
	return errors.Is(err, ErrAuthenticationRequired) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrUnknownPrincipal) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrTamperedToken)
}
