// Package credential provides the form-login provider that checks a
// username and secret against the user directory.
package credential

import (
	"context"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/directory"
)

// Provider authenticates UsernamePassword credentials.
type Provider struct {
	dir     *directory.Directory
	matcher auth.SecretMatcher

	// dummy is compared when the username is unknown or disabled so that
	// every rejected attempt costs one comparison of the same kind.
	dummy string
}

// Ensure Provider implements auth.Provider at compile time.
var _ auth.Provider = (*Provider)(nil)

// New creates a credential provider. A nil matcher selects
// auth.DelegatingMatcher.
func New(dir *directory.Directory, matcher auth.SecretMatcher) *Provider {
	if matcher == nil {
		matcher = auth.DelegatingMatcher{}
	}
	var secrets []string
	for _, name := range dir.Usernames() {
		if u, ok := dir.Lookup(name); ok {
			secrets = append(secrets, u.Secret)
		}
	}
	return &Provider{dir: dir, matcher: matcher, dummy: auth.DummySecret(secrets)}
}

// Supports implements auth.Provider.
func (p *Provider) Supports(kind auth.CredentialKind) bool {
	return kind == auth.UsernamePassword
}

// Authenticate returns ErrInvalidCredentials for unknown users, disabled
// users and wrong secrets alike.
func (p *Provider) Authenticate(_ context.Context, creds auth.Credentials) auth.Result {
	user, ok := p.dir.Lookup(creds.Username)
	if !ok || !user.Enabled {
		p.matcher.Matches(creds.Secret, p.dummy)
		return auth.Failure(auth.ErrInvalidCredentials)
	}

	if !p.matcher.Matches(creds.Secret, user.Secret) {
		return auth.Failure(auth.ErrInvalidCredentials)
	}

	return auth.Success(&auth.Principal{
		Username:    user.Username,
		Authorities: user.Authorities,
	})
}
