package rememberme

import (
	"context"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/directory"
)

// Provider authenticates RememberMe credentials by validating the token and
// re-reading the user from the directory.
type Provider struct {
	tokens *Service
	dir    *directory.Directory
}

// Ensure Provider implements auth.Provider at compile time.
var _ auth.Provider = (*Provider)(nil)

// NewProvider creates a remember-me provider.
func NewProvider(tokens *Service, dir *directory.Directory) *Provider {
	return &Provider{tokens: tokens, dir: dir}
}

// Supports implements auth.Provider.
func (p *Provider) Supports(kind auth.CredentialKind) bool {
	return kind == auth.RememberMe
}

// Authenticate implements auth.Provider. Authorities come from the
// directory, never from the token.
func (p *Provider) Authenticate(_ context.Context, creds auth.Credentials) auth.Result {
	username, err := p.tokens.Validate(creds.Token)
	if err != nil {
		return auth.Failure(err)
	}

	user, ok := p.dir.Lookup(username)
	if !ok {
		return auth.Failure(auth.ErrUnknownPrincipal)
	}
	if !user.Enabled {
		return auth.Failure(auth.ErrInvalidCredentials)
	}

	return auth.Success(&auth.Principal{
		Username:    user.Username,
		Authorities: user.Authorities,
	})
}
