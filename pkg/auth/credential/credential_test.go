package credential

import (
	"context"
	"errors"
	"slices"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/directory"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	dir, err := directory.Parse("test", []byte(`
admin=secret,ROLE_ADMIN
viewer=viewpass,ROLE_USER
locked=lockedpass,ROLE_ADMIN,disabled
`))
	if err != nil {
		t.Fatal(err)
	}
	return New(dir, nil)
}

func login(username, secret string) auth.Credentials {
	return auth.Credentials{Kind: auth.UsernamePassword, Username: username, Secret: secret}
}

func TestValidCredentials(t *testing.T) {
	p := newTestProvider(t)

	res := p.Authenticate(context.Background(), login("admin", "secret"))

	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if res.Principal.Username != "admin" {
		t.Errorf("Username = %q, want admin", res.Principal.Username)
	}
	if !slices.Equal(res.Principal.Authorities, []string{"ROLE_ADMIN"}) {
		t.Errorf("Authorities = %v", res.Principal.Authorities)
	}
}

func TestRejectedCredentialsIndistinguishable(t *testing.T) {
	p := newTestProvider(t)

	tests := []struct {
		name     string
		username string
		secret   string
	}{
		{"wrong secret", "admin", "wrong"},
		{"unknown user", "mallory", "secret"},
		{"disabled user", "locked", "lockedpass"},
		{"empty secret", "admin", ""},
		{"other user's secret", "admin", "viewpass"},
	}

	var first error
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Authenticate(context.Background(), login(tt.username, tt.secret))
			if res.OK() {
				t.Fatal("expected failure")
			}
			if !errors.Is(res.Err, auth.ErrInvalidCredentials) {
				t.Errorf("err = %v, want ErrInvalidCredentials", res.Err)
			}
			if first == nil {
				first = res.Err
			} else if res.Err != first {
				t.Errorf("failure %v differs from %v", res.Err, first)
			}
		})
	}
}

// countingMatcher records how many comparisons were made.
type countingMatcher struct{ n int }

func (m *countingMatcher) Matches(presented, stored string) bool {
	m.n++
	return presented == stored
}

func TestUnknownUserStillCompares(t *testing.T) {
	dir, _ := directory.New("test", nil)
	m := &countingMatcher{}
	p := New(dir, m)

	p.Authenticate(context.Background(), login("ghost", "secret"))

	if m.n != 1 {
		t.Errorf("comparisons = %d, want 1", m.n)
	}
}

func TestSupports(t *testing.T) {
	p := newTestProvider(t)
	if !p.Supports(auth.UsernamePassword) {
		t.Error("should support form login")
	}
	if p.Supports(auth.RememberMe) {
		t.Error("should not support remember-me")
	}
}

// recordingMatcher remembers every stored secret it was asked to compare.
type recordingMatcher struct {
	stored []string
}

func (m *recordingMatcher) Matches(presented, stored string) bool {
	m.stored = append(m.stored, stored)
	return auth.DelegatingMatcher{}.Matches(presented, stored)
}

func TestUnknownUserPaysBcryptComparison(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	dir, err := directory.New("test", []directory.User{
		{Username: "admin", Secret: string(hash), Authorities: []string{"ROLE_ADMIN"}, Enabled: true},
		{Username: "locked", Secret: string(hash), Enabled: false},
	})
	if err != nil {
		t.Fatal(err)
	}
	m := &recordingMatcher{}
	p := New(dir, m)

	for _, username := range []string{"admin", "nobody", "locked"} {
		m.stored = nil
		res := p.Authenticate(context.Background(), login(username, "wrong"))
		if res.OK() {
			t.Fatalf("%s: expected failure", username)
		}
		if len(m.stored) != 1 {
			t.Fatalf("%s: %d comparisons, want 1", username, len(m.stored))
		}
		cost, err := bcrypt.Cost([]byte(m.stored[0]))
		if err != nil {
			t.Errorf("%s: compared against a non-bcrypt secret %q", username, m.stored[0])
			continue
		}
		if cost != bcrypt.MinCost {
			t.Errorf("%s: bcrypt cost = %d, want %d", username, cost, bcrypt.MinCost)
		}
	}
}

func TestUnknownUserPlainDirectory(t *testing.T) {
	dir, err := directory.Parse("test", []byte("admin=secret,ROLE_ADMIN\n"))
	if err != nil {
		t.Fatal(err)
	}
	m := &recordingMatcher{}
	p := New(dir, m)

	p.Authenticate(context.Background(), login("nobody", "secret"))
	if len(m.stored) != 1 {
		t.Fatalf("%d comparisons, want 1", len(m.stored))
	}
	if _, err := bcrypt.Cost([]byte(m.stored[0])); err == nil {
		t.Error("plain directory should not pay for a bcrypt dummy")
	}
}
