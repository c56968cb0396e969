package pipeline

import (
	"testing"
)

func TestAntMatcher(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/login", "/login", true},
		{"/login", "/login/", true},
		{"/login", "/login/authenticate", false},
		{"/login", "/LOGIN", false},
		{"/login", "/loginx", false},
		{"/images/**", "/images", true},
		{"/images/**", "/images/logo.png", true},
		{"/images/**", "/images/a/b/c.png", true},
		{"/images/**", "/imagesx/logo.png", false},
		{"/images/**", "/", false},
		{"/styles/*.css", "/styles/main.css", true},
		{"/styles/*.css", "/styles/sub/main.css", false},
		{"/a/**/z", "/a/z", true},
		{"/a/**/z", "/a/b/c/z", true},
		{"/a/**/z", "/a/b/c/y", false},
		{"/file?.txt", "/file1.txt", true},
		{"/file?.txt", "/file12.txt", false},
		{"/**", "/anything/at/all", true},
		{"/**", "/", true},
	}
	for _, tt := range tests {
		m := MustAntMatcher(tt.pattern)
		if got := m.Match(tt.path); got != tt.want {
			t.Errorf("%s.Match(%q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestNewAntMatcher_Invalid(t *testing.T) {
	for _, p := range []string{"login", "", "/a/b**", "/**x/y"} {
		if _, err := NewAntMatcher(p); err == nil {
			t.Errorf("NewAntMatcher(%q) should fail", p)
		}
	}
}

func chainNamed(name string, pattern string) Chain {
	var m Matcher = AnyMatcher{}
	if pattern != "" {
		m = MustAntMatcher(pattern)
	}
	return Chain{Name: name, Matcher: m}
}

func TestSelector_FirstMatchWins(t *testing.T) {
	protected := chainNamed("protected", "")
	sel := NewSelector(protected,
		chainNamed("images", "/images/**"),
		chainNamed("login", "/login"),
		chainNamed("images-shadowed", "/images/logo.png"),
	)

	tests := []struct {
		path string
		want string
	}{
		{"/images/logo.png", "images"},
		{"/login", "login"},
		{"/admin/users", "protected"},
		{"/", "protected"},
		{"/login/authenticate", "protected"},
	}
	for _, tt := range tests {
		if got := sel.Select(tt.path).Name; got != tt.want {
			t.Errorf("Select(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSelector_MisorderingChangesPrivilege(t *testing.T) {
	protected := chainNamed("protected", "")

	correct := NewSelector(protected, chainNamed("login", "/login"))
	if got := correct.Select("/login").Name; got != "login" {
		t.Fatalf("correct order: /login selected %q", got)
	}

	// A catch-all registered ahead of the public chain hides it.
	misordered := NewSelector(protected, chainNamed("catch-all", ""), chainNamed("login", "/login"))
	if got := misordered.Select("/login").Name; got != "catch-all" {
		t.Errorf("misordered: /login selected %q, want catch-all", got)
	}
}

func TestSelector_Chains(t *testing.T) {
	sel := NewSelector(chainNamed("protected", ""), chainNamed("login", "/login"))
	chains := sel.Chains()
	if len(chains) != 2 || chains[0].Name != "login" || chains[1].Name != "protected" {
		t.Errorf("Chains = %v", chains)
	}
}
