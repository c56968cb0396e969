package security

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/crypto/bcrypt"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/config"
	"github.com/rhuss/adminguard/pkg/directory"
	"github.com/rhuss/adminguard/pkg/observability"
)

const users = `
# console users
admin = secret,ROLE_ADMIN
guest = guest,ROLE_USER
retired = retired,ROLE_ADMIN,disabled
`

// console is the protected application: it echoes the principal.
var console = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		fmt.Fprint(w, "anonymous")
		return
	}
	fmt.Fprint(w, p.Username)
})

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.RememberMe.Key = "security-test-key-0123456789"
	return &cfg
}

func newHandler(t *testing.T, cfg *config.Config) (http.Handler, *Security) {
	t.Helper()
	dir, err := directory.Parse("test", []byte(users))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sec, err := New(FromConfig(cfg, dir))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sec.Handler(console), sec
}

// browser replays cookies between requests, like a cookie jar scoped to
// the test host.
type browser struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	return &browser{t: t, h: h, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(r *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, r)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) login(username, password string, extra url.Values) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	for k, v := range extra {
		form[k] = v
	}
	r := httptest.NewRequest(http.MethodPost, "/login/authenticate", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(r)
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("Location = %q, want %q", got, location)
	}
}

func expectBody(t *testing.T, rec *httptest.ResponseRecorder, body string) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != body {
		t.Errorf("body = %q, want %q", got, body)
	}
}

func TestNew_Validation(t *testing.T) {
	cfg := testConfig()
	if _, err := New(FromConfig(cfg, nil)); err == nil {
		t.Error("New without directory should fail")
	}

	dir, _ := directory.New("test", nil)
	cfg.RememberMe.Key = "short"
	if _, err := New(FromConfig(cfg, dir)); err == nil {
		t.Error("New with weak key should fail")
	}

	cfg = testConfig()
	cfg.Security.PublicPaths = []string{"/ok/**", "/bad/**x"}
	if _, err := New(FromConfig(cfg, dir)); err == nil {
		t.Error("New with invalid public path should fail")
	}
}

func TestChainOrder(t *testing.T) {
	_, sec := newHandler(t, testConfig())
	chains := sec.Selector().Chains()

	if got := chains[len(chains)-1].Name; got != ProtectedChain {
		t.Errorf("last chain = %q, want the protected fallback", got)
	}
	if got := sec.Selector().Select("/images/logo.png").Name; got != "public /images/**" {
		t.Errorf("Select(/images/logo.png) = %q", got)
	}
	if got := sec.Selector().Select("/login/authenticate").Name; got != ProtectedChain {
		t.Errorf("Select(/login/authenticate) = %q, want protected", got)
	}
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	h, _ := newHandler(t, testConfig())
	b := newBrowser(t, h)

	expectRedirect(t, b.get("/users?page=2"), "/login?redirect=%2Fusers%3Fpage%3D2")
	expectRedirect(t, b.get("/"), "/login?redirect=%2F")
	expectRedirect(t, b.do(httptest.NewRequest(http.MethodPost, "/users/7", nil)), "/login?redirect=%2Fusers%2F7")
}

func TestPublicPathsPassThrough(t *testing.T) {
	h, _ := newHandler(t, testConfig())
	b := newBrowser(t, h)

	for _, p := range []string{"/images/logo.png", "/styles/site.css", "/scripts", "/login", "/access-denied", "/page-not-found"} {
		expectBody(t, b.get(p), "anonymous")
	}
}

func TestFormLoginFlow(t *testing.T) {
	h, sec := newHandler(t, testConfig())
	b := newBrowser(t, h)

	expectRedirect(t, b.get("/users"), "/login?redirect=%2Fusers")

	rec := b.login("admin", "secret", url.Values{"redirect": {"/users"}})
	expectRedirect(t, rec, "/users")
	if _, ok := b.cookies["ADMINGUARD_SESSION"]; !ok {
		t.Fatal("login did not set a session cookie")
	}
	if _, ok := b.cookies["remember-me"]; ok {
		t.Error("remember-me cookie issued without opt-in")
	}
	if sec.Sessions().Len() != 1 {
		t.Errorf("sessions = %d, want 1", sec.Sessions().Len())
	}

	expectBody(t, b.get("/users"), "admin")
	expectBody(t, b.get("/"), "admin")

	// Public chains never load the session.
	expectBody(t, b.get("/login"), "anonymous")
}

func TestFormLoginFailures(t *testing.T) {
	tests := []struct {
		name, username, password string
	}{
		{"wrong secret", "admin", "wrong"},
		{"unknown user", "mallory", "secret"},
		{"disabled user", "retired", "retired"},
		{"wrong case username", "Admin", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, sec := newHandler(t, testConfig())
			b := newBrowser(t, h)

			expectRedirect(t, b.login(tt.username, tt.password, nil), "/login?login_error=1")
			if sec.Sessions().Len() != 0 {
				t.Error("failed login created a session")
			}
			expectRedirect(t, b.get("/"), "/login?redirect=%2F")
		})
	}
}

func TestLoginRequiresPost(t *testing.T) {
	h, _ := newHandler(t, testConfig())
	b := newBrowser(t, h)

	expectRedirect(t, b.get("/login/authenticate?username=admin&password=secret"), "/login?login_error=1")
}

func TestAccessDenied(t *testing.T) {
	h, _ := newHandler(t, testConfig())
	b := newBrowser(t, h)

	expectRedirect(t, b.login("guest", "guest", nil), "/")

	before := testutil.ToFloat64(observability.AccessDecisionsTotal.WithLabelValues("deny"))
	expectRedirect(t, b.get("/users"), "/access-denied")
	if got := testutil.ToFloat64(observability.AccessDecisionsTotal.WithLabelValues("deny")) - before; got != 1 {
		t.Errorf("deny decisions delta = %v, want 1", got)
	}
	expectBody(t, b.get("/access-denied"), "anonymous")
}

func TestAccessDenied_NoPathAnswers403(t *testing.T) {
	cfg := testConfig()
	cfg.Security.AccessDeniedPath = ""
	h, _ := newHandler(t, cfg)
	b := newBrowser(t, h)

	b.login("guest", "guest", nil)
	if rec := b.get("/users"); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRememberMe(t *testing.T) {
	h, _ := newHandler(t, testConfig())
	b := newBrowser(t, h)

	expectRedirect(t, b.login("admin", "secret", url.Values{"remember-me": {"on"}}), "/")
	remember, ok := b.cookies["remember-me"]
	if !ok {
		t.Fatal("remember-me cookie not issued")
	}
	if !remember.HttpOnly {
		t.Error("remember-me cookie must be HttpOnly")
	}

	// A new browser session: only the remember-me cookie survives.
	fresh := newBrowser(t, h)
	fresh.cookies["remember-me"] = remember

	expectBody(t, fresh.get("/users"), "admin")
	if _, ok := fresh.cookies["ADMINGUARD_SESSION"]; !ok {
		t.Error("remember-me login should establish a session")
	}
}

func TestRememberMe_TamperedCookie(t *testing.T) {
	h, sec := newHandler(t, testConfig())
	tok, err := sec.Tokens().Issue("admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	b := newBrowser(t, h)
	b.cookies["remember-me"] = &http.Cookie{Name: "remember-me", Value: tok.Value + "x"}

	expectRedirect(t, b.get("/users"), "/login?redirect=%2Fusers")
	if _, ok := b.cookies["remember-me"]; ok {
		t.Error("tampered remember-me cookie should be cancelled")
	}
}

func TestLogout(t *testing.T) {
	h, sec := newHandler(t, testConfig())
	b := newBrowser(t, h)

	b.login("admin", "secret", url.Values{"remember-me": {"true"}})
	session := b.cookies["ADMINGUARD_SESSION"]
	expectBody(t, b.get("/"), "admin")

	expectRedirect(t, b.get("/logout"), "/")
	if len(b.cookies) != 0 {
		t.Errorf("cookies after logout = %v", b.cookies)
	}
	if sec.Sessions().Len() != 0 {
		t.Error("logout should invalidate the session")
	}

	// Replaying the old session cookie does not help.
	b.cookies["ADMINGUARD_SESSION"] = session
	expectRedirect(t, b.get("/"), "/login?redirect=%2F")
}

func TestThrottling(t *testing.T) {
	cfg := testConfig()
	cfg.Security.MaxFailedLoginsPerMinute = 2
	h, _ := newHandler(t, cfg)
	b := newBrowser(t, h)

	b.login("admin", "wrong", nil)
	b.login("admin", "wrong", nil)

	expectRedirect(t, b.login("admin", "secret", nil), "/login?login_error=1")
	expectRedirect(t, b.get("/"), "/login?redirect=%2F")
}

func TestBcryptSecrets(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	dir, err := directory.New("test", []directory.User{
		{Username: "ops", Secret: "{bcrypt}" + string(hash), Authorities: []string{"ROLE_ADMIN"}, Enabled: true},
	})
	if err != nil {
		t.Fatalf("directory.New: %v", err)
	}
	sec, err := New(FromConfig(testConfig(), dir))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b := newBrowser(t, sec.Handler(console))

	expectRedirect(t, b.login("ops", "s3cret", nil), "/")
	expectBody(t, b.get("/"), "ops")
}

func TestFirewallRejectsTraversal(t *testing.T) {
	h, _ := newHandler(t, testConfig())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.URL.Path = "/images/../users"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLoadDirectory(t *testing.T) {
	path := t.TempDir() + "/users.properties"
	if err := os.WriteFile(path, []byte(users), 0o600); err != nil {
		t.Fatal(err)
	}

	dir, err := LoadDirectory(context.Background(), config.DirectoryConfig{Source: "file", File: path})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if dir.Len() != 3 {
		t.Errorf("Len() = %d, want 3", dir.Len())
	}

	if _, err := LoadDirectory(context.Background(), config.DirectoryConfig{Source: "ldap"}); err == nil {
		t.Error("unknown source should fail")
	}
	if _, err := LoadDirectory(context.Background(), config.DirectoryConfig{Source: "file", File: path + ".missing"}); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoadDirectoryLogsOnce(t *testing.T) {
	path := t.TempDir() + "/users.properties"
	if err := os.WriteFile(path, []byte(users), 0o600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(orig)

	if _, err := LoadDirectory(context.Background(), config.DirectoryConfig{Source: "file", File: path}); err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if n := strings.Count(buf.String(), "user directory loaded"); n != 1 {
		t.Errorf("logged %d load records, want 1:\n%s", n, buf.String())
	}
}
