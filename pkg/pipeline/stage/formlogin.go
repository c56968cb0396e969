package stage

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/auth/rememberme"
	"github.com/rhuss/adminguard/pkg/debug"
	"github.com/rhuss/adminguard/pkg/observability"
	"github.com/rhuss/adminguard/pkg/pipeline"
)

const maxLoggedUsername = 64

// FormLogin processes the login form posted to ProcessingPath. Other paths
// pass through untouched.
//
// A successful login stores the principal in a fresh session, optionally
// issues a remember-me cookie, and redirects to the form's redirect target
// (local paths only) or DefaultTarget. A failed login redirects to
// FailurePath. Non-POST requests to ProcessingPath count as failures.
type FormLogin struct {
	ProcessingPath string
	FailurePath    string
	DefaultTarget  string

	UsernameParam   string
	PasswordParam   string
	RememberMeParam string
	RedirectParam   string

	Manager *auth.Manager

	// Limiter throttles repeated failures. Optional.
	Limiter auth.LoginLimiter

	Binding SessionBinding

	// Tokens issues remember-me tokens. Optional; nil disables remember-me.
	Tokens           *rememberme.Service
	RememberMeCookie Cookie
}

// Name implements pipeline.Stage.
func (s *FormLogin) Name() string { return "form-login" }

// Process implements pipeline.Stage.
func (s *FormLogin) Process(ex *pipeline.Exchange) (pipeline.Outcome, error) {
	r := ex.Request
	if r.URL.Path != s.ProcessingPath {
		return pipeline.Next(), nil
	}
	if r.Method != http.MethodPost {
		return s.fail(ex, "", errors.New("login requires POST")), nil
	}

	// Usernames are attacker-controlled; keep log lines bounded.
	username := strings.TrimSpace(r.PostFormValue(s.UsernameParam))
	logName := debug.Truncate(username, maxLoggedUsername)
	password := r.PostFormValue(s.PasswordParam)

	if s.Limiter != nil {
		if err := s.Limiter.Allow(username); err != nil {
			observability.AuthenticationsTotal.WithLabelValues(auth.UsernamePassword.String(), "throttled").Inc()
			slog.Warn("login throttled", "username", logName, "remote_addr", r.RemoteAddr)
			return s.redirectFailure(ex), nil
		}
	}

	res := s.Manager.Authenticate(r.Context(), auth.Credentials{
		Kind:     auth.UsernamePassword,
		Username: username,
		Secret:   password,
	})
	if !res.OK() {
		if s.Limiter != nil {
			s.Limiter.Failed(username)
		}
		return s.fail(ex, logName, res.Err), nil
	}

	if s.Limiter != nil {
		s.Limiter.Succeeded(username)
	}
	observability.AuthenticationsTotal.WithLabelValues(auth.UsernamePassword.String(), "success").Inc()
	slog.Info("login succeeded", "username", res.Principal.Username, "remote_addr", r.RemoteAddr)

	ex.Principal = res.Principal
	s.Binding.bind(ex)

	if s.Tokens != nil && rememberRequested(r.PostFormValue(s.RememberMeParam)) {
		tok, err := s.Tokens.Issue(res.Principal.Username)
		if err != nil {
			return pipeline.Outcome{}, err
		}
		s.RememberMeCookie.set(ex.Response, tok.Value, tok.Expiry)
	}

	return pipeline.RedirectTo(s.target(r.PostFormValue(s.RedirectParam))), nil
}

func (s *FormLogin) fail(ex *pipeline.Exchange, username string, reason error) pipeline.Outcome {
	observability.AuthenticationsTotal.WithLabelValues(auth.UsernamePassword.String(), "failure").Inc()
	slog.Warn("login failed",
		"username", username,
		"remote_addr", ex.Request.RemoteAddr,
		"error", reason,
	)
	return s.redirectFailure(ex)
}

func (s *FormLogin) redirectFailure(ex *pipeline.Exchange) pipeline.Outcome {
	if s.Tokens != nil {
		s.RememberMeCookie.clear(ex.Response)
	}
	return pipeline.RedirectTo(s.FailurePath)
}

// target returns the post-login redirect, falling back to DefaultTarget for
// anything that is not a local absolute path.
func (s *FormLogin) target(requested string) string {
	if safeRedirect(requested) {
		return requested
	}
	if s.DefaultTarget == "" {
		return "/"
	}
	return s.DefaultTarget
}

func safeRedirect(loc string) bool {
	if loc == "" || loc[0] != '/' || strings.HasPrefix(loc, "//") || strings.ContainsAny(loc, "\\\r\n") {
		return false
	}
	u, err := url.Parse(loc)
	return err == nil && u.Scheme == "" && u.Host == ""
}

func rememberRequested(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "yes", "1":
		return true
	}
	return false
}
