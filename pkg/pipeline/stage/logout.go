package stage

import (
	"log/slog"

	"github.com/rhuss/adminguard/pkg/observability"
	"github.com/rhuss/adminguard/pkg/pipeline"
)

// Logout ends the session on requests to Path, whatever the prior
// authentication state, and redirects to SuccessPath.
type Logout struct {
	Path        string
	SuccessPath string

	Binding          SessionBinding
	RememberMeCookie Cookie
}

// Name implements pipeline.Stage.
func (s *Logout) Name() string { return "logout" }

// Process implements pipeline.Stage.
func (s *Logout) Process(ex *pipeline.Exchange) (pipeline.Outcome, error) {
	if ex.Request.URL.Path != s.Path {
		return pipeline.Next(), nil
	}

	if ex.Principal != nil {
		slog.Info("logout", "username", ex.Principal.Username, "remote_addr", ex.Request.RemoteAddr)
	}

	ex.Principal = nil
	s.Binding.unbind(ex)
	if s.RememberMeCookie.Name != "" {
		s.RememberMeCookie.clear(ex.Response)
	}
	observability.LogoutsTotal.Inc()

	return pipeline.RedirectTo(s.SuccessPath), nil
}
