package stage

import (
	"log/slog"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/observability"
	"github.com/rhuss/adminguard/pkg/pipeline"
)

// RememberMe logs in anonymous requests that carry a remember-me cookie.
// Invalid cookies are cleared and the request continues anonymously.
type RememberMe struct {
	Manager *auth.Manager
	Cookie  Cookie
	Binding SessionBinding
}

// Name implements pipeline.Stage.
func (s *RememberMe) Name() string { return "remember-me" }

// Process implements pipeline.Stage.
func (s *RememberMe) Process(ex *pipeline.Exchange) (pipeline.Outcome, error) {
	if ex.Principal != nil {
		return pipeline.Next(), nil
	}
	value := s.Cookie.read(ex.Request)
	if value == "" {
		return pipeline.Next(), nil
	}

	kind := auth.RememberMe.String()
	res := s.Manager.Authenticate(ex.Request.Context(), auth.Credentials{
		Kind:  auth.RememberMe,
		Token: value,
	})
	if !res.OK() {
		observability.AuthenticationsTotal.WithLabelValues(kind, "failure").Inc()
		slog.Info("remember-me login rejected",
			"remote_addr", ex.Request.RemoteAddr,
			"error", res.Err,
		)
		s.Cookie.clear(ex.Response)
		return pipeline.Next(), nil
	}

	observability.AuthenticationsTotal.WithLabelValues(kind, "success").Inc()
	slog.Info("remember-me login", "username", res.Principal.Username, "remote_addr", ex.Request.RemoteAddr)

	ex.Principal = res.Principal
	s.Binding.bind(ex)
	return pipeline.Next(), nil
}
