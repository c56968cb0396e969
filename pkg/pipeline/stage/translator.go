package stage

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/pipeline"
)

// ExceptionTranslator is the exception boundary. It does nothing on the way
// in; errors raised by later stages are converted into user-facing
// outcomes:
//   - authentication failures redirect to LoginPath, carrying the original
//     request URI in RedirectParam for every method. After login the
//     browser follows it with a GET, so request bodies are never replayed;
//   - auth.ErrAccessDenied redirects to AccessDeniedPath, or answers 403
//     when no such path is configured.
//
// Any other error is returned unchanged.
type ExceptionTranslator struct {
	LoginPath        string
	RedirectParam    string
	AccessDeniedPath string
}

// Ensure ExceptionTranslator is a boundary at compile time.
var _ pipeline.Boundary = (*ExceptionTranslator)(nil)

// Name implements pipeline.Stage.
func (s *ExceptionTranslator) Name() string { return "exception-boundary" }

// Process implements pipeline.Stage.
func (s *ExceptionTranslator) Process(*pipeline.Exchange) (pipeline.Outcome, error) {
	return pipeline.Next(), nil
}

// Translate implements pipeline.Boundary.
func (s *ExceptionTranslator) Translate(ex *pipeline.Exchange, err error) (pipeline.Outcome, error) {
	r := ex.Request
	switch {
	case auth.IsAuthenticationFailure(err):
		slog.Debug("authentication required", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		return pipeline.RedirectTo(s.loginLocation(r)), nil

	case errors.Is(err, auth.ErrAccessDenied):
		username := ""
		if ex.Principal != nil {
			username = ex.Principal.Username
		}
		slog.Warn("access denied",
			"username", username,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		if s.AccessDeniedPath == "" {
			return pipeline.DenyWith(http.StatusForbidden), nil
		}
		return pipeline.RedirectTo(s.AccessDeniedPath), nil

	default:
		return pipeline.Outcome{}, err
	}
}

func (s *ExceptionTranslator) loginLocation(r *http.Request) string {
	if s.RedirectParam == "" {
		return s.LoginPath
	}
	sep := "?"
	if strings.Contains(s.LoginPath, "?") {
		sep = "&"
	}
	return s.LoginPath + sep + url.Values{s.RedirectParam: {r.URL.RequestURI()}}.Encode()
}
