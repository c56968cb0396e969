package pipeline

import (
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/observability"
)

// Handler selects a chain for every request, executes it and acts on the
// outcome. Forwarded requests reach next with the principal (if any) in
// the request context, see auth.PrincipalFromContext.
type Handler struct {
	selector *Selector
	next     http.Handler
}

// NewHandler creates the pipeline handler in front of next.
func NewHandler(selector *Selector, next http.Handler) *Handler {
	return &Handler{selector: selector, next: next}
}

// Middleware creates HTTP middleware from a selector.
func Middleware(selector *Selector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return NewHandler(selector, next)
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !canonicalURL(r.URL) {
		slog.Warn("rejected non-normalized request path",
			"path", r.URL.Path,
			"raw_path", r.URL.RawPath,
			"remote_addr", r.RemoteAddr,
		)
		observability.PipelineOutcomesTotal.WithLabelValues("firewall", "reject").Inc()
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	chain := h.selector.Select(r.URL.Path)
	ex := NewExchange(w, r)
	ex.Chain = chain.Name

	out, err := Execute(ex, chain.Stages)
	if err != nil {
		if r.Context().Err() != nil {
			slog.Debug("request cancelled during pipeline", "path", r.URL.Path, "chain", chain.Name)
			return
		}
		slog.Error("security pipeline failed",
			"path", r.URL.Path,
			"chain", chain.Name,
			"error", err,
		)
		observability.PipelineOutcomesTotal.WithLabelValues(chain.Name, "error").Inc()
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	observability.PipelineOutcomesTotal.WithLabelValues(chain.Name, out.Kind.String()).Inc()

	switch out.Kind {
	case Redirect:
		http.Redirect(w, r, out.Location, http.StatusFound)
	case Deny:
		status := out.Status
		if status == 0 {
			status = http.StatusForbidden
		}
		http.Error(w, http.StatusText(status), status)
	default:
		if ex.Principal != nil {
			r = r.WithContext(auth.SetPrincipal(r.Context(), ex.Principal))
		}
		h.next.ServeHTTP(w, r)
	}
}

// canonicalURL reports whether the request path is normalized and uses the
// default escaping. net/url only sets RawPath when the client's escaping
// differs from the default one ("%2F", "%5C", "%6Cogin"). Routers such as
// chi route on RawPath in that case, so such requests are rejected to keep
// chain selection and routing on the same path.
func canonicalURL(u *url.URL) bool {
	return u.RawPath == "" && normalizedPath(u.Path)
}

// normalizedPath rejects paths that differ from their cleaned form, such as
// those containing "..", "." or empty segments, so that matchers and the
// router always see the same path.
func normalizedPath(p string) bool {
	if p == "" || p[0] != '/' || strings.ContainsAny(p, "\\\x00") {
		return false
	}
	c := path.Clean(p)
	if strings.HasSuffix(p, "/") && c != "/" {
		c += "/"
	}
	return c == p
}
