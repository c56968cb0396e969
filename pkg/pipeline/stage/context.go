package stage

import (
	"github.com/rhuss/adminguard/pkg/debug"
	"github.com/rhuss/adminguard/pkg/pipeline"
)

// ContextLoad attaches the session principal, if the request carries a
// live session cookie.
type ContextLoad struct {
	Binding SessionBinding
}

// Name implements pipeline.Stage.
func (s *ContextLoad) Name() string { return "context-load" }

// Process implements pipeline.Stage.
func (s *ContextLoad) Process(ex *pipeline.Exchange) (pipeline.Outcome, error) {
	id := s.Binding.Cookie.read(ex.Request)
	if id == "" {
		return pipeline.Next(), nil
	}

	p, ok := s.Binding.Sessions.Get(id)
	if !ok {
		debug.Log("session", "stale session cookie", "path", ex.Request.URL.Path)
		return pipeline.Next(), nil
	}

	ex.Principal = p
	ex.SessionID = id
	return pipeline.Next(), nil
}
