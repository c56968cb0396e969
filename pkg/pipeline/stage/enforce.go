package stage

import (
	"fmt"

	"github.com/rhuss/adminguard/pkg/access"
	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/observability"
	"github.com/rhuss/adminguard/pkg/pipeline"
)

// AccessEnforcement requires an authenticated principal holding Required.
// Anonymous requests fail with auth.ErrAuthenticationRequired, principals
// without the authority with auth.ErrAccessDenied.
type AccessEnforcement struct {
	Decisions *access.DecisionManager
	Required  string
}

// Name implements pipeline.Stage.
func (s *AccessEnforcement) Name() string { return "access-decision" }

// Process implements pipeline.Stage.
func (s *AccessEnforcement) Process(ex *pipeline.Exchange) (pipeline.Outcome, error) {
	if ex.Principal == nil {
		return pipeline.Outcome{}, auth.ErrAuthenticationRequired
	}

	d := s.Decisions.Decide(ex.Principal, s.Required)
	observability.AccessDecisionsTotal.WithLabelValues(d.String()).Inc()
	if d == access.Denied {
		return pipeline.Outcome{}, fmt.Errorf("%w: %s lacks %s", auth.ErrAccessDenied, ex.Principal.Username, s.Required)
	}
	return pipeline.Next(), nil
}
