package pipeline

import (
	"net/http"

	"github.com/rhuss/adminguard/pkg/auth"
)

// Exchange is the per-request context threaded through a chain's stages.
// It is owned by a single request and never shared.
type Exchange struct {
	Request  *http.Request
	Response http.ResponseWriter

	// Principal is the authenticated identity, nil while anonymous.
	Principal *auth.Principal

	// SessionID identifies the session the principal was loaded from or
	// stored in, empty when there is none.
	SessionID string

	// Chain is the name of the selected chain.
	Chain string
}

// NewExchange creates an anonymous exchange for a request.
func NewExchange(w http.ResponseWriter, r *http.Request) *Exchange {
	return &Exchange{Request: r, Response: w}
}

// Kind classifies an Outcome.
type Kind int

const (
	// Continue passes control to the next stage.
	Continue Kind = iota

	// Forward ends the chain and hands the request to the application.
	Forward

	// Redirect ends the chain with a redirect to Location.
	Redirect

	// Deny ends the chain with an error status.
	Deny
)

// String returns the metric/log label for the kind.
func (k Kind) String() string {
	switch k {
	case Continue:
		return "continue"
	case Forward:
		return "forward"
	case Redirect:
		return "redirect"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Outcome is what a stage returns.
type Outcome struct {
	Kind     Kind
	Location string // Redirect only
	Status   int    // Deny only
}

// Next lets the following stage run.
func Next() Outcome { return Outcome{Kind: Continue} }

// ForwardRequest ends the chain and forwards to the application.
func ForwardRequest() Outcome { return Outcome{Kind: Forward} }

// RedirectTo ends the chain with a redirect.
func RedirectTo(location string) Outcome {
	return Outcome{Kind: Redirect, Location: location}
}

// DenyWith ends the chain with the given HTTP status.
func DenyWith(status int) Outcome {
	return Outcome{Kind: Deny, Status: status}
}

// Stage is one unit of pipeline logic. It may pass (Next), mutate the
// exchange, end the chain with a non-Continue outcome, or fail with an
// error.
type Stage interface {
	Name() string
	Process(ex *Exchange) (Outcome, error)
}

// Boundary is implemented by stages that handle errors raised by any stage
// after them in the same chain. Translate returns an outcome to end the
// chain with, or an error (the same or another) to keep propagating.
type Boundary interface {
	Translate(ex *Exchange, err error) (Outcome, error)
}

// StageFunc adapts a function to a Stage.
type StageFunc struct {
	StageName string
	Fn        func(ex *Exchange) (Outcome, error)
}

// Name implements Stage.
func (f StageFunc) Name() string { return f.StageName }

// Process implements Stage.
func (f StageFunc) Process(ex *Exchange) (Outcome, error) { return f.Fn(ex) }
