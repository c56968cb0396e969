// Package access decides whether an authenticated principal may reach a
// protected resource.
//
// Voters cast Grant, Deny or Abstain for a required authority. The
// affirmative DecisionManager grants as soon as one voter grants; otherwise
// any Deny, or a full abstention, denies. A missing principal is always
// denied.
package access

import (
	"strings"

	"github.com/rhuss/adminguard/pkg/auth"
	"github.com/rhuss/adminguard/pkg/debug"
)

// Vote is a single voter's opinion.
type Vote int

const (
	Abstain Vote = iota
	Grant
	Deny
)

// String returns the log/metric label for the vote.
func (v Vote) String() string {
	switch v {
	case Grant:
		return "grant"
	case Deny:
		return "deny"
	default:
		return "abstain"
	}
}

// Decision is the outcome of DecisionManager.Decide.
type Decision bool

const (
	Denied  Decision = false
	Granted Decision = true
)

// String returns the log/metric label for the decision.
func (d Decision) String() string {
	if d {
		return "grant"
	}
	return "deny"
}

// Voter casts a vote on whether principal satisfies required.
// The principal passed to a voter is never nil.
type Voter interface {
	Vote(principal *auth.Principal, required string) Vote
}

// DefaultRolePrefix marks role-shaped authorities.
const DefaultRolePrefix = "ROLE_"

// RoleVoter votes on role-shaped authorities: it abstains when the required
// attribute does not start with Prefix, grants when the principal holds
// exactly that authority and denies otherwise.
type RoleVoter struct {
	// Prefix defaults to DefaultRolePrefix when empty.
	Prefix string
}

// Vote implements Voter.
func (v RoleVoter) Vote(principal *auth.Principal, required string) Vote {
	prefix := v.Prefix
	if prefix == "" {
		prefix = DefaultRolePrefix
	}
	if !strings.HasPrefix(required, prefix) {
		return Abstain
	}
	if principal.HasAuthority(required) {
		return Grant
	}
	return Deny
}

// DecisionManager is an affirmative-based access decision manager. Voter
// order is preserved; voting stops at the first Grant.
type DecisionManager struct {
	voters []Voter
}

// NewDecisionManager creates a manager over the given voters, in order.
func NewDecisionManager(voters ...Voter) *DecisionManager {
	vs := make([]Voter, len(voters))
	copy(vs, voters)
	return &DecisionManager{voters: vs}
}

// Decide grants if any voter grants, and denies when there is no principal,
// when a voter denies, or when every voter abstains.
func (m *DecisionManager) Decide(principal *auth.Principal, required string) Decision {
	if principal == nil {
		return Denied
	}

	denied := false
	for _, v := range m.voters {
		switch v.Vote(principal, required) {
		case Grant:
			debug.Log("access", "access granted", "username", principal.Username, "required", required)
			return Granted
		case Deny:
			denied = true
		}
	}

	debug.Log("access", "access denied",
		"username", principal.Username,
		"required", required,
		"all_abstained", !denied,
	)
	return Denied
}
