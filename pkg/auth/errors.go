package auth

import "errors"

// Sentinel errors.
var (
	// ErrInvalidCredentials covers unknown users, disabled users and wrong
	// secrets alike. The three cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownPrincipal is returned when a valid remember-me token names a
	// user that is no longer in the directory.
	ErrUnknownPrincipal = errors.New("unknown principal")

	// ErrExpiredToken is returned for a correctly signed token past its expiry.
	ErrExpiredToken = errors.New("remember-me token expired")

	// ErrTamperedToken is returned for any token that is malformed or whose
	// signature does not match its claims.
	ErrTamperedToken = errors.New("remember-me token invalid")

	// ErrNoProvider is the failure reason when no provider handles the
	// presented credential kind.
	ErrNoProvider = errors.New("no provider for credentials")

	// ErrAuthenticationRequired means no valid principal could be established.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrAccessDenied means a principal is present but was refused access.
	ErrAccessDenied = errors.New("access denied")
)

// AuthenticationError is the collapsed failure returned by the Manager.
// Its message never reveals the reason; errors.Is matches both
// ErrAuthenticationRequired and the wrapped reason.
type AuthenticationError struct {
	Reason error
}

func (e *AuthenticationError) Error() string {
	return ErrAuthenticationRequired.Error()
}

// Unwrap exposes the sentinel and the underlying reason.
func (e *AuthenticationError) Unwrap() []error {
	return []error{ErrAuthenticationRequired, e.Reason}
}
