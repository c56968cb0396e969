package directory

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed entries.
var (
	ErrEmptyUsername = errors.New("empty username")
	ErrEmptySecret   = errors.New("empty secret")
	ErrDuplicateUser = errors.New("duplicate username")
	ErrEmptyToken    = errors.New("empty authority")
)

// LoadError reports a directory that could not be loaded. It is fatal at
// startup; the server never runs with a partial directory.
type LoadError struct {
	// Source names the resource, e.g. a file path or "postgres".
	Source string

	// Key is the offending username, if known.
	Key string

	Err error
}

func (e *LoadError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("loading user directory %s: entry %q: %v", e.Source, e.Key, e.Err)
	}
	return fmt.Sprintf("loading user directory %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
