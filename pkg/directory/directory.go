// Package directory holds the static user directory consulted by the
// authentication providers. A Directory is built once at startup and is
// read-only afterwards, so it is safe for concurrent use without locking.
package directory

import (
	"fmt"
	"slices"
	"sort"
)

// User is one directory entry.
type User struct {
	Username string

	// Secret is the stored credential secret: plain text or a bcrypt hash,
	// see auth.DelegatingMatcher.
	Secret string

	Authorities []string
	Enabled     bool
}

// Directory is an immutable username → User mapping.
type Directory struct {
	users map[string]User
}

// New builds a Directory. Entries with an empty username or secret, or
// duplicate usernames, fail with a *LoadError.
func New(source string, users []User) (*Directory, error) {
	d := &Directory{users: make(map[string]User, len(users))}
	for _, u := range users {
		if u.Username == "" {
			return nil, &LoadError{Source: source, Err: ErrEmptyUsername}
		}
		if u.Secret == "" {
			return nil, &LoadError{Source: source, Key: u.Username, Err: ErrEmptySecret}
		}
		if _, dup := d.users[u.Username]; dup {
			return nil, &LoadError{Source: source, Key: u.Username, Err: ErrDuplicateUser}
		}
		u.Authorities = slices.Clone(u.Authorities)
		d.users[u.Username] = u
	}
	return d, nil
}

// Lookup returns a copy of the named user.
func (d *Directory) Lookup(username string) (User, bool) {
	u, ok := d.users[username]
	if !ok {
		return User{}, false
	}
	u.Authorities = slices.Clone(u.Authorities)
	return u, true
}

// Len returns the number of users.
func (d *Directory) Len() int {
	return len(d.users)
}

// Usernames returns all usernames, sorted.
func (d *Directory) Usernames() []string {
	names := make([]string, 0, len(d.users))
	for name := range d.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String describes the directory without revealing secrets.
func (d *Directory) String() string {
	return fmt.Sprintf("directory(%d users)", len(d.users))
}
