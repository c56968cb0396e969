package directory

import (
	"os"
	"strings"

	"github.com/magiconair/properties"
)

const (
	tokenEnabled  = "enabled"
	tokenDisabled = "disabled"
)

// LoadFile reads a users properties file.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return Parse(path, data)
}

// Parse reads entries of the form
//
//	username=secret[,authority...][,enabled|disabled]
//
// Standard properties syntax applies (comments, ':' separators, escapes,
// line continuations). Users are enabled unless marked "disabled".
// Property expansion is off, so secrets may contain "${".
func Parse(source string, data []byte) (*Directory, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes(data)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	users := make([]User, 0, props.Len())
	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		u, err := parseEntry(key, value)
		if err != nil {
			return nil, &LoadError{Source: source, Key: key, Err: err}
		}
		users = append(users, u)
	}
	return New(source, users)
}

func parseEntry(username, value string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, ErrEmptyUsername
	}

	fields := strings.Split(value, ",")
	u := User{
		Username: username,
		Secret:   strings.TrimSpace(fields[0]),
		Enabled:  true,
	}
	if u.Secret == "" {
		return User{}, ErrEmptySecret
	}

	for _, f := range fields[1:] {
		f = strings.TrimSpace(f)
		switch f {
		case "":
			return User{}, ErrEmptyToken
		case tokenEnabled:
			u.Enabled = true
		case tokenDisabled:
			u.Enabled = false
		default:
			u.Authorities = append(u.Authorities, f)
		}
	}
	return u, nil
}
