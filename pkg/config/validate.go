package config

import (
	"errors"
	"fmt"
	"strings"
)

// minKeyLength mirrors rememberme.MinKeyLength.
const minKeyLength = 16

// Validate checks the configuration for required fields and valid values.
// All problems are reported together, each with its field path.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	s := c.Security
	if s.RequiredAuthority == "" {
		errs = append(errs, fmt.Errorf("security.required_authority is required"))
	}
	for i, p := range s.PublicPaths {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("security.public_paths[%d] must start with \"/\", got %q", i, p))
		}
	}
	for _, f := range []struct{ name, path string }{
		{"security.login_path", s.LoginPath},
		{"security.login_processing_path", s.LoginProcessingPath},
		{"security.logout_path", s.LogoutPath},
		{"security.logout_success_path", s.LogoutSuccessPath},
	} {
		if !strings.HasPrefix(f.path, "/") {
			errs = append(errs, fmt.Errorf("%s must start with \"/\", got %q", f.name, f.path))
		}
	}
	if s.AccessDeniedPath != "" && !strings.HasPrefix(s.AccessDeniedPath, "/") {
		errs = append(errs, fmt.Errorf("security.access_denied_path must be empty or start with \"/\", got %q", s.AccessDeniedPath))
	}
	if s.UsernameParam == "" || s.PasswordParam == "" {
		errs = append(errs, fmt.Errorf("security.username_param and security.password_param are required"))
	}
	if s.MaxFailedLoginsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("security.max_failed_logins_per_minute must be >= 0, got %d", s.MaxFailedLoginsPerMinute))
	}

	if c.RememberMe.Key == "" {
		errs = append(errs, fmt.Errorf("remember_me.key or remember_me.key_file is required"))
	} else if len(c.RememberMe.Key) < minKeyLength {
		errs = append(errs, fmt.Errorf("remember_me.key must be at least %d bytes", minKeyLength))
	}
	if c.RememberMe.Validity <= 0 {
		errs = append(errs, fmt.Errorf("remember_me.validity must be > 0, got %v", c.RememberMe.Validity))
	}
	if c.RememberMe.CookieName == "" {
		errs = append(errs, fmt.Errorf("remember_me.cookie_name is required"))
	}

	if c.Session.CookieName == "" {
		errs = append(errs, fmt.Errorf("session.cookie_name is required"))
	}
	if c.Session.CookieName == c.RememberMe.CookieName {
		errs = append(errs, fmt.Errorf("session.cookie_name and remember_me.cookie_name must differ"))
	}
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("session.idle_timeout must be > 0, got %v", c.Session.IdleTimeout))
	}
	if c.Session.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("session.max_sessions must be > 0, got %d", c.Session.MaxSessions))
	}

	switch c.Directory.Source {
	case "file":
		if c.Directory.File == "" {
			errs = append(errs, fmt.Errorf("directory.file is required when directory.source is \"file\""))
		}
	case "postgres":
		if c.Directory.Postgres.DSN == "" && c.Directory.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("directory.postgres.dsn or directory.postgres.dsn_file is required when directory.source is \"postgres\""))
		}
	default:
		errs = append(errs, fmt.Errorf("directory.source must be \"file\" or \"postgres\", got %q", c.Directory.Source))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}
