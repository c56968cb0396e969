// Package config provides unified configuration for the adminguard console.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (ADMINGUARD_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the adminguard console.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Security      SecurityConfig      `yaml:"security"`
	RememberMe    RememberMeConfig    `yaml:"remember_me"`
	Session       SessionConfig       `yaml:"session"`
	Directory     DirectoryConfig     `yaml:"directory"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 30s
	StaticDir    string        `yaml:"static_dir"`    // optional, served under the resource prefixes
}

// SecurityConfig holds the pipeline settings: which paths are public, which
// authority the console requires, and where the login flow lives.
type SecurityConfig struct {
	RequiredAuthority string   `yaml:"required_authority"` // default: "ROLE_ADMIN"
	RolePrefix        string   `yaml:"role_prefix"`        // default: "ROLE_"
	PublicPaths       []string `yaml:"public_paths"`       // Ant-style patterns

	LoginPath           string `yaml:"login_path"`            // default: "/login"
	LoginProcessingPath string `yaml:"login_processing_path"` // default: "/login/authenticate"
	LoginFailureQuery   string `yaml:"login_failure_query"`   // default: "login_error=1"
	AccessDeniedPath    string `yaml:"access_denied_path"`    // default: "/access-denied", empty answers 403
	LogoutPath          string `yaml:"logout_path"`           // default: "/logout"
	LogoutSuccessPath   string `yaml:"logout_success_path"`   // default: "/"

	RedirectParam   string `yaml:"redirect_param"`    // default: "redirect"
	UsernameParam   string `yaml:"username_param"`    // default: "username"
	PasswordParam   string `yaml:"password_param"`    // default: "password"
	RememberMeParam string `yaml:"remember_me_param"` // default: "remember-me"

	MaxFailedLoginsPerMinute int `yaml:"max_failed_logins_per_minute"` // 0 = unlimited
}

// LoginFailurePath returns the redirect target for failed logins.
func (c SecurityConfig) LoginFailurePath() string {
	if c.LoginFailureQuery == "" {
		return c.LoginPath
	}
	return c.LoginPath + "?" + c.LoginFailureQuery
}

// RememberMeConfig holds remember-me token settings.
type RememberMeConfig struct {
	Key          string        `yaml:"key"`           // required, at least 16 bytes
	KeyFile      string        `yaml:"key_file"`      // _file variant for key
	Validity     time.Duration `yaml:"validity"`      // default: 336h
	CookieName   string        `yaml:"cookie_name"`   // default: "remember-me"
	SecureCookie bool          `yaml:"secure_cookie"` // default: false
}

// SessionConfig holds session store and cookie settings.
type SessionConfig struct {
	CookieName  string        `yaml:"cookie_name"`  // default: "ADMINGUARD_SESSION"
	IdleTimeout time.Duration `yaml:"idle_timeout"` // default: 30m
	MaxSessions int           `yaml:"max_sessions"` // default: 10000
}

// DirectoryConfig selects where console users are loaded from.
type DirectoryConfig struct {
	Source   string         `yaml:"source"` // "file" or "postgres", default: "file"
	File     string         `yaml:"file"`   // default: "users.properties"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 4
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log level and debug category settings.
// ADMINGUARD_LOG_LEVEL and ADMINGUARD_DEBUG take precedence.
type LoggingConfig struct {
	Level string `yaml:"level"` // default: "INFO"
	Debug string `yaml:"debug"` // comma-separated categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RequiredAuthority: "ROLE_ADMIN",
			RolePrefix:        "ROLE_",
			PublicPaths: []string{
				"/images/**",
				"/scripts/**",
				"/styles/**",
				"/login",
				"/page-not-found",
				"/access-denied",
			},
			LoginPath:           "/login",
			LoginProcessingPath: "/login/authenticate",
			LoginFailureQuery:   "login_error=1",
			AccessDeniedPath:    "/access-denied",
			LogoutPath:          "/logout",
			LogoutSuccessPath:   "/",
			RedirectParam:       "redirect",
			UsernameParam:       "username",
			PasswordParam:       "password",
			RememberMeParam:     "remember-me",
		},
		RememberMe: RememberMeConfig{
			Validity:   14 * 24 * time.Hour,
			CookieName: "remember-me",
		},
		Session: SessionConfig{
			CookieName:  "ADMINGUARD_SESSION",
			IdleTimeout: 30 * time.Minute,
			MaxSessions: 10000,
		},
		Directory: DirectoryConfig{
			Source: "file",
			File:   "users.properties",
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}
