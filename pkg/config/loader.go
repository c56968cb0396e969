package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rhuss/adminguard/pkg/debug"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, ADMINGUARD_CONFIG env, ./config.yaml, /etc/adminguard/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
		debug.Log("config", "loaded config file", "path", filePath)
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. ADMINGUARD_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/adminguard/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("ADMINGUARD_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/adminguard/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps ADMINGUARD_* environment variables to config
// fields. Malformed numeric or boolean values are ignored.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ADMINGUARD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ADMINGUARD_STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}

	if v := os.Getenv("ADMINGUARD_REQUIRED_AUTHORITY"); v != "" {
		cfg.Security.RequiredAuthority = v
	}
	// ADMINGUARD_PUBLIC_PATHS: comma-separated patterns, replacing the list.
	if v := os.Getenv("ADMINGUARD_PUBLIC_PATHS"); v != "" {
		cfg.Security.PublicPaths = splitList(v)
	}
	if v := os.Getenv("ADMINGUARD_MAX_FAILED_LOGINS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Security.MaxFailedLoginsPerMinute = n
		}
	}

	if v := os.Getenv("ADMINGUARD_REMEMBER_ME_KEY"); v != "" {
		cfg.RememberMe.Key = v
	}
	if v := os.Getenv("ADMINGUARD_SECURE_COOKIES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RememberMe.SecureCookie = b
		}
	}

	if v := os.Getenv("ADMINGUARD_DIRECTORY_SOURCE"); v != "" {
		cfg.Directory.Source = v
	}
	if v := os.Getenv("ADMINGUARD_DIRECTORY_FILE"); v != "" {
		cfg.Directory.File = v
	}
	if v := os.Getenv("ADMINGUARD_POSTGRES_DSN"); v != "" {
		cfg.Directory.Postgres.DSN = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// remember_me.key_file -> remember_me.key
	if cfg.RememberMe.KeyFile != "" && cfg.RememberMe.Key == "" {
		val, err := readSecretFile(cfg.RememberMe.KeyFile)
		if err != nil {
			return fmt.Errorf("remember_me.key_file: %w", err)
		}
		cfg.RememberMe.Key = val
	}

	// directory.postgres.dsn_file -> directory.postgres.dsn
	if cfg.Directory.Postgres.DSNFile != "" && cfg.Directory.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Directory.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("directory.postgres.dsn_file: %w", err)
		}
		cfg.Directory.Postgres.DSN = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
