// ABOUTME: Configuration loading and parsing for spicefront
// ABOUTME: Supports YAML files with environment variable expansion

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete spicefront configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Authority AuthorityConfig `yaml:"authority"`
	Session   SessionConfig   `yaml:"session"`
	Routes    RoutesConfig    `yaml:"routes"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the console's listen address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// AuthorityConfig holds the remote auth authority endpoint
type AuthorityConfig struct {
	BaseURL string `yaml:"base_url"`
}

// SessionConfig holds credential handling configuration
type SessionConfig struct {
	// CookieName is the session cookie the authority sets on login.
	CookieName string `yaml:"cookie_name"`
	// CredentialFile is where the fallback token is persisted.
	CredentialFile string `yaml:"credential_file"`
}

// RoutesConfig optionally overrides the default route classification table
type RoutesConfig struct {
	Protected []string `yaml:"protected"`
	AuthOnly  []string `yaml:"auth_only"`
	LoginPath string   `yaml:"login_path"`
	HomePath  string   `yaml:"home_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded and
// defaults are applied before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in values the config file may omit
func (c *Config) applyDefaults() {
	if c.Session.CookieName == "" {
		c.Session.CookieName = "vd_session"
	}
	if c.Routes.LoginPath == "" {
		c.Routes.LoginPath = "/login"
	}
	if c.Routes.HomePath == "" {
		c.Routes.HomePath = "/"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that all required configuration fields are present and
// valid. Returns an error describing the first validation failure.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Authority.BaseURL == "" {
		return fmt.Errorf("authority.base_url is required")
	}
	if !strings.HasPrefix(c.Authority.BaseURL, "http://") && !strings.HasPrefix(c.Authority.BaseURL, "https://") {
		return fmt.Errorf("authority.base_url must be an http(s) URL, got %q", c.Authority.BaseURL)
	}

	if c.Session.CredentialFile == "" {
		return fmt.Errorf("session.credential_file is required")
	}

	for _, p := range append(append([]string{}, c.Routes.Protected...), c.Routes.AuthOnly...) {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("route prefix %q must start with /", p)
		}
	}

	return nil
}
