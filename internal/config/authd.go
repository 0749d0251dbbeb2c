// ABOUTME: Configuration for the spice-authd development authority
// ABOUTME: Shares the YAML loading and env expansion with the console config

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AuthdConfig represents the complete spice-authd configuration
type AuthdConfig struct {
	Server   ServerConfig    `yaml:"server"`
	Database DatabaseConfig  `yaml:"database"`
	Auth     AuthdAuthConfig `yaml:"auth"`
	Logging  LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig holds SQLite database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthdAuthConfig holds token signing and cookie configuration
type AuthdAuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	CookieName string `yaml:"cookie_name"`
}

// LoadAuthd reads a spice-authd configuration file from the given path.
// Environment variables in the format ${VAR_NAME} are expanded and defaults
// are applied before validation.
func LoadAuthd(path string) (*AuthdConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg AuthdConfig
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *AuthdConfig) applyDefaults() {
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "vd_session"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that all required configuration fields are present.
func (c *AuthdConfig) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}
