// Package config provides configuration management for the eCatalog CLI.
// It handles loading and parsing YAML configuration files, and provides
// structured access to application settings including the catalog API base
// URL, OAuth client settings, and logging behavior.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default OAuth callback settings, matching the registered client redirect.
const (
	DefaultCallbackPort = 8080
	DefaultRedirectURI  = "http://localhost:8080/callback"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// BaseURL is the root URL of the catalog management API.
	BaseURL string `yaml:"base-url"`

	// AccessToken optionally supplies a static bearer token, bypassing the
	// OAuth flows entirely. Intended for testing against local instances.
	AccessToken string `yaml:"access-token,omitempty"`

	// OAuth holds the OAuth2 client settings. Required unless AccessToken
	// is set.
	OAuth *OAuthConfig `yaml:"oauth,omitempty"`

	// LoggingToFile writes logs to a rotating file instead of stdout.
	LoggingToFile bool `yaml:"logging-to-file"`

	// LogDir overrides the directory used for log files. Defaults to "logs".
	LogDir string `yaml:"log-dir,omitempty"`
}

// OAuthConfig identifies the authorization server and client. One instance is
// bound to one token manager for its lifetime and is never mutated by the
// authentication flows.
type OAuthConfig struct {
	// ClientID is the OAuth2 client identifier.
	ClientID string `yaml:"client-id"`

	// ClientSecret is required for M2M (client credentials) authentication.
	// It is not needed for the PKCE flow. May also be supplied through the
	// ECATALOG_CLIENT_SECRET environment variable.
	ClientSecret string `yaml:"client-secret,omitempty"`

	// AuthorizationURL is the authorization endpoint. Only used by the
	// interactive PKCE flow.
	AuthorizationURL string `yaml:"authorization-url,omitempty"`

	// TokenURL is the token endpoint used by every grant type.
	TokenURL string `yaml:"token-url"`

	// RedirectURI is the redirect registered with the authorization server.
	RedirectURI string `yaml:"redirect-uri,omitempty"`

	// Scope optionally narrows the requested token scope.
	Scope string `yaml:"scope,omitempty"`

	// UsePKCE selects the authorization-code-with-PKCE flow for interactive
	// authentication. Defaults to true.
	UsePKCE bool `yaml:"use-pkce"`

	// UseM2M selects the machine-to-machine (client credentials) flow.
	UseM2M bool `yaml:"use-m2m"`

	// AutoOpenBrowser opens the system browser automatically during the
	// interactive flow. Defaults to true.
	AutoOpenBrowser bool `yaml:"auto-open-browser"`

	// CallbackPort is the loopback port for the local callback server.
	CallbackPort int `yaml:"callback-port"`
}

// LoadConfig reads and parses the YAML configuration file at the given path,
// applies defaults, and folds in environment overrides for secrets.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("config: base-url is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

// defaultConfig returns a Config with the documented defaults pre-applied so
// that absent YAML keys keep them. Boolean defaults that are true must be set
// before unmarshalling, otherwise an omitted key would read as false.
func defaultConfig() *Config {
	return &Config{
		OAuth: &OAuthConfig{
			UsePKCE:         true,
			AutoOpenBrowser: true,
			CallbackPort:    DefaultCallbackPort,
			RedirectURI:     DefaultRedirectURI,
		},
	}
}

func (c *Config) applyDefaults() {
	if c.OAuth == nil {
		return
	}
	if c.OAuth.CallbackPort <= 0 {
		c.OAuth.CallbackPort = DefaultCallbackPort
	}
	if c.OAuth.RedirectURI == "" {
		c.OAuth.RedirectURI = DefaultRedirectURI
	}
}

// applyEnvOverrides folds secrets from the environment into the config.
// godotenv has already populated the environment from .env by the time this
// runs, so secrets never need to live in the YAML file.
func (c *Config) applyEnvOverrides() {
	if c.OAuth == nil {
		return
	}
	if v := os.Getenv("ECATALOG_CLIENT_ID"); v != "" {
		c.OAuth.ClientID = v
	}
	if v := os.Getenv("ECATALOG_CLIENT_SECRET"); v != "" {
		c.OAuth.ClientSecret = v
	}
}
