package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, `
base-url: "http://127.0.0.1:8000/"
oauth:
  client-id: "c1"
  token-url: "https://auth.example.com/oauth/token"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if !cfg.OAuth.UsePKCE {
		t.Error("UsePKCE default should be true")
	}
	if !cfg.OAuth.AutoOpenBrowser {
		t.Error("AutoOpenBrowser default should be true")
	}
	if cfg.OAuth.CallbackPort != DefaultCallbackPort {
		t.Errorf("CallbackPort = %d, want %d", cfg.OAuth.CallbackPort, DefaultCallbackPort)
	}
	if cfg.OAuth.RedirectURI != DefaultRedirectURI {
		t.Errorf("RedirectURI = %q, want %q", cfg.OAuth.RedirectURI, DefaultRedirectURI)
	}
}

func TestLoadConfigExplicitValues(t *testing.T) {
	path := writeConfigFile(t, `
base-url: "https://catalog.example.com"
oauth:
  client-id: "c1"
  client-secret: "s1"
  token-url: "https://auth.example.com/oauth/token"
  use-pkce: false
  use-m2m: true
  auto-open-browser: false
  callback-port: 9000
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.OAuth.UsePKCE {
		t.Error("UsePKCE should honor explicit false")
	}
	if !cfg.OAuth.UseM2M {
		t.Error("UseM2M should be true")
	}
	if cfg.OAuth.AutoOpenBrowser {
		t.Error("AutoOpenBrowser should honor explicit false")
	}
	if cfg.OAuth.CallbackPort != 9000 {
		t.Errorf("CallbackPort = %d, want 9000", cfg.OAuth.CallbackPort)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ECATALOG_CLIENT_ID", "env-client")
	t.Setenv("ECATALOG_CLIENT_SECRET", "env-secret")

	path := writeConfigFile(t, `
base-url: "https://catalog.example.com"
oauth:
  client-id: "file-client"
  token-url: "https://auth.example.com/oauth/token"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.OAuth.ClientID != "env-client" {
		t.Errorf("ClientID = %q, want env override", cfg.OAuth.ClientID)
	}
	if cfg.OAuth.ClientSecret != "env-secret" {
		t.Errorf("ClientSecret = %q, want env override", cfg.OAuth.ClientSecret)
	}
}

func TestLoadConfigMissingBaseURL(t *testing.T) {
	path := writeConfigFile(t, `
oauth:
  client-id: "c1"
  token-url: "https://auth.example.com/oauth/token"
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() should fail without base-url")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfig() should fail for a missing file")
	}
}
