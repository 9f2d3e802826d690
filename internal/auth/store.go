package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// TokenStore persists one Credential per cache key as a JSON file under a
// fixed per-user directory. Caching is strictly best-effort: write failures
// are logged and swallowed, and any unreadable or unparsable file degrades to
// a cache miss. Token files are written with owner-only permissions since
// they hold bearer credentials.
type TokenStore struct {
	baseDir string
}

// NewTokenStore creates a token store rooted at ~/.ecatalog/tokens.
func NewTokenStore() (*TokenStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("token store: failed to resolve home directory: %w", err)
	}
	return NewTokenStoreAt(filepath.Join(home, ".ecatalog", "tokens")), nil
}

// NewTokenStoreAt creates a token store rooted at the given directory. The
// directory is created on first save.
func NewTokenStoreAt(dir string) *TokenStore {
	return &TokenStore{baseDir: dir}
}

// CacheKey derives the on-disk file identity for a credential from the client
// ID and the normalized base API URL, so multiple endpoints and clients cache
// tokens independently without collision.
func CacheKey(clientID, baseURL string) string {
	safeURL := strings.NewReplacer("://", "_", "/", "_", ":", "_").Replace(strings.TrimRight(baseURL, "/"))
	return fmt.Sprintf("%s_%s", clientID, safeURL)
}

func (s *TokenStore) path(key string) string {
	return filepath.Join(s.baseDir, key+".json")
}

// Save persists the credential for the given key. Failures are logged but
// never surfaced: absence of the cache must not break authentication.
func (s *TokenStore) Save(key string, cred *Credential) {
	if err := s.save(key, cred); err != nil {
		log.Warnf("Failed to save token to cache: %v", err)
		return
	}
	log.Infof("Token saved to %s", s.path(key))
}

func (s *TokenStore) save(key string, cred *Credential) error {
	if cred == nil {
		return fmt.Errorf("credential is nil")
	}
	if err := os.MkdirAll(s.baseDir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize credential: %w", err)
	}

	path := s.path(key)
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	// WriteFile keeps existing permissions on overwrite; force owner-only.
	if err = os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict token file permissions: %w", err)
	}
	return nil
}

// Load reads the cached credential for the given key. It returns nil when
// the file is absent, unreadable, or fails to parse. An expired credential
// with a refresh token is returned as-is so the manager can attempt a
// refresh; an expired credential without one is deleted and nil is returned.
func (s *TokenStore) Load(key string) *Credential {
	path := s.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Failed to read cached token: %v", err)
		} else {
			log.Debug("No cached token found")
		}
		return nil
	}

	var cred Credential
	if err = json.Unmarshal(data, &cred); err != nil {
		log.Warnf("Failed to parse cached token: %v", err)
		return nil
	}

	if cred.IsExpired() {
		log.Info("Cached token is expired")
		if cred.RefreshToken != "" {
			return &cred
		}
		if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warnf("Failed to remove expired token file: %v", err)
		}
		return nil
	}

	log.Info("Loaded valid token from cache")
	return &cred
}

// Clear deletes the cached credential for the given key if present. It is
// idempotent and never errors when the file is absent.
func (s *TokenStore) Clear(key string) {
	if err := os.Remove(s.path(key)); err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Failed to clear token cache: %v", err)
		}
		return
	}
	log.Info("Token cache cleared")
}
