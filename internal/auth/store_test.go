package auth

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func testCredential(expiresAt *time.Time, refreshToken string) *Credential {
	return &Credential{
		AccessToken:  "tok-abc",
		TokenType:    "Bearer",
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		clientID string
		baseURL  string
		expected string
	}{
		{"http endpoint", "c1", "http://127.0.0.1:8000", "c1_http_127.0.0.1_8000"},
		{"https with path", "client", "https://api.example.com/v1/", "client_https_api.example.com_v1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CacheKey(tt.clientID, tt.baseURL); got != tt.expected {
				t.Errorf("CacheKey() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewTokenStoreAt(t.TempDir())
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	cred := testCredential(&expiresAt, "ref-1")
	cred.ExpiresIn = 3600
	cred.Scope = "catalog:write"

	store.Save("k1", cred)

	loaded := store.Load("k1")
	if loaded == nil {
		t.Fatal("Load() returned nil after Save()")
	}
	if loaded.AccessToken != cred.AccessToken || loaded.RefreshToken != cred.RefreshToken || loaded.Scope != cred.Scope {
		t.Errorf("loaded credential mismatch: got %+v, want %+v", *loaded, *cred)
	}
	if loaded.ExpiresAt == nil || !loaded.ExpiresAt.Equal(expiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", loaded.ExpiresAt, expiresAt)
	}
}

func TestStoreFilePermissions(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on Windows")
	}

	dir := t.TempDir()
	store := NewTokenStoreAt(dir)
	store.Save("k1", testCredential(nil, ""))

	info, err := os.Stat(filepath.Join(dir, "k1.json"))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}
}

func TestStoreLoadExpiredWithoutRefreshDeletes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewTokenStoreAt(dir)
	past := time.Now().Add(-time.Hour)
	store.Save("k1", testCredential(&past, ""))

	if got := store.Load("k1"); got != nil {
		t.Fatalf("Load() = %+v, want nil for expired credential without refresh token", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "k1.json")); !os.IsNotExist(err) {
		t.Error("expired token file should have been deleted")
	}

	// A second load on the same key must also return nil without erroring.
	if got := store.Load("k1"); got != nil {
		t.Errorf("second Load() = %+v, want nil", got)
	}
}

func TestStoreLoadExpiredWithRefreshReturnsCredential(t *testing.T) {
	t.Parallel()

	store := NewTokenStoreAt(t.TempDir())
	past := time.Now().Add(-5 * time.Minute)
	store.Save("k1", testCredential(&past, "ref-1"))

	loaded := store.Load("k1")
	if loaded == nil {
		t.Fatal("Load() should return the expired credential when it carries a refresh token")
	}
	if loaded.RefreshToken != "ref-1" {
		t.Errorf("RefreshToken = %q, want ref-1", loaded.RefreshToken)
	}
}

func TestStoreLoadCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewTokenStoreAt(dir)
	if err := os.WriteFile(filepath.Join(dir, "k1.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	if got := store.Load("k1"); got != nil {
		t.Errorf("Load() = %+v, want nil for corrupt file", got)
	}
}

func TestStoreClearIdempotent(t *testing.T) {
	t.Parallel()

	store := NewTokenStoreAt(t.TempDir())
	store.Save("k1", testCredential(nil, ""))

	store.Clear("k1")
	if got := store.Load("k1"); got != nil {
		t.Errorf("Load() after Clear() = %+v, want nil", got)
	}

	// Clearing again must not panic or error.
	store.Clear("k1")
}

func TestStoreSaveBestEffort(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("read-only directories are not enforced the same way on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}

	parent := t.TempDir()
	if err := os.Chmod(parent, 0o500); err != nil {
		t.Fatalf("Chmod() error = %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(parent, 0o700) })

	// Save into an uncreatable directory must log and swallow the failure.
	store := NewTokenStoreAt(filepath.Join(parent, "tokens"))
	store.Save("k1", testCredential(nil, ""))

	if got := store.Load("k1"); got != nil {
		t.Errorf("Load() = %+v, want nil after failed save", got)
	}
}
