// Package auth implements the OAuth2 token lifecycle for the eCatalog CLI:
// token acquisition through the client-credentials and
// authorization-code-with-PKCE grants, disk-backed token caching with
// expiry-aware reuse, transparent refresh, and the local callback server used
// by the interactive flow.
package auth

import (
	"time"
)

// expiryLeeway is the lookahead window applied to every expiry comparison.
// A token is treated as expired slightly before the server actually
// invalidates it, which avoids races against clock skew and request latency.
const expiryLeeway = time.Minute

// Credential stores an OAuth2 token as returned by the token endpoint, plus
// the absolute expiry timestamp computed at acquisition time. It is the unit
// of persistence for the on-disk token cache.
type Credential struct {
	// AccessToken is the bearer token used for authenticating API requests.
	AccessToken string `json:"access_token"`
	// TokenType is the token type reported by the server, normally "Bearer".
	TokenType string `json:"token_type"`
	// ExpiresIn is the token lifetime in seconds, as returned by the server.
	ExpiresIn int `json:"expires_in,omitempty"`
	// RefreshToken is used to obtain new access tokens when the current one
	// expires. Absent for client-credentials grants.
	RefreshToken string `json:"refresh_token,omitempty"`
	// Scope is the granted scope string, if the server reported one.
	Scope string `json:"scope,omitempty"`
	// ExpiresAt is the absolute expiry timestamp, computed once at
	// acquisition as acquisition time + ExpiresIn. All expiry checks use
	// this field. A credential without it never expires.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// StampExpiry computes ExpiresAt from ExpiresIn relative to now. It is a
// no-op when the server did not report a lifetime.
func (c *Credential) StampExpiry(now time.Time) {
	if c.ExpiresIn > 0 {
		expiresAt := now.Add(time.Duration(c.ExpiresIn) * time.Second)
		c.ExpiresAt = &expiresAt
	}
}

// IsExpired reports whether the credential is expired, applying the one
// minute leeway window. Credentials without an expiry timestamp are treated
// as never expiring.
func (c *Credential) IsExpired() bool {
	return c.isExpiredAt(time.Now())
}

func (c *Credential) isExpiredAt(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Add(-expiryLeeway))
}
