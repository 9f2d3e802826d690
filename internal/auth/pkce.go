package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// PKCECodes holds a one-time PKCE verifier/challenge pair. A fresh pair is
// generated for every interactive authorization attempt and is never
// persisted.
type PKCECodes struct {
	// CodeVerifier is the high-entropy secret later presented during the
	// code exchange.
	CodeVerifier string
	// CodeChallenge is the S256 transform of the verifier sent with the
	// authorization request.
	CodeChallenge string
	// CodeChallengeMethod is always "S256".
	CodeChallengeMethod string
}

// GeneratePKCECodes generates a new pair of PKCE (Proof Key for Code
// Exchange) codes. It creates a cryptographically random code verifier and
// its corresponding SHA256 code challenge, as specified in RFC 7636.
func GeneratePKCECodes() (*PKCECodes, error) {
	codeVerifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}

	return &PKCECodes{
		CodeVerifier:        codeVerifier,
		CodeChallenge:       generateCodeChallenge(codeVerifier),
		CodeChallengeMethod: "S256",
	}, nil
}

// generateCodeVerifier creates a cryptographically secure random string to be
// used as the code verifier. 32 random bytes encode to 43 URL-safe base64
// characters, the RFC 7636 minimum length.
func generateCodeVerifier() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(bytes), nil
}

// generateCodeChallenge creates a code challenge from a given code verifier
// by taking the SHA256 hash of the verifier and Base64 URL-encoding the
// result.
func generateCodeChallenge(codeVerifier string) string {
	hash := sha256.Sum256([]byte(codeVerifier))
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(hash[:])
}
