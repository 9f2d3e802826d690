// Package util provides shared helpers for the eCatalog CLI, including
// sanitization of sensitive values before they reach log output.
package util

import "strings"

// HideToken obscures a bearer token or client secret for logging purposes,
// showing only the first and last few characters.
//
// Parameters:
//   - token: The secret value to hide.
//
// Returns:
//   - string: The obscured value.
func HideToken(token string) string {
	if len(token) > 8 {
		return token[:4] + "..." + token[len(token)-4:]
	} else if len(token) > 4 {
		return token[:2] + "..." + token[len(token)-2:]
	} else if len(token) > 2 {
		return token[:1] + "..." + token[len(token)-1:]
	}
	return token
}

// MaskAuthorizationHeader masks an Authorization header value while preserving
// the auth scheme prefix. Common formats: "Bearer <token>", "Basic <credentials>".
// Only the credential part is masked.
func MaskAuthorizationHeader(value string) string {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) < 2 {
		return HideToken(value)
	}
	return parts[0] + " " + HideToken(parts[1])
}
