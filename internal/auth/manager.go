package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/ecatalog-tools/ecatalog-cli/internal/browser"
	"github.com/ecatalog-tools/ecatalog-cli/internal/config"
	"github.com/ecatalog-tools/ecatalog-cli/internal/util"
)

// DefaultInteractiveTimeout bounds how long the interactive flow waits for
// the browser redirect before giving up.
const DefaultInteractiveTimeout = 300 * time.Second

// TokenManager orchestrates the two supported OAuth grant flows, token expiry
// evaluation, transparent refresh, and cache read/write-through. One manager
// is bound to one OAuthConfig and one cache key for its lifetime. It is not
// safe for concurrent use; the CLI performs at most one authentication
// attempt at a time.
type TokenManager struct {
	cfg        *config.OAuthConfig
	store      *TokenStore
	httpClient *http.Client
	cacheKey   string
	current    *Credential
}

// NewTokenManager creates a token manager for the given OAuth configuration
// and catalog API base URL. The base URL only contributes to the cache key so
// that tokens for different endpoints never collide.
func NewTokenManager(cfg *config.OAuthConfig, baseURL string, store *TokenStore) *TokenManager {
	return &TokenManager{
		cfg:        cfg,
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cacheKey:   CacheKey(cfg.ClientID, baseURL),
	}
}

// Current returns the credential held by the manager, or nil when no
// authentication has happened yet.
func (m *TokenManager) Current() *Credential {
	return m.current
}

// CacheKey returns the on-disk identity of this manager's credential.
func (m *TokenManager) CacheKey() string {
	return m.cacheKey
}

// AuthenticateM2M performs machine-to-machine authentication using the
// client-credentials grant. Unless forceReauth is set, a valid (or
// successfully refreshed) cached credential is reused without any network
// call. A missing client secret fails fast before any request is made.
func (m *TokenManager) AuthenticateM2M(ctx context.Context, forceReauth bool) (*Credential, error) {
	if m.cfg.ClientSecret == "" {
		return nil, NewConfigurationError("client-secret", "client secret required for M2M authentication")
	}

	if !forceReauth {
		if cached := m.cachedCredential(ctx); cached != nil {
			return cached, nil
		}
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {m.cfg.ClientID},
		"client_secret": {m.cfg.ClientSecret},
	}
	if m.cfg.Scope != "" {
		form.Set("scope", m.cfg.Scope)
	}

	cred, err := m.requestToken(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("M2M token request failed: %w", err)
	}

	m.setCredential(cred)
	log.Info("M2M OAuth token obtained successfully")
	return cred, nil
}

// AuthenticateInteractive completes the authorization-code-with-PKCE flow:
// it generates a fresh PKCE pair, starts the local callback server, sends the
// user's browser to the authorization endpoint, waits for the redirect, and
// exchanges the captured code for tokens. The loopback redirect URI is
// computed locally and threaded through the flow; the shared OAuthConfig is
// never mutated. The callback server is shut down on every exit path.
func (m *TokenManager) AuthenticateInteractive(ctx context.Context, timeout time.Duration, forceReauth bool) (*Credential, error) {
	if m.cfg.AuthorizationURL == "" {
		return nil, NewConfigurationError("authorization-url", "authorization endpoint required for interactive authentication")
	}
	if timeout <= 0 {
		timeout = DefaultInteractiveTimeout
	}

	if !forceReauth {
		if cached := m.cachedCredential(ctx); cached != nil {
			return cached, nil
		}
	}

	pkceCodes, err := GeneratePKCECodes()
	if err != nil {
		return nil, fmt.Errorf("PKCE generation failed: %w", err)
	}

	// The redirect must point at the local callback server for this attempt;
	// the configured redirect URI is left untouched.
	redirectURI := fmt.Sprintf("http://127.0.0.1:%d/callback", m.cfg.CallbackPort)
	authURL := m.authorizationURL(pkceCodes, redirectURI)

	server := NewCallbackServer(m.cfg.CallbackPort)
	if err = server.Start(); err != nil {
		if isPortInUseError(err) {
			return nil, NewAuthenticationError(ErrPortInUse, err)
		}
		return nil, NewAuthenticationError(ErrServerStartFailed, err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if stopErr := server.Stop(stopCtx); stopErr != nil {
			log.Warnf("Callback server stop error: %v", stopErr)
		}
	}()

	if m.cfg.AutoOpenBrowser && browser.IsAvailable() {
		log.Info("Opening browser for authorization...")
		if err = browser.OpenURL(authURL); err != nil {
			log.Warnf("Failed to open browser automatically: %v", err)
			fmt.Printf("Please visit: %s\n", authURL)
		}
	} else {
		fmt.Printf("Please visit: %s\n", authURL)
	}

	result, err := server.WaitForCallback(timeout)
	if err != nil {
		if strings.Contains(err.Error(), "timeout") {
			return nil, NewAuthenticationError(ErrCallbackTimeout,
				fmt.Errorf("no authorization response within %s", timeout))
		}
		return nil, err
	}

	if result.Error != "" {
		return nil, NewOAuthError(result.Error, result.ErrorDescription, http.StatusBadRequest)
	}

	log.Debug("Authorization code received; exchanging for tokens")

	cred, err := m.exchangeCode(ctx, result.Code, redirectURI, pkceCodes)
	if err != nil {
		return nil, NewAuthenticationError(ErrCodeExchangeFailed, err)
	}

	m.setCredential(cred)
	log.Info("OAuth authentication completed successfully")
	return cred, nil
}

// exchangeCode trades the authorization code for tokens. With PKCE the code
// verifier takes the place of the client secret.
func (m *TokenManager) exchangeCode(ctx context.Context, code, redirectURI string, pkceCodes *PKCECodes) (*Credential, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {m.cfg.ClientID},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}
	if m.cfg.UsePKCE {
		form.Set("code_verifier", pkceCodes.CodeVerifier)
	} else {
		form.Set("client_secret", m.cfg.ClientSecret)
	}

	return m.requestToken(ctx, form)
}

// Refresh exchanges the held refresh token for a new credential. It returns
// nil when no refresh is possible or the server rejects the attempt; callers
// must treat nil as "refresh unavailable, re-authentication required". A
// successful refresh replaces and persists the held credential. When the
// response omits a refresh token the previous one is preserved, since
// omission means reuse rather than revocation.
func (m *TokenManager) Refresh(ctx context.Context) *Credential {
	if m.current == nil || m.current.RefreshToken == "" {
		log.Debug("No refresh token available")
		return nil
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {m.cfg.ClientID},
		"refresh_token": {m.current.RefreshToken},
	}
	if !m.cfg.UsePKCE && m.cfg.ClientSecret != "" {
		form.Set("client_secret", m.cfg.ClientSecret)
	}

	cred, err := m.requestToken(ctx, form)
	if err != nil {
		log.Errorf("Token refresh failed: %v", err)
		return nil
	}

	if cred.RefreshToken == "" {
		cred.RefreshToken = m.current.RefreshToken
	}

	m.setCredential(cred)
	log.Info("Token refreshed successfully")
	return cred
}

// EnsureValid guarantees the held credential is usable for an outbound call,
// refreshing it when it is inside the expiry lookahead window. It fails with
// a refresh-unavailable error rather than proceeding with a stale token.
func (m *TokenManager) EnsureValid(ctx context.Context) error {
	if m.current == nil {
		return NewAuthenticationError(ErrRefreshUnavailable, fmt.Errorf("no credential held"))
	}
	if !m.current.IsExpired() {
		return nil
	}

	log.Info("Token expired, attempting to refresh")
	if m.Refresh(ctx) == nil {
		return NewAuthenticationError(ErrRefreshUnavailable, nil)
	}
	return nil
}

// CachedStatus returns the cached credential for inspection without
// attempting a refresh. Expired credentials without a refresh token read as
// absent, since the store prunes them on load.
func (m *TokenManager) CachedStatus() *Credential {
	return m.store.Load(m.cacheKey)
}

// Logout clears the cached credential and drops the held one.
func (m *TokenManager) Logout() {
	m.store.Clear(m.cacheKey)
	m.current = nil
}

// cachedCredential loads the cached credential and returns it when usable.
// An expired credential carrying a refresh token is adopted and refreshed;
// the refreshed credential is returned on success.
func (m *TokenManager) cachedCredential(ctx context.Context) *Credential {
	cred := m.store.Load(m.cacheKey)
	if cred == nil {
		return nil
	}

	if !cred.IsExpired() {
		m.current = cred
		return cred
	}

	// Expired but refreshable: adopt it so Refresh can use its refresh token.
	m.current = cred
	if refreshed := m.Refresh(ctx); refreshed != nil {
		return refreshed
	}
	m.current = nil
	return nil
}

// authorizationURL builds the authorization endpoint URL for the interactive
// flow, including the PKCE challenge.
func (m *TokenManager) authorizationURL(pkceCodes *PKCECodes, redirectURI string) string {
	params := url.Values{
		"client_id":     {m.cfg.ClientID},
		"response_type": {"code"},
		"redirect_uri":  {redirectURI},
	}
	if m.cfg.Scope != "" {
		params.Set("scope", m.cfg.Scope)
	}
	if m.cfg.UsePKCE {
		params.Set("code_challenge", pkceCodes.CodeChallenge)
		params.Set("code_challenge_method", pkceCodes.CodeChallengeMethod)
	}

	return fmt.Sprintf("%s?%s", m.cfg.AuthorizationURL, params.Encode())
}

// requestToken POSTs a form to the token endpoint and parses the response
// into a Credential with its absolute expiry stamped. Non-2xx responses are
// surfaced as OAuthError with the server's error body attached.
func (m *TokenManager) requestToken(ctx context.Context, form url.Values) (*Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, oauthErrorFromBody(resp.StatusCode, body)
	}

	var cred Credential
	if err = json.Unmarshal(body, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if cred.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}
	if cred.TokenType == "" {
		cred.TokenType = "Bearer"
	}
	cred.StampExpiry(time.Now())

	log.Debugf("Obtained access token %s", util.HideToken(cred.AccessToken))
	return &cred, nil
}

// setCredential adopts a freshly acquired credential and writes it through to
// the cache.
func (m *TokenManager) setCredential(cred *Credential) {
	m.current = cred
	m.store.Save(m.cacheKey, cred)
}

// oauthErrorFromBody turns a non-2xx token endpoint response into an
// OAuthError, pulling error and error_description out of the JSON body when
// present.
func oauthErrorFromBody(statusCode int, body []byte) *OAuthError {
	code := gjson.GetBytes(body, "error").String()
	description := gjson.GetBytes(body, "error_description").String()
	if code == "" {
		code = fmt.Sprintf("http_%d", statusCode)
		if description == "" {
			description = strings.TrimSpace(string(body))
		}
	}
	return NewOAuthError(code, description, statusCode)
}
