package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// CallbackServer hosts the short-lived local HTTP endpoint that captures the
// authorization code (or error) from the OAuth redirect during the
// interactive PKCE flow. It listens on loopback only and serves a single
// authorization attempt before being shut down by the orchestrating flow.
type CallbackServer struct {
	// server is the underlying HTTP server instance.
	server *http.Server
	// port is the loopback port on which the server listens.
	port int
	// resultChan carries the captured callback result to the waiting flow.
	resultChan chan *CallbackResult
	// errorChan carries listener failures to the waiting flow.
	errorChan chan error
	// mu protects server state.
	mu sync.Mutex
	// running indicates whether the server is currently running.
	running bool
}

// CallbackResult contains the outcome of the OAuth callback: either the
// authorization code or the error reported by the authorization server.
type CallbackResult struct {
	// Code is the authorization code received from the authorization server.
	Code string
	// Error contains the error code if the authorization failed.
	Error string
	// ErrorDescription is the optional human-readable error detail.
	ErrorDescription string
}

// NewCallbackServer creates a new OAuth callback server bound to the given
// loopback port.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:       port,
		resultChan: make(chan *CallbackResult, 1),
		errorChan:  make(chan error, 1),
	}
}

// Start begins listening on the configured port and serves the callback
// endpoint on a background goroutine.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use: %w", s.port, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.running = true

	srv := s.server
	go func() {
		if errServe := srv.Serve(listener); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			s.errorChan <- fmt.Errorf("callback server failed: %w", errServe)
		}
	}()

	log.Infof("Started local callback server on port %d", s.port)
	return nil
}

// Stop gracefully stops the callback server. It is called on every exit path
// of the interactive flow: success, server-reported error, and timeout.
func (s *CallbackServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.server == nil {
		return nil
	}

	log.Debug("Stopping OAuth callback server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	s.running = false
	s.server = nil

	return err
}

// WaitForCallback blocks until the redirect delivers a result, the listener
// fails, or the timeout elapses.
func (s *CallbackServer) WaitForCallback(timeout time.Duration) (*CallbackResult, error) {
	select {
	case result := <-s.resultChan:
		return result, nil
	case err := <-s.errorChan:
		return nil, err
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for OAuth callback")
	}
}

// handleCallback handles the OAuth redirect. A request carrying a code
// parameter completes the attempt successfully; one carrying an error
// parameter completes it with the server-reported failure. Anything else is
// rejected without completing the attempt, so the flow keeps waiting.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	log.Debug("Received OAuth callback")

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	if code := query.Get("code"); code != "" {
		s.sendResult(&CallbackResult{Code: code})
		writeHTML(w, http.StatusOK, authSuccessHTML)
		return
	}

	if errParam := query.Get("error"); errParam != "" {
		errDescription := query.Get("error_description")
		log.Errorf("OAuth error received: %s", errParam)
		s.sendResult(&CallbackResult{Error: errParam, ErrorDescription: errDescription})
		writeHTML(w, http.StatusBadRequest, renderAuthErrorHTML(errParam, errDescription))
		return
	}

	writeHTML(w, http.StatusBadRequest, authInvalidHTML)
}

// sendResult delivers the callback result without blocking the handler.
// Only the first result per attempt is kept.
func (s *CallbackServer) sendResult(result *CallbackResult) {
	select {
	case s.resultChan <- result:
	default:
		log.Warn("Callback result channel is full, result dropped")
	}
}

// IsRunning returns whether the server is currently running.
func (s *CallbackServer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Errorf("Failed to write callback response: %v", err)
	}
}

// isPortInUseError reports whether a Start failure was caused by the port
// being occupied.
func isPortInUseError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already in use")
}
