// Package main provides the entry point for the eCatalog CLI, a workflow
// tool for the catalog management API. It authenticates against the API's
// OAuth2 authorization server using either the client-credentials (M2M) or
// the interactive authorization-code-with-PKCE flow, caches tokens on disk
// across invocations, and issues authenticated catalog requests.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ecatalog-tools/ecatalog-cli/internal/auth"
	"github.com/ecatalog-tools/ecatalog-cli/internal/buildinfo"
	"github.com/ecatalog-tools/ecatalog-cli/internal/catalog"
	"github.com/ecatalog-tools/ecatalog-cli/internal/config"
	"github.com/ecatalog-tools/ecatalog-cli/internal/logging"
	"github.com/ecatalog-tools/ecatalog-cli/internal/util"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
}

// main parses command-line flags, loads configuration, and dispatches to the
// requested operation (login, logout, status, or a catalog call).
func main() {
	fmt.Printf("eCatalog CLI Version: %s, BuiltAt: %s\n", buildinfo.Version, buildinfo.BuildDate)

	var login bool
	var m2mLogin bool
	var force bool
	var noBrowser bool
	var callbackPort int
	var timeoutSeconds int
	var logout bool
	var status bool
	var lookupSku string
	var configPath string

	flag.BoolVar(&login, "login", false, "Authenticate interactively using OAuth with PKCE")
	flag.BoolVar(&m2mLogin, "m2m-login", false, "Authenticate using the machine-to-machine (client credentials) flow")
	flag.BoolVar(&force, "force", false, "Force re-authentication even if a valid cached token exists")
	flag.BoolVar(&noBrowser, "no-browser", false, "Don't open the browser automatically for OAuth")
	flag.IntVar(&callbackPort, "oauth-callback-port", 0, "Override the OAuth callback port")
	flag.IntVar(&timeoutSeconds, "timeout", 300, "Interactive authentication timeout in seconds")
	flag.BoolVar(&logout, "logout", false, "Clear the cached token for this client and endpoint")
	flag.BoolVar(&status, "status", false, "Show the cached token status")
	flag.StringVar(&lookupSku, "lookup-sku", "", "Look up a SKU through the authenticated API")
	flag.StringVar(&configPath, "config", "config.yaml", "Configuration file path")
	flag.Parse()

	// Secrets may live in a .env next to the working directory instead of
	// the YAML config.
	if wd, err := os.Getwd(); err == nil {
		if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
			log.Debugf(".env not loaded: %v", errLoad)
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logDir := cfg.LogDir
	if logDir == "" {
		logDir = "logs"
	}
	if err = logging.ConfigureLogOutput(logDir, cfg.LoggingToFile); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	if cfg.OAuth == nil {
		log.Fatal("Configuration error: oauth section is required")
	}
	if noBrowser {
		cfg.OAuth.AutoOpenBrowser = false
	}
	if callbackPort > 0 {
		cfg.OAuth.CallbackPort = callbackPort
	}

	store, err := auth.NewTokenStore()
	if err != nil {
		log.Fatalf("Failed to initialize token store: %v", err)
	}
	manager := auth.NewTokenManager(cfg.OAuth, cfg.BaseURL, store)

	ctx := context.Background()
	timeout := time.Duration(timeoutSeconds) * time.Second

	switch {
	case logout:
		manager.Logout()
		fmt.Println("Cached token cleared")
	case status:
		printStatus(manager)
	case m2mLogin || (cfg.OAuth.UseM2M && !login):
		cred, errAuth := manager.AuthenticateM2M(ctx, force)
		if errAuth != nil {
			log.Fatalf("M2M authentication failed: %v", errAuth)
		}
		fmt.Printf("Authenticated (token %s)\n", util.HideToken(cred.AccessToken))
		runLookup(ctx, cfg, manager, lookupSku)
	case login || lookupSku != "":
		cred, errAuth := manager.AuthenticateInteractive(ctx, timeout, force)
		if errAuth != nil {
			log.Fatalf("Authentication failed: %v", errAuth)
		}
		fmt.Printf("Authenticated (token %s)\n", util.HideToken(cred.AccessToken))
		runLookup(ctx, cfg, manager, lookupSku)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// printStatus reports whether a usable cached token exists for the configured
// client and endpoint, without triggering any network activity.
func printStatus(manager *auth.TokenManager) {
	fmt.Printf("Cache key: %s\n", manager.CacheKey())

	cred := manager.CachedStatus()
	if cred == nil {
		fmt.Println("No cached token")
		return
	}

	fmt.Printf("Access token: %s\n", util.HideToken(cred.AccessToken))
	fmt.Printf("Token type:   %s\n", cred.TokenType)
	if cred.ExpiresAt != nil {
		fmt.Printf("Expires at:   %s\n", cred.ExpiresAt.Format(time.RFC3339))
	} else {
		fmt.Println("Expires at:   never")
	}
	fmt.Printf("Refreshable:  %t\n", cred.RefreshToken != "")
	fmt.Printf("Expired:      %t\n", cred.IsExpired())
}

// runLookup performs the optional -lookup-sku smoke call through the
// authenticated transport.
func runLookup(ctx context.Context, cfg *config.Config, manager *auth.TokenManager, sku string) {
	if sku == "" {
		return
	}

	client := catalog.NewClient(cfg.BaseURL, manager)
	if cfg.AccessToken != "" {
		client.SetAccessToken(cfg.AccessToken)
	}

	result, err := client.LookupSKU(ctx, sku)
	if err != nil {
		log.Fatalf("SKU lookup failed: %v", err)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}
