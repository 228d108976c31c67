// Package client builds the authenticated HTTP client used to reach the
// Gmail API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenFile is the path where the OAuth token is cached between runs.
const TokenFile = "data/token.json"

const (
	callbackAddr = ":8085"
	callbackPath = "/callback"
	flowTimeout  = 5 * time.Minute
)

// New creates an HTTP client from the OAuth credentials file, reusing a
// cached token when one exists and running the browser consent flow
// otherwise.
func New(ctx context.Context, secretFile string, scopes ...string) (*http.Client, error) {
	secret, err := os.ReadFile(secretFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secret file: %w", err)
	}

	cfg, err := google.ConfigFromJSON(secret, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}

	token, err := tokenFromFile(TokenFile)
	if err != nil {
		slog.Info("no cached token, starting consent flow")
		token, err = tokenFromConsent(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("oauth consent flow: %w", err)
		}
		if err := saveToken(TokenFile, token); err != nil {
			slog.Error("failed to cache token", "error", err)
		}
	}

	return cfg.Client(ctx, token), nil
}

// tokenFromConsent runs a one-shot local callback server, prints the
// consent URL and waits for the authorization code.
func tokenFromConsent(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	cfg.RedirectURL = "http://localhost" + callbackAddr + callbackPath

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		if errMsg := r.URL.Query().Get("error"); errMsg != "" {
			errChan <- fmt.Errorf("consent denied: %s", errMsg)
			http.Error(w, errMsg, http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code in callback")
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authentication complete. You can close this window.")
		codeChan <- code
	})

	server := &http.Server{Addr: callbackAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Printf("Visit this URL to authorize mailbox access:\n%s\n", authURL)

	select {
	case code := <-codeChan:
		return cfg.Exchange(ctx, code)
	case err := <-errChan:
		return nil, err
	case <-time.After(flowTimeout):
		return nil, fmt.Errorf("timed out after %v", flowTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	return nil
}
