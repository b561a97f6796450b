package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/nana-intelligence/agent-juliette/internal/config"
	"github.com/nana-intelligence/agent-juliette/internal/mailer"
)

// authTimeout bounds how long we wait for the browser round-trip.
const authTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize Gmail draft staging",
	Long: `Run the OAuth consent flow for the Gmail compose scope and save the
resulting token. The serve and process commands reuse the saved token and
refresh it automatically.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cfg.GmailCredentialsPath == "" {
		return fmt.Errorf("GMAIL_CREDENTIALS_PATH is required for auth")
	}

	oauthCfg, err := mailer.ConfigFromCredentialsFile(cfg.GmailCredentialsPath)
	if err != nil {
		return err
	}

	// Offline access is what yields the refresh token; without it the saved
	// token dies within the hour.
	url := oauthCfg.AuthCodeURL("state-juliette", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Open this URL in your browser to authorize the agent:\n\n%s\n\n", url)

	code, err := waitForCallback()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if err := mailer.SaveToken(cfg.GmailTokenPath, token); err != nil {
		return err
	}

	fmt.Printf("Token saved to %s\n", cfg.GmailTokenPath)
	return nil
}

// waitForCallback runs a one-shot HTTP server on the OAuth redirect port and
// returns the authorization code Google sends back.
func waitForCallback() (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			errCh <- fmt.Errorf("callback received no authorization code")
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this tab.")
		codeCh <- code
	})

	srv := &http.Server{Addr: ":8089", Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("callback server failed: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-time.After(authTimeout):
		return "", fmt.Errorf("timed out waiting for authorization callback")
	}
}
