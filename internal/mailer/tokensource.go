package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// OAuthConfig builds the oauth2 configuration for the draft-staging scope.
// Compose is the narrowest scope that allows creating drafts.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://localhost:8089/oauth/callback",
		Scopes:       []string{gmail.GmailComposeScope},
	}
}

// ConfigFromCredentialsFile builds the oauth2 configuration from a Google
// client credentials JSON file (the "Desktop app" download from the cloud
// console).
func ConfigFromCredentialsFile(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, gmail.GmailComposeScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}
	cfg.RedirectURL = "http://localhost:8089/oauth/callback"
	return cfg, nil
}

// LoadToken reads a saved oauth2 token from disk.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no token at %s, run the auth command first", ErrAuthExpired, path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	if token.RefreshToken == "" && !token.Valid() {
		return nil, fmt.Errorf("%w: token at %s has no refresh token", ErrAuthExpired, path)
	}
	return &token, nil
}

// SaveToken persists an oauth2 token to disk with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// NewTokenSource returns a self-refreshing token source backed by the saved
// token. Refreshed tokens are written back to disk so restarts reuse them.
func NewTokenSource(ctx context.Context, cfg *oauth2.Config, tokenPath string) (oauth2.TokenSource, error) {
	token, err := LoadToken(tokenPath)
	if err != nil {
		return nil, err
	}
	return &persistingTokenSource{
		inner: cfg.TokenSource(ctx, token),
		path:  tokenPath,
		last:  token,
	}, nil
}

// persistingTokenSource saves tokens back to disk whenever the underlying
// source refreshes them.
type persistingTokenSource struct {
	inner oauth2.TokenSource
	path  string
	last  *oauth2.Token
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.inner.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != p.last.AccessToken {
		p.last = token
		// A failed save is not fatal; the token still works for this run.
		_ = SaveToken(p.path, token)
	}
	return token, nil
}
