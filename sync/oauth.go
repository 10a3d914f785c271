// ABOUTME: OAuth configuration and token management for the Google Directory API
// ABOUTME: Handles token storage at XDG paths and persists refreshed tokens
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	stdsync "sync"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	admin "google.golang.org/api/admin/directory/v1"
)

const defaultRedirectURL = "http://localhost:8080/oauth/callback"

// GoogleAuthConfig holds the OAuth client settings for the Workspace domain.
type GoogleAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Domain       string
}

// NewOAuthConfig creates OAuth2 config for managing Google Groups membership.
// GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET fill in missing credentials.
func NewOAuthConfig(cfg GoogleAuthConfig) *oauth2.Config {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_CLIENT_ID")
	}

	clientSecret := cfg.ClientSecret
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}

	redirectURL := cfg.RedirectURL
	if redirectURL == "" {
		redirectURL = defaultRedirectURL
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			admin.AdminDirectoryGroupScope,
			admin.AdminDirectoryGroupMemberScope,
		},
		Endpoint: google.Endpoint,
	}
}

// AuthCodeURL builds the consent URL, restricted to the hosted domain when one is set.
func AuthCodeURL(config *oauth2.Config, state, domain string) string {
	opts := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account consent"),
	}
	if domain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", domain))
	}
	return config.AuthCodeURL(state, opts...)
}

// TokenPath returns XDG-compliant path for storing OAuth tokens.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "groupsync", "google-token.json")
}

// SaveToken saves OAuth token to XDG data directory.
func SaveToken(token *oauth2.Token) error {
	path := TokenPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	// Write token file with restricted permissions
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

// LoadToken loads OAuth token from XDG data directory.
func LoadToken() (*oauth2.Token, error) {
	path := TokenPath()

	f, err := os.Open(path)
	if err != nil {
		return nil, &InvalidTokenError{Err: fmt.Errorf("failed to open token file: %w", err)}
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, &InvalidTokenError{Err: fmt.Errorf("failed to decode token: %w", err)}
	}

	return &token, nil
}

// persistingTokenSource saves every newly minted token back to disk so refreshed
// access tokens survive between runs.
type persistingTokenSource struct {
	mu   stdsync.Mutex
	base oauth2.TokenSource
	last string
	save func(*oauth2.Token) error
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		if err := s.save(token); err != nil {
			return nil, fmt.Errorf("failed to save refreshed token: %w", err)
		}
		s.last = token.AccessToken
	}

	return token, nil
}

// TokenSource loads the stored token and returns a source that refreshes it as
// needed. An expired token without a refresh token is rejected up front.
func TokenSource(ctx context.Context, config *oauth2.Config) (oauth2.TokenSource, error) {
	token, err := LoadToken()
	if err != nil {
		return nil, err
	}

	if !token.Valid() && token.RefreshToken == "" {
		return nil, &InvalidTokenError{Err: errors.New("token expired and no refresh token is available")}
	}

	return &persistingTokenSource{
		base: config.TokenSource(ctx, token),
		last: token.AccessToken,
		save: SaveToken,
	}, nil
}
