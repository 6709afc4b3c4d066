package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// TokenStore keeps the OAuth2 token between runs.
type TokenStore struct {
	Path string
}

// DefaultTokenStore returns the store at ~/.flex/auth/msgraph_tokens.json.
func DefaultTokenStore() (TokenStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return TokenStore{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	return TokenStore{Path: filepath.Join(home, ".flex", "auth", "msgraph_tokens.json")}, nil
}

// Load returns the saved token, or nil when none has been saved.
func (s TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", s.Path, err)
	}
	return &tok, nil
}

// Save persists tok atomically with owner-only permissions.
func (s TokenStore) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := s.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// OAuth2Config returns the device-code configuration for Microsoft Graph.
func OAuth2Config(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// Authenticator obtains Graph tokens: from the store, by refreshing, or by
// running the device code flow and printing instructions to Prompt.
type Authenticator struct {
	Config *oauth2.Config
	Store  TokenStore
	Prompt io.Writer
}

// Token returns a usable token. With force the stored token is ignored and
// a new device code sign-in is started.
func (a Authenticator) Token(ctx context.Context, force bool) (*oauth2.Token, error) {
	if !force {
		tok, err := a.Store.Load()
		if err != nil {
			slog.Warn("ignoring stored token", "err", err)
			tok = nil
		}
		if tok != nil && tok.Valid() {
			return tok, nil
		}
		if tok != nil && tok.RefreshToken != "" {
			refreshed, err := a.Config.TokenSource(ctx, tok).Token()
			if err == nil {
				if err := a.Store.Save(refreshed); err != nil {
					slog.Warn("could not save refreshed token", "err", err)
				}
				return refreshed, nil
			}
			slog.Info("token refresh failed, re-authenticating", "err", err)
		}
	}

	resp, err := a.Config.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	prompt := a.Prompt
	if prompt == nil {
		prompt = os.Stderr
	}
	fmt.Fprintln(prompt)
	fmt.Fprintln(prompt, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(prompt, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(prompt, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(prompt)

	tok, err := a.Config.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := a.Store.Save(tok); err != nil {
		slog.Warn("could not save token", "err", err)
	}
	return tok, nil
}

// NewAuthenticator wires the Graph device flow to the default token store.
func NewAuthenticator(tenantID, clientID string) (Authenticator, error) {
	store, err := DefaultTokenStore()
	if err != nil {
		return Authenticator{}, err
	}
	return Authenticator{Config: OAuth2Config(tenantID, clientID), Store: store}, nil
}
