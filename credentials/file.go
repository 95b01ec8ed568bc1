package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// File reads a credentials JSON file. Service account files are used as is; OAuth
// client files ('installed' or 'web') use the tokens saved by 'authorise'.
type File struct {
	Path   string
	Tokens string
}

func (p File) Name() string {
	return fmt.Sprintf("file:%v", p.Path)
}

func (p File) Client(ctx context.Context, scopes ...string) (*http.Client, error) {
	if strings.TrimSpace(p.Path) == "" {
		return nil, ErrNotConfigured
	}

	b, err := os.ReadFile(p.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotConfigured
	} else if err != nil {
		return nil, err
	}

	if !IsOAuthClient(b) {
		return fromJSON(ctx, b, scopes...)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, err
	}

	tokens := p.Tokens
	if tokens == "" {
		tokens = TokensFile(p.Path, filepath.Dir(p.Path))
	}

	token, err := tokenFromFile(tokens)
	if err != nil {
		return nil, fmt.Errorf("not authorised - run 'authorise' to create %v (%w)", tokens, err)
	}

	return config.Client(ctx, token), nil
}

// IsOAuthClient returns true if the JSON document is an OAuth client configuration
// rather than a service account key.
func IsOAuthClient(b []byte) bool {
	var kind struct {
		Installed json.RawMessage `json:"installed"`
		Web       json.RawMessage `json:"web"`
	}

	if err := json.Unmarshal(b, &kind); err != nil {
		return false
	}

	return kind.Installed != nil || kind.Web != nil
}

// TokensFile returns the default tokens file for a credentials file, e.g.
// workdir/credentials.tokens for credentials.json.
func TokensFile(credentials, workdir string) string {
	_, file := filepath.Split(credentials)
	name := strings.TrimSuffix(file, filepath.Ext(file))

	return filepath.Join(workdir, fmt.Sprintf("%s.tokens", name))
}

// Retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	token := oauth2.Token{}
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

// SaveToken writes an OAuth2 token to a file readable only by the current user.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to save OAuth token (%w)", err)
	}

	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
