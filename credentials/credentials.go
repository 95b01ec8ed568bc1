// Package credentials resolves the authenticated HTTP client used to access the ledger
// spreadsheet from one of several credential sources, tried in a configured order.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	SHEETS = "https://www.googleapis.com/auth/spreadsheets"
	DRIVE  = "https://www.googleapis.com/auth/drive.metadata.readonly"
)

var (
	// ErrCredentials is returned when no provider can supply a usable client.
	ErrCredentials = errors.New("no usable Google credentials")

	// ErrNotConfigured is returned by a provider with no credential source configured.
	ErrNotConfigured = errors.New("credential source not configured")
)

// Provider supplies an HTTP client authorised for the requested scopes.
type Provider interface {
	Name() string
	Client(ctx context.Context, scopes ...string) (*http.Client, error)
}

// Error is the fail-closed error of a credential chain. It lists the diagnostic of
// every configured provider that failed.
type Error struct {
	Diagnostics []error
}

func (e *Error) Error() string {
	if len(e.Diagnostics) == 0 {
		return fmt.Sprintf("%v - no credential source configured", ErrCredentials)
	}

	list := []string{}
	for _, err := range e.Diagnostics {
		list = append(list, err.Error())
	}

	return fmt.Sprintf("%v (%v)", ErrCredentials, strings.Join(list, "; "))
}

func (e *Error) Is(target error) bool {
	return target == ErrCredentials
}

func (e *Error) Unwrap() []error {
	return e.Diagnostics
}

// fromJSON creates a client from a Google credentials JSON document. Only service
// account (and other non-interactive) credentials are accepted here - OAuth client
// files need a tokens file, see File.
func fromJSON(ctx context.Context, blob []byte, scopes ...string) (*http.Client, error) {
	var kind struct {
		Type      string          `json:"type"`
		Installed json.RawMessage `json:"installed"`
		Web       json.RawMessage `json:"web"`
	}

	if err := json.Unmarshal(blob, &kind); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON (%w)", err)
	}

	if kind.Installed != nil || kind.Web != nil {
		return nil, fmt.Errorf("OAuth client credentials require a credentials file and an authorised tokens file")
	}

	if kind.Type == "" {
		return nil, fmt.Errorf("invalid credentials JSON - missing 'type'")
	}

	creds, err := google.CredentialsFromJSON(ctx, blob, scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid %v credentials (%w)", kind.Type, err)
	}

	return oauth2.NewClient(ctx, creds.TokenSource), nil
}
