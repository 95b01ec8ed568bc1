package credentials

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// Embedded decodes base64 encoded service account JSON held in the application
// configuration or secret store.
type Embedded struct {
	Secret string
}

func (p Embedded) Name() string {
	return "embedded"
}

func (p Embedded) Client(ctx context.Context, scopes ...string) (*http.Client, error) {
	if strings.TrimSpace(p.Secret) == "" {
		return nil, ErrNotConfigured
	}

	blob, err := Decode(p.Secret)
	if err != nil {
		return nil, err
	}

	return fromJSON(ctx, blob, scopes...)
}

// Decode decodes a base64 secret, tolerating embedded whitespace, the URL-safe
// alphabet and missing or excess padding.
func Decode(secret string) ([]byte, error) {
	s := strings.Join(strings.Fields(secret), "")
	s = strings.TrimRight(s, "=")
	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)

	if len(s)%4 == 1 {
		return nil, fmt.Errorf("invalid base64 secret - truncated")
	}

	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}

	blob, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 secret (%w)", err)
	}

	return blob, nil
}
