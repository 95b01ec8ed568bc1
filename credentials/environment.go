package credentials

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Environment reads credentials JSON from an environment variable.
type Environment struct {
	Variable string
}

func (p Environment) Name() string {
	return fmt.Sprintf("environment:%v", p.Variable)
}

func (p Environment) Client(ctx context.Context, scopes ...string) (*http.Client, error) {
	if strings.TrimSpace(p.Variable) == "" {
		return nil, ErrNotConfigured
	}

	blob := strings.TrimSpace(os.Getenv(p.Variable))
	if blob == "" {
		return nil, ErrNotConfigured
	}

	return fromJSON(ctx, []byte(blob), scopes...)
}
