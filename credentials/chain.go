package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cgim/ledger-sheets/log"
)

// Chain tries each provider in order and returns the first client obtained. Providers
// that are not configured are skipped; if no provider succeeds the chain fails with an
// *Error listing every diagnostic.
type Chain []Provider

func (c Chain) Name() string {
	return "chain"
}

func (c Chain) Client(ctx context.Context, scopes ...string) (*http.Client, error) {
	diagnostics := []error{}

	for _, p := range c {
		client, err := p.Client(ctx, scopes...)
		if err == nil {
			log.Debugf("using %v credentials", p.Name())
			return client, nil
		}

		if errors.Is(err, ErrNotConfigured) {
			log.Debugf("%v credentials not configured", p.Name())
			continue
		}

		log.Warnf("%v credentials unusable (%v)", p.Name(), err)
		diagnostics = append(diagnostics, fmt.Errorf("%v: %w", p.Name(), err))
	}

	return nil, &Error{Diagnostics: diagnostics}
}
