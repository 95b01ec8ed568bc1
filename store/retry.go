package store

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"
)

const maxRetries = 4

var newBackOff = func() backoff.BackOff {
	return backoff.NewExponentialBackOff()
}

// retry retries a read while it fails with a transient error. Mutations are never
// retried since no store operation is idempotent.
func retry(ctx context.Context, f func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), maxRetries), ctx)

	return backoff.Retry(func() error {
		if err := f(); err != nil && !transient(err) {
			return backoff.Permanent(err)
		} else {
			return err
		}
	}, b)
}

func transient(err error) bool {
	var apierr *googleapi.Error
	if errors.As(err, &apierr) {
		return apierr.Code == http.StatusTooManyRequests || apierr.Code >= http.StatusInternalServerError
	}

	var neterr net.Error
	if errors.As(err, &neterr) {
		return neterr.Timeout()
	}

	return false
}
