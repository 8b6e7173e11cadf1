// Package retry provides a small pluggable retry policy with exponential
// backoff. The default wired throughout the service is None, a single
// attempt, matching the observed behavior of the site this backend serves.
package retry

import (
	"context"
	"time"
)

type Policy struct {
	MaxAttempts int
	Initial     time.Duration
	Multiplier  float64
	Max         time.Duration
}

// None performs exactly one attempt.
var None = Policy{MaxAttempts: 1}

// Do runs fn until it succeeds, attempts are exhausted, or the context is
// canceled while waiting out a backoff. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	backoff := p.Initial
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 || backoff <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if p.Multiplier > 1 {
			backoff = time.Duration(float64(backoff) * p.Multiplier)
			if p.Max > 0 && backoff > p.Max {
				backoff = p.Max
			}
		}
	}
	return err
}
