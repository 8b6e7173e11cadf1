// Package gate checks submissions against a server-held shared secret before
// a write is allowed. The secret is a plain string stored at
// secrets/<kind>_password and compared as-is; that mirrors how the site has
// always worked, so anything stronger belongs behind the Verifier interface,
// not here.
package gate

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"portfolio/internal/docstore"
	"portfolio/internal/retry"
)

var (
	// ErrSecretMissing means the secret document is absent: a configuration
	// fault the user cannot fix by retrying.
	ErrSecretMissing = errors.New("gate secret is not configured")
	// ErrSecretMismatch means the candidate did not match. Retrying is
	// allowed without limit.
	ErrSecretMismatch = errors.New("gate secret does not match")
)

// Verifier reports nil when the candidate unlocks the given secret document.
// Exactly one of ErrSecretMissing, ErrSecretMismatch, or a wrapped fetch
// error comes back per attempt.
type Verifier interface {
	Verify(ctx context.Context, secretDoc, candidate string) error
}

// StoreVerifier fetches the secret from the document store.
type StoreVerifier struct {
	store *docstore.Store
	retry retry.Policy
}

func NewStoreVerifier(store *docstore.Store, policy retry.Policy) *StoreVerifier {
	return &StoreVerifier{store: store, retry: policy}
}

func (v *StoreVerifier) Verify(ctx context.Context, secretDoc, candidate string) error {
	var fields map[string]any
	err := v.retry.Do(ctx, func() error {
		var err error
		fields, err = v.store.GetDocument(ctx, "secrets/"+secretDoc)
		if errors.Is(err, docstore.ErrNotFound) {
			return nil // absence is a config fault, not a transient failure
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch secret %s: %w", secretDoc, err)
	}
	if fields == nil {
		return ErrSecretMissing
	}

	want, ok := fields["value"].(string)
	if !ok {
		return ErrSecretMissing
	}
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(want)) != 1 {
		return ErrSecretMismatch
	}
	return nil
}
