// Package cred wraps the system keyring behind a small store interface.
package cred

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// ErrUnavailable reports that the secure store could not produce a secret
// even after a retry. Fatal for the session: the caller must re-prompt for
// credentials.
var ErrUnavailable = errors.New("credential store unavailable")

// ErrNotFound reports that no secret is stored for the account.
var ErrNotFound = errors.New("credential not found")

// Store reads and writes secrets per service/account pair.
type Store interface {
	Get(service, account string) (string, error)
	Set(service, account, secret string) error
}

// Keyring is the Store backed by the OS keyring.
type Keyring struct{}

// Get fetches the secret, retrying once on a transient store failure before
// giving up. A missing secret is reported as ErrNotFound, not retried.
func (Keyring) Get(service, account string) (string, error) {
	secret, err := keyring.Get(service, account)
	if err == nil {
		return secret, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	secret, err = keyring.Get(service, account)
	if err == nil {
		return secret, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Set stores the secret.
func (Keyring) Set(service, account, secret string) error {
	if err := keyring.Set(service, account, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
