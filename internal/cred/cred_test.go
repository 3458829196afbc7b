package cred

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyring_SetThenGet(t *testing.T) {
	keyring.MockInit()
	store := Keyring{}

	require.NoError(t, store.Set("tracktray", "user@example.com", "hunter2"))

	secret, err := store.Get("tracktray", "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", secret)
}

func TestKeyring_MissingSecretIsNotFound(t *testing.T) {
	keyring.MockInit()

	_, err := Keyring{}.Get("tracktray", "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeyring_TransientFailureIsUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("dbus timeout"))

	_, err := Keyring{}.Get("tracktray", "user@example.com")
	assert.ErrorIs(t, err, ErrUnavailable)

	err = Keyring{}.Set("tracktray", "user@example.com", "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}
