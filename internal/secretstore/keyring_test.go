package secretstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringBackendHitAndMiss(t *testing.T) {
	keyring.MockInit()
	backend := &KeyringBackend{}

	_, err := backend.Read(context.Background(), "openai")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, keyring.Set("thesystem/openai", "openai", "sk-openai-TEST"))

	secret, err := backend.Read(context.Background(), "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-openai-TEST", string(secret.Bytes()))
}

func TestKeyringBackendRotationTakesEffectImmediately(t *testing.T) {
	keyring.MockInit()
	backend := &KeyringBackend{}

	require.NoError(t, keyring.Set("thesystem/anthropic", "anthropic", "sk-ant-OLD"))
	secret, err := backend.Read(context.Background(), "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-OLD", string(secret.Bytes()))

	require.NoError(t, keyring.Set("thesystem/anthropic", "anthropic", "sk-ant-NEW"))
	secret, err = backend.Read(context.Background(), "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-NEW", string(secret.Bytes()))
}
