package secretstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	name    string
	secret  Secret
	err     error
	delay   time.Duration
	reached bool
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Read(ctx context.Context, providerID string) (Secret, error) {
	f.reached = true
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return Secret{}, ctx.Err()
		}
	}
	return f.secret, f.err
}

func TestStoreReturnsFirstHit(t *testing.T) {
	miss := &fakeBackend{name: "miss", err: fmt.Errorf("%w: x", ErrNotFound)}
	hit := &fakeBackend{name: "hit", secret: NewSecret([]byte("sk-ant-TEST"))}
	never := &fakeBackend{name: "never", secret: NewSecret([]byte("should-not-be-reached"))}

	store := New(miss, hit, never)

	secret, err := store.Read(context.Background(), "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-TEST", string(secret.Bytes()))
	assert.True(t, miss.reached)
	assert.True(t, hit.reached)
	assert.False(t, never.reached, "chain must stop at the first hit")
}

func TestStoreFallsThroughAllMisses(t *testing.T) {
	a := &fakeBackend{name: "a", err: fmt.Errorf("%w: a", ErrNotFound)}
	b := &fakeBackend{name: "b", err: fmt.Errorf("%w: b", ErrNotFound)}

	store := New(a, b)
	_, err := store.Read(context.Background(), "mistral")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreTimesOutSlowBackend(t *testing.T) {
	slow := &fakeBackend{name: "slow", delay: 50 * time.Millisecond, secret: NewSecret([]byte("late"))}
	store := New(slow)
	store.timeout = 5 * time.Millisecond

	_, err := store.Read(context.Background(), "openai")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestStoreEmptyChainIsNotFound(t *testing.T) {
	store := New()
	_, err := store.Read(context.Background(), "groq")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSecretRedactsInFormatting(t *testing.T) {
	s := NewSecret([]byte("sk-very-secret"))
	formatted := fmt.Sprintf("%v", s)
	assert.NotContains(t, formatted, "sk-very-secret")
}

func TestSecretWipeZeroesBytes(t *testing.T) {
	s := NewSecret([]byte("sk-very-secret"))
	s.Wipe()
	for _, b := range s.Bytes() {
		assert.Equal(t, byte(0), b)
	}
}
