package hasher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap profile so the test suite stays fast
func testHasher() *Argon2 {
	return NewArgon2(Params{MemoryKiB: 8 * 1024, Iterations: 1, Parallelism: 1})
}

func TestHashAndVerify(t *testing.T) {
	h := testHasher()

	encoded, err := h.Hash(context.Background(), "password123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := h.Verify(context.Background(), encoded, "password123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(context.Background(), encoded, "wrongpassword")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	h := testHasher()

	first, err := h.Hash(context.Background(), "password123")
	require.NoError(t, err)
	second, err := h.Hash(context.Background(), "password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerify_MalformedHash(t *testing.T) {
	h := testHasher()

	for _, encoded := range []string{
		"",
		"not-a-phc-string",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	} {
		_, err := h.Verify(context.Background(), encoded, "password123")
		assert.Error(t, err, "input %q", encoded)
	}
}

func TestHash_CancelledContext(t *testing.T) {
	h := NewArgon2(DefaultParams())
	// fill the gate so the next call has to wait
	for i := 0; i < cap(h.gate); i++ {
		h.gate <- struct{}{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Hash(ctx, "password123")
	assert.ErrorIs(t, err, context.Canceled)
}
