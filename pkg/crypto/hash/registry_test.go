package hash_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achuala/go-pwhash/pkg/crypto/hash"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	chain := newChain(t, hash.PepperChainConfiguration{})
	bcrypt := hash.NewHasherBcrypt(&hash.BcryptConfiguration{Cost: 4})
	r := hash.NewRegistry(discard, chain, bcrypt)

	assert.Same(t, chain, r.Hasher(ctx))

	encoded, err := r.Generate(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, encoded, chain.EncodedLength())
	assert.False(t, r.NeedsRehash(encoded))

	ok, err := r.Verify(ctx, []byte("hello"), encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	// bcrypt hashes still verify but should be replaced
	old, err := bcrypt.Generate(ctx, []byte("hello"))
	require.NoError(t, err)
	ok, err = r.Verify(ctx, []byte("hello"), old)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, r.NeedsRehash(old))

	ok, err = r.Verify(ctx, []byte("hello"), []byte("unknown"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, hash.ErrUnknownHashFormat)
	assert.False(t, r.Understands([]byte("unknown")))
	assert.True(t, r.NeedsRehash([]byte("unknown")))
}
