package hash

import (
	"context"
)

// Hasher provides methods for generating and comparing secret hashes.
type Hasher interface {
	// Generate returns a hash derived from the secret or an error if the hash method failed.
	Generate(ctx context.Context, secret []byte) ([]byte, error)

	// Verify reports whether the secret matches the encoded hash. A mismatch is
	// not an error; errors are reserved for hashes this hasher cannot parse.
	Verify(ctx context.Context, secret, hash []byte) (bool, error)

	// Understands returns whether the given hash can be understood by this hasher.
	Understands(hash []byte) bool
}

type HashProvider interface {
	Hasher(ctx context.Context) Hasher
}

// rehasher is implemented by hashers that can tell when a stored hash was made
// with parameters other than their current ones.
type rehasher interface {
	NeedsRehash(hash []byte) bool
}
