package hash

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	gohash "hash"

	"github.com/pkg/errors"
)

// DefaultIterationFactor multiplied by 1000 gives the default round count.
const DefaultIterationFactor = 5

// Iterations converts an iteration factor to a round count.
func Iterations(factor int) int {
	return factor * 1000
}

// DeriveKey runs the peppered HMAC chain and returns one digest-sized key.
//
// The password is the HMAC key for every round. The first round hashes
// salt||pepper, every later round hashes previous||pepper, and all round
// outputs are XORed together. Output length is the digest size of prf
// (SHA-512 when prf is nil); there is no block counter, so the chain cannot
// produce longer keys.
func DeriveKey(password []byte, salt, pepper string, iterations int, prf func() gohash.Hash) ([]byte, error) {
	if iterations < 1 {
		return nil, errors.Wrapf(ErrInvalidIterations, "got %d", iterations)
	}
	if prf == nil {
		prf = sha512.New
	}

	p := []byte(pepper)
	mac := hmac.New(prf, password)
	mac.Write([]byte(salt))
	mac.Write(p)
	block := mac.Sum(nil)

	acc := make([]byte, len(block))
	copy(acc, block)

	for i := 1; i < iterations; i++ {
		mac.Reset()
		mac.Write(block)
		mac.Write(p)
		block = mac.Sum(block[:0])
		subtle.XORBytes(acc, acc, block)
	}
	return acc, nil
}
