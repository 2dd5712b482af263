package hash

import (
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
)

// DefaultSaltLength is the number of characters in a generated salt.
const DefaultSaltLength = 16

// GenerateSalt returns a printable salt of exactly length characters read
// from crypto/rand.
func GenerateSalt(length int) (string, error) {
	return GenerateSaltFrom(rand.Reader, length)
}

// GenerateSaltFrom is GenerateSalt with an explicit random source. The source
// must be safe for concurrent use if the caller shares it between goroutines.
//
// The alphabet is unpadded standard base64, so the salt never contains the
// '$' separator used by the versioned format.
func GenerateSaltFrom(r io.Reader, length int) (string, error) {
	if length <= 0 {
		return "", errors.Wrapf(ErrInvalidSalt, "length %d", length)
	}
	// every 3 random bytes yield 4 characters
	raw := make([]byte, (length*3+3)/4)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", randomSourceFailure(err)
	}
	return base64.RawStdEncoding.EncodeToString(raw)[:length], nil
}

// IsValidSalt reports whether every byte of salt is in the unpadded standard
// base64 alphabet.
func IsValidSalt(salt string) bool {
	for i := 0; i < len(salt); i++ {
		switch c := salt[i]; {
		case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9', c == '+', c == '/':
		default:
			return false
		}
	}
	return true
}
