package hash

import (
	"context"

	"github.com/go-crypt/crypt"
	"github.com/pkg/errors"
)

// Crypt verifies digests produced elsewhere, such as $pbkdf2-sha512$ or $6$
// strings imported from another system. It cannot generate hashes; pair it
// with a Registry default so old digests are replaced on next login.
type Crypt struct{}

func NewHasherCrypt() *Crypt {
	return &Crypt{}
}

func (h *Crypt) Generate(ctx context.Context, password []byte) ([]byte, error) {
	return nil, errors.Wrap(ErrUnsupported, "crypt hasher is verify only")
}

func (h *Crypt) Verify(ctx context.Context, password, hash []byte) (bool, error) {
	valid, err := crypt.CheckPassword(string(password), string(hash))
	if err != nil {
		return false, errors.Wrap(ErrInvalidHash, err.Error())
	}
	return valid, nil
}

// NeedsRehash is always true: nothing verified here was made by a hasher
// that can generate.
func (h *Crypt) NeedsRehash(hash []byte) bool {
	return true
}

func (h *Crypt) Understands(hash []byte) bool {
	return IsCryptHash(hash)
}
