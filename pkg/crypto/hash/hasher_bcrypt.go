package hash

import (
	"context"

	"github.com/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

type Bcrypt struct {
	c *BcryptConfiguration
}

type BcryptConfiguration struct {
	// Zero means bcrypt.DefaultCost.
	Cost int
}

func NewHasherBcrypt(c *BcryptConfiguration) *Bcrypt {
	return &Bcrypt{c: c}
}

func (h *Bcrypt) cost() int {
	if h.c.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return h.c.Cost
}

func (h *Bcrypt) Generate(ctx context.Context, password []byte) ([]byte, error) {

	if err := validateBcryptPasswordLength(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword(password, h.cost())
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return hash, nil
}

func validateBcryptPasswordLength(password []byte) error {
	// Bcrypt truncates the password to the first 72 bytes, following the OpenBSD implementation,
	// so if password is longer than 72 bytes, function returns an error
	// See https://en.wikipedia.org/wiki/Bcrypt#User_input
	if len(password) > 72 {
		return errors.New("password cannot exceed 72 bytes")
	}
	return nil
}

func (h *Bcrypt) Verify(ctx context.Context, password, hash []byte) (bool, error) {
	err := bcrypt.CompareHashAndPassword(hash, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Wrap(ErrInvalidHash, err.Error())
	}
}

func (h *Bcrypt) NeedsRehash(hash []byte) bool {
	cost, err := bcrypt.Cost(hash)
	return err != nil || cost != h.cost()
}

func (h *Bcrypt) Understands(hash []byte) bool {
	return IsBcryptHash(hash)
}
