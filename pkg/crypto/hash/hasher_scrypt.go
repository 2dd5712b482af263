package hash

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/bits"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

type Scrypt struct {
	c *ScryptConfiguration
}

type ScryptConfiguration struct {
	// CPU/memory cost N, a power of two. Encoded as ln=log2(N).
	Cost            uint32
	Block           uint32
	Parallelization uint32
	SaltLength      uint32
	KeyLength       uint32
}

func NewHasherScrypt(c *ScryptConfiguration) *Scrypt {
	return &Scrypt{c: c}
}

func (h *Scrypt) Generate(ctx context.Context, password []byte) ([]byte, error) {
	salt := make([]byte, h.c.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, randomSourceFailure(err)
	}
	hash, err := scrypt.Key(password, salt, int(h.c.Cost), int(h.c.Block), int(h.c.Parallelization), int(h.c.KeyLength))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	// format: $scrypt$ln=<log2 cost>,r=<block>,p=<parrrelization>$<salt>$<hash>
	var b bytes.Buffer
	if _, err := fmt.Fprintf(
		&b,
		"$scrypt$ln=%d,r=%d,p=%d$%s$%s",
		bits.Len32(h.c.Cost)-1, h.c.Block, h.c.Parallelization,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(hash),
	); err != nil {
		return nil, errors.WithStack(err)
	}

	return b.Bytes(), nil
}

func (h *Scrypt) Verify(ctx context.Context, password, hash []byte) (bool, error) {
	parts := strings.Split(string(hash), "$")
	if len(parts) != 5 || parts[1] != "scrypt" {
		return false, ErrInvalidHash
	}
	var ln, block, parallel int
	if _, err := fmt.Sscanf(parts[2], "ln=%d,r=%d,p=%d", &ln, &block, &parallel); err != nil {
		return false, errors.Wrap(ErrInvalidHash, err.Error())
	}
	if ln < 1 || ln > 30 {
		return false, errors.Wrapf(ErrInvalidHash, "ln=%d", ln)
	}
	salt, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, errors.Wrap(ErrInvalidHash, err.Error())
	}
	key, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, errors.Wrap(ErrInvalidHash, err.Error())
	}
	// Derive the key from the other password using the same parameters.
	other, err := scrypt.Key(password, salt, 1<<ln, block, parallel, len(key))
	if err != nil {
		return false, errors.Wrap(ErrInvalidHash, err.Error())
	}
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func (h *Scrypt) Understands(hash []byte) bool {
	return IsScryptHash(hash)
}
