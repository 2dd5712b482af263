package hash

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/inhies/go-bytesize"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

type Argon2 struct {
	c *Argon2Configuration
}

type Argon2Configuration struct {
	Parallelism uint8
	Memory      bytesize.ByteSize
	Iterations  uint32
	SaltLength  uint8
	KeyLength   uint32
	// Optional. Appended to the secret before hashing, never stored.
	Pepper string
}

func NewHasherArgon2(c *Argon2Configuration) *Argon2 {
	return &Argon2{c: c}
}

func toKB(mem bytesize.ByteSize) uint32 {
	return uint32(mem / bytesize.KB)
}

func (h *Argon2) Generate(ctx context.Context, password []byte) ([]byte, error) {
	salt := make([]byte, h.c.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, randomSourceFailure(err)
	}

	hash := argon2.IDKey(h.peppered(password), salt, h.c.Iterations, toKB(h.c.Memory), h.c.Parallelism, h.c.KeyLength)

	var b bytes.Buffer
	if _, err := fmt.Fprintf(
		&b,
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, toKB(h.c.Memory), h.c.Iterations, h.c.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	); err != nil {
		return nil, errors.WithStack(err)
	}

	return b.Bytes(), nil
}

type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt, key   []byte
}

func decodeArgon2id(encoded []byte) (*argon2Params, error) {
	// ["", "argon2id", "v=19", "m=65536,t=3,p=2", "<salt>", "<hash>"]
	parts := strings.Split(string(encoded), "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, errors.Wrap(ErrInvalidHash, err.Error())
	}
	if version != argon2.Version {
		return nil, ErrIncompatibleVersion
	}

	p := &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return nil, errors.Wrap(ErrInvalidHash, err.Error())
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, errors.Wrap(ErrInvalidHash, err.Error())
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, errors.Wrap(ErrInvalidHash, err.Error())
	}
	return p, nil
}

func (h *Argon2) Verify(ctx context.Context, password, hash []byte) (bool, error) {
	p, err := decodeArgon2id(hash)
	if err != nil {
		return false, err
	}
	// Derive the key from the other password using the stored parameters.
	other := argon2.IDKey(h.peppered(password), p.salt, p.iterations, p.memory, p.parallelism, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(p.key, other) == 1, nil
}

func (h *Argon2) NeedsRehash(hash []byte) bool {
	p, err := decodeArgon2id(hash)
	if err != nil {
		return true
	}
	return p.memory != toKB(h.c.Memory) ||
		p.iterations != h.c.Iterations ||
		p.parallelism != h.c.Parallelism ||
		len(p.salt) != int(h.c.SaltLength) ||
		uint32(len(p.key)) != h.c.KeyLength
}

func (h *Argon2) Understands(hash []byte) bool {
	return IsArgon2idHash(hash)
}

func (h *Argon2) peppered(password []byte) []byte {
	if h.c.Pepper == "" {
		return password
	}
	return append(append(make([]byte, 0, len(password)+len(h.c.Pepper)), password...), h.c.Pepper...)
}
