package hash

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	gohash "hash"
	"io"
	"strconv"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
)

const (
	pepperChainID      = "pchain"
	pepperChainVersion = 1

	// MinPepperLength is the shortest pepper accepted without a warning.
	MinPepperLength = 80

	// stored round counts above configured*maxIterationsMultiplier are rejected
	maxIterationsMultiplier = 1000
)

// PepperChain hashes passwords with the peppered HMAC chain of DeriveKey.
//
// The default output is the legacy form: salt followed by the base64 key,
// with no delimiter and no parameters. With Versioned set the output is
// $pchain$v=1$i=<iterations>$<salt><key>, which keeps verifying after the
// iteration factor is changed.
type PepperChain struct {
	c          PepperChainConfiguration
	iterations int
	keyLength  int
	log        *log.Helper
}

type PepperChainConfiguration struct {
	// Site-wide secret mixed into every round. Required.
	Pepper string
	// Rounds are IterationFactor*1000. Zero means DefaultIterationFactor.
	IterationFactor int
	// Salt length in bytes. Salts are ASCII, so this is also the character
	// count. Zero means DefaultSaltLength.
	SaltLength int
	// Keyed hash primitive. Nil means SHA-512.
	Digest func() gohash.Hash
	// Salt randomness. Nil means crypto/rand.
	Rand      io.Reader
	Versioned bool
}

// NewHasherPepperChain validates c and returns a ready hasher. An empty pepper
// is a configuration error and must stop startup.
func NewHasherPepperChain(c *PepperChainConfiguration, logger log.Logger) (*PepperChain, error) {
	if logger == nil {
		logger = log.DefaultLogger
	}
	helper := log.NewHelper(log.With(logger, "module", "hash/pchain"))

	cfg := *c
	if cfg.Pepper == "" {
		return nil, errors.WithStack(ErrEmptyPepper)
	}
	if len(cfg.Pepper) < MinPepperLength {
		helper.Warnf("pepper is %d characters, at least %d recommended", len(cfg.Pepper), MinPepperLength)
	}
	switch {
	case cfg.IterationFactor < 0:
		return nil, errors.Wrapf(ErrInvalidIterations, "iteration factor %d", cfg.IterationFactor)
	case cfg.IterationFactor == 0:
		cfg.IterationFactor = DefaultIterationFactor
	}
	switch {
	case cfg.SaltLength < 0:
		return nil, errors.Wrapf(ErrInvalidSalt, "salt length %d", cfg.SaltLength)
	case cfg.SaltLength == 0:
		cfg.SaltLength = DefaultSaltLength
	}
	if cfg.Digest == nil {
		cfg.Digest = sha512.New
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}

	return &PepperChain{
		c:          cfg,
		iterations: Iterations(cfg.IterationFactor),
		keyLength:  base64.StdEncoding.EncodedLen(cfg.Digest().Size()),
		log:        helper,
	}, nil
}

// EncodedLength is the length of a legacy-form hash.
func (h *PepperChain) EncodedLength() int {
	return h.c.SaltLength + h.keyLength
}

// Hash derives a key for password under a fresh salt.
func (h *PepperChain) Hash(password string) (string, error) {
	salt, err := GenerateSaltFrom(h.c.Rand, h.c.SaltLength)
	if err != nil {
		return "", err
	}
	return h.HashWithSalt(password, salt)
}

// HashWithSalt derives a key for password under the given salt, which must be
// exactly SaltLength bytes of the alphabet GenerateSalt draws from.
func (h *PepperChain) HashWithSalt(password, salt string) (string, error) {
	if len(salt) != h.c.SaltLength {
		return "", errors.Wrapf(ErrInvalidSalt, "want %d bytes, got %d", h.c.SaltLength, len(salt))
	}
	if !IsValidSalt(salt) {
		return "", errors.Wrap(ErrInvalidSalt, "character outside the base64 alphabet")
	}
	return h.encode(password, salt, h.iterations, h.c.Versioned)
}

// Compare reports whether password produced stored. Malformed or short
// hashes report false.
func (h *PepperChain) Compare(password, stored string) bool {
	ok, _ := h.compare(password, stored)
	return ok
}

func (h *PepperChain) compare(password, stored string) (bool, error) {
	iterations, body, versioned, err := h.parse(stored)
	if err != nil {
		return false, err
	}
	if len(body) < h.c.SaltLength {
		return false, errors.Wrap(ErrInvalidHash, "shorter than salt")
	}
	candidate, err := h.encode(password, body[:h.c.SaltLength], iterations, versioned)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1, nil
}

func (h *PepperChain) encode(password, salt string, iterations int, versioned bool) (string, error) {
	key, err := DeriveKey([]byte(password), salt, h.c.Pepper, iterations, h.c.Digest)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(salt) + h.keyLength + 32)
	if versioned {
		fmt.Fprintf(&b, "$%s$v=%d$i=%d$", pepperChainID, pepperChainVersion, iterations)
	}
	b.WriteString(salt)
	b.WriteString(base64.StdEncoding.EncodeToString(key))
	return b.String(), nil
}

// maxIterations bounds the round count read from a stored hash.
func (h *PepperChain) maxIterations() int {
	return h.iterations * maxIterationsMultiplier
}

// parse splits stored into its round count and salt+key body. Legacy hashes
// carry no parameters and are assumed to use the configured round count.
func (h *PepperChain) parse(stored string) (iterations int, body string, versioned bool, err error) {
	if !strings.HasPrefix(stored, "$") {
		return h.iterations, stored, false, nil
	}

	// ["", "pchain", "v=1", "i=5000", "<salt><key>"]
	parts := strings.SplitN(stored, "$", 5)
	if len(parts) != 5 || parts[1] != pepperChainID {
		return 0, "", false, ErrInvalidHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, "", false, errors.Wrap(ErrInvalidHash, "version")
	}
	if version != pepperChainVersion {
		return 0, "", false, errors.Wrapf(ErrIncompatibleVersion, "pchain v=%d", version)
	}
	n, ok := strings.CutPrefix(parts[3], "i=")
	if !ok {
		return 0, "", false, errors.Wrap(ErrInvalidHash, "iterations")
	}
	iterations, err = strconv.Atoi(n)
	if err != nil || iterations < 1 {
		return 0, "", false, errors.Wrap(ErrInvalidHash, "iterations")
	}
	if iterations > h.maxIterations() {
		return 0, "", false, errors.Wrapf(ErrInvalidHash, "iterations %d above limit %d", iterations, h.maxIterations())
	}
	return iterations, parts[4], true, nil
}

func (h *PepperChain) Generate(ctx context.Context, password []byte) ([]byte, error) {
	encoded, err := h.Hash(string(password))
	if err != nil {
		return nil, err
	}
	return []byte(encoded), nil
}

func (h *PepperChain) Verify(ctx context.Context, password, hash []byte) (bool, error) {
	ok, err := h.compare(string(password), string(hash))
	if err != nil {
		h.log.WithContext(ctx).Debugf("unable to verify pchain hash: %v", err)
	}
	return ok, err
}

func (h *PepperChain) Understands(hash []byte) bool {
	if IsPepperChainHash(hash) {
		return true
	}
	return len(hash) == h.EncodedLength() && !strings.ContainsRune(string(hash), '$')
}

// NeedsRehash reports whether hash was made in another form or with another
// round count than this hasher would use now.
func (h *PepperChain) NeedsRehash(hash []byte) bool {
	iterations, _, versioned, err := h.parse(string(hash))
	if err != nil {
		return true
	}
	return versioned != h.c.Versioned || iterations != h.iterations
}
