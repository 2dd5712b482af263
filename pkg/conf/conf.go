// Package conf loads hashing settings from a file and builds the hash
// Registry they describe.
package conf

import (
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
	_ "github.com/go-kratos/kratos/v2/encoding/yaml"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"

	"github.com/achuala/go-pwhash/pkg/crypto/hash"
)

const (
	envPrefix = "PWHASH_"
	// key of PWHASH_PEPPER once the env source strips the prefix
	pepperKey = "PEPPER"

	// PepperEnv overrides Hashing.Pepper when set, so the secret can stay out
	// of the config file.
	PepperEnv = envPrefix + pepperKey
)

const (
	AlgorithmPepperChain = "pchain"
	AlgorithmArgon2id    = "argon2id"
	AlgorithmScrypt      = "scrypt"
	AlgorithmBcrypt      = "bcrypt"
)

type Hashing struct {
	// Algorithm used for new hashes. Empty means pchain.
	Algorithm       string  `json:"algorithm"`
	Pepper          string  `json:"pepper"`
	IterationFactor int     `json:"iteration_factor"`
	SaltLength      int     `json:"salt_length"`
	Versioned       bool    `json:"versioned"`
	Argon2          *Argon2 `json:"argon2"`
	Scrypt          *Scrypt `json:"scrypt"`
	Bcrypt          *Bcrypt `json:"bcrypt"`
	// Verify imported PHC and crypt(3) digests through go-crypt.
	AcceptCrypt bool `json:"accept_crypt"`
}

type Argon2 struct {
	Parallelism uint8  `json:"parallelism"`
	Memory      string `json:"memory"`
	Iterations  uint32 `json:"iterations"`
	SaltLength  uint8  `json:"salt_length"`
	KeyLength   uint32 `json:"key_length"`
}

type Scrypt struct {
	Cost            uint32 `json:"cost"`
	Block           uint32 `json:"block"`
	Parallelization uint32 `json:"parallelization"`
	SaltLength      uint32 `json:"salt_length"`
	KeyLength       uint32 `json:"key_length"`
}

type Bcrypt struct {
	Cost int `json:"cost"`
}

type bootstrap struct {
	Hashing Hashing `json:"hashing"`
}

// Load reads the hashing section of the config file at path.
func Load(path string) (*Hashing, error) {
	c := config.New(config.WithSource(
		file.NewSource(path),
		env.NewSource(envPrefix),
	))
	defer c.Close()

	if err := c.Load(); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	var bc bootstrap
	if err := c.Scan(&bc); err != nil {
		return nil, errors.Wrapf(err, "scan config %s", path)
	}
	if p, err := c.Value(pepperKey).String(); err == nil && p != "" {
		bc.Hashing.Pepper = p
	}
	if err := bc.Hashing.Validate(); err != nil {
		return nil, err
	}
	return &bc.Hashing, nil
}

// Validate rejects settings that must stop startup.
func (h *Hashing) Validate() error {
	if h.Pepper == "" {
		return errors.Wrap(hash.ErrEmptyPepper, "hashing.pepper")
	}
	if h.IterationFactor < 0 {
		return errors.Wrapf(hash.ErrInvalidIterations, "hashing.iteration_factor %d", h.IterationFactor)
	}
	switch h.algorithm() {
	case AlgorithmPepperChain, AlgorithmBcrypt:
	case AlgorithmArgon2id:
		if h.Argon2 == nil {
			return errors.New("hashing.argon2 is required for argon2id")
		}
		if _, err := bytesize.Parse(h.Argon2.Memory); err != nil {
			return errors.Wrapf(err, "hashing.argon2.memory %q", h.Argon2.Memory)
		}
	case AlgorithmScrypt:
		if h.Scrypt == nil {
			return errors.New("hashing.scrypt is required for scrypt")
		}
	default:
		return errors.Errorf("unknown hashing.algorithm %q", h.Algorithm)
	}
	return nil
}

func (h *Hashing) algorithm() string {
	if h.Algorithm == "" {
		return AlgorithmPepperChain
	}
	return h.Algorithm
}

// NewRegistry builds a Registry generating with the configured algorithm.
// The pepper chain is always registered so legacy hashes keep verifying.
func NewRegistry(h *Hashing, logger log.Logger) (*hash.Registry, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	chain, err := hash.NewHasherPepperChain(&hash.PepperChainConfiguration{
		Pepper:          h.Pepper,
		IterationFactor: h.IterationFactor,
		SaltLength:      h.SaltLength,
		Versioned:       h.Versioned,
	}, logger)
	if err != nil {
		return nil, err
	}

	hashers := []hash.Hasher{chain}
	if h.Argon2 != nil {
		mem, _ := bytesize.Parse(h.Argon2.Memory)
		hashers = append(hashers, hash.NewHasherArgon2(&hash.Argon2Configuration{
			Parallelism: h.Argon2.Parallelism,
			Memory:      mem,
			Iterations:  h.Argon2.Iterations,
			SaltLength:  h.Argon2.SaltLength,
			KeyLength:   h.Argon2.KeyLength,
			Pepper:      h.Pepper,
		}))
	}
	if h.Scrypt != nil {
		hashers = append(hashers, hash.NewHasherScrypt(&hash.ScryptConfiguration{
			Cost:            h.Scrypt.Cost,
			Block:           h.Scrypt.Block,
			Parallelization: h.Scrypt.Parallelization,
			SaltLength:      h.Scrypt.SaltLength,
			KeyLength:       h.Scrypt.KeyLength,
		}))
	}
	cost := 0
	if h.Bcrypt != nil {
		cost = h.Bcrypt.Cost
	}
	hashers = append(hashers, hash.NewHasherBcrypt(&hash.BcryptConfiguration{Cost: cost}))
	if h.AcceptCrypt {
		// last: it claims every $-prefixed string
		hashers = append(hashers, hash.NewHasherCrypt())
	}

	def := pick(h.algorithm(), hashers)
	others := make([]hash.Hasher, 0, len(hashers)-1)
	for _, o := range hashers {
		if o != def {
			others = append(others, o)
		}
	}
	return hash.NewRegistry(logger, def, others...), nil
}

func pick(algorithm string, hashers []hash.Hasher) hash.Hasher {
	for _, h := range hashers {
		switch h.(type) {
		case *hash.PepperChain:
			if algorithm == AlgorithmPepperChain {
				return h
			}
		case *hash.Argon2:
			if algorithm == AlgorithmArgon2id {
				return h
			}
		case *hash.Scrypt:
			if algorithm == AlgorithmScrypt {
				return h
			}
		case *hash.Bcrypt:
			if algorithm == AlgorithmBcrypt {
				return h
			}
		}
	}
	return hashers[0]
}
