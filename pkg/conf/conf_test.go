package conf

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achuala/go-pwhash/pkg/crypto/hash"
)

const testConfig = `
hashing:
  algorithm: pchain
  pepper: file-pepper
  iteration_factor: 1
  salt_length: 16
  versioned: true
  argon2:
    parallelism: 1
    memory: 64KB
    iterations: 1
    salt_length: 16
    key_length: 32
  bcrypt:
    cost: 4
  accept_crypt: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv(PepperEnv, "")
	c, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "pchain", c.Algorithm)
	assert.Equal(t, "file-pepper", c.Pepper)
	assert.Equal(t, 1, c.IterationFactor)
	assert.True(t, c.Versioned)
	require.NotNil(t, c.Argon2)
	assert.Equal(t, "64KB", c.Argon2.Memory)
	require.NotNil(t, c.Bcrypt)
	assert.Equal(t, 4, c.Bcrypt.Cost)
	assert.True(t, c.AcceptCrypt)
}

func TestLoadPepperFromEnv(t *testing.T) {
	t.Setenv(PepperEnv, "env-pepper")
	c, err := Load(writeConfig(t, "hashing:\n  iteration_factor: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, "env-pepper", c.Pepper)
}

func TestLoadPepperEnvOverridesFile(t *testing.T) {
	t.Setenv(PepperEnv, "env-pepper")
	c, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.Equal(t, "env-pepper", c.Pepper)
	assert.Equal(t, 1, c.IterationFactor)
}

func TestLoadMissingPepper(t *testing.T) {
	t.Setenv(PepperEnv, "")
	_, err := Load(writeConfig(t, "hashing:\n  iteration_factor: 1\n"))
	assert.True(t, errors.Is(err, hash.ErrEmptyPepper))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, c := range map[string]Hashing{
		"negative factor": {Pepper: "p", IterationFactor: -1},
		"unknown":         {Pepper: "p", Algorithm: "md5"},
		"argon2 missing":  {Pepper: "p", Algorithm: AlgorithmArgon2id},
		"argon2 memory":   {Pepper: "p", Algorithm: AlgorithmArgon2id, Argon2: &Argon2{Memory: "lots"}},
		"scrypt missing":  {Pepper: "p", Algorithm: AlgorithmScrypt},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, c.Validate())
		})
	}
	assert.NoError(t, (&Hashing{Pepper: "p"}).Validate())
}

func TestNewRegistry(t *testing.T) {
	ctx := context.Background()
	logger := log.NewStdLogger(io.Discard)

	c := &Hashing{
		Pepper:          "pepper",
		IterationFactor: 1,
		Argon2:          &Argon2{Parallelism: 1, Memory: "64KB", Iterations: 1, SaltLength: 16, KeyLength: 32},
		Bcrypt:          &Bcrypt{Cost: 4},
	}
	chainRegistry, err := NewRegistry(c, logger)
	require.NoError(t, err)
	legacy, err := chainRegistry.Generate(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, legacy, 104)

	c.Algorithm = AlgorithmArgon2id
	argonRegistry, err := NewRegistry(c, logger)
	require.NoError(t, err)
	assert.IsType(t, &hash.Argon2{}, argonRegistry.Hasher(ctx))

	encoded, err := argonRegistry.Generate(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.True(t, hash.IsArgon2idHash(encoded))
	assert.False(t, argonRegistry.NeedsRehash(encoded))

	// legacy hashes keep verifying after the switch and are flagged for rehash
	ok, err := argonRegistry.Verify(ctx, []byte("hello"), legacy)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, argonRegistry.NeedsRehash(legacy))
}
