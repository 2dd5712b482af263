package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	katSalt   = "AAAAAAAAAAAAAAAA"
	katPepper = "test-pepper"
)

func TestDeriveKeyKnownAnswer(t *testing.T) {
	key, err := DeriveKey([]byte("hello"), katSalt, katPepper, 1000, nil)
	require.NoError(t, err)
	assert.Len(t, key, sha512.Size)
	assert.Equal(t,
		"f3bfda625aa63b4b36c70f5a02104ed1ffa66d83577d86334200f1ff45987d5e66d99dd3c665ac200ba85efaf0ddcb620621ae0f3d5e586c64ae9c59160ddbbe",
		hex.EncodeToString(key))
	assert.Equal(t,
		"87/aYlqmO0s2xw9aAhBO0f+mbYNXfYYzQgDx/0WYfV5m2Z3TxmWsIAuoXvrw3ctiBiGuDz1eWGxkrpxZFg3bvg==",
		base64.StdEncoding.EncodeToString(key))
}

func TestDeriveKeyDeterministic(t *testing.T) {
	a, err := DeriveKey([]byte("hello"), katSalt, katPepper, 1000, nil)
	require.NoError(t, err)
	b, err := DeriveKey([]byte("hello"), katSalt, katPepper, 1000, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDeriveKeySingleRoundIsHMAC(t *testing.T) {
	mac := hmac.New(sha512.New, []byte("pw"))
	mac.Write([]byte(katSalt + katPepper))

	key, err := DeriveKey([]byte("pw"), katSalt, katPepper, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, mac.Sum(nil), key)
}

func TestDeriveKeyTwoRounds(t *testing.T) {
	mac := hmac.New(sha512.New, []byte("pw"))
	mac.Write([]byte(katSalt + katPepper))
	first := mac.Sum(nil)

	mac = hmac.New(sha512.New, []byte("pw"))
	mac.Write(first)
	mac.Write([]byte(katPepper))
	second := mac.Sum(nil)

	want := make([]byte, len(first))
	for i := range want {
		want[i] = first[i] ^ second[i]
	}

	key, err := DeriveKey([]byte("pw"), katSalt, katPepper, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, want, key)
}

func TestDeriveKeyEmptyPassword(t *testing.T) {
	key, err := DeriveKey(nil, katSalt, katPepper, 1, nil)
	require.NoError(t, err)
	assert.Equal(t,
		"Eg34uoqDtGRs2nnbkWuz+pVgnsEExqHTgOMKdFQPxlalo4AzQOiAF+XWAqyhCfgrjX5HblHmhYEg0RLhp2mgMw==",
		base64.StdEncoding.EncodeToString(key))
}

func TestDeriveKeyCustomDigest(t *testing.T) {
	key, err := DeriveKey([]byte("hello"), katSalt, katPepper, 1000, sha256.New)
	require.NoError(t, err)
	assert.Equal(t, "4ce723170df4ac60668b58c1955b6d599f1081c04283e96e057f85a3ba7f137b", hex.EncodeToString(key))
}

func TestDeriveKeyInputsMatter(t *testing.T) {
	base, err := DeriveKey([]byte("hello"), katSalt, katPepper, 10, nil)
	require.NoError(t, err)

	for name, derive := range map[string]func() ([]byte, error){
		"password":   func() ([]byte, error) { return DeriveKey([]byte("hellO"), katSalt, katPepper, 10, nil) },
		"salt":       func() ([]byte, error) { return DeriveKey([]byte("hello"), "BAAAAAAAAAAAAAAA", katPepper, 10, nil) },
		"pepper":     func() ([]byte, error) { return DeriveKey([]byte("hello"), katSalt, "other-pepper", 10, nil) },
		"iterations": func() ([]byte, error) { return DeriveKey([]byte("hello"), katSalt, katPepper, 11, nil) },
	} {
		t.Run(name, func(t *testing.T) {
			other, err := derive()
			require.NoError(t, err)
			assert.NotEqual(t, base, other)
		})
	}
}

func TestDeriveKeyInvalidIterations(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := DeriveKey([]byte("hello"), katSalt, katPepper, n, nil)
		assert.True(t, errors.Is(err, ErrInvalidIterations), "iterations %d", n)
	}
}

func TestIterations(t *testing.T) {
	assert.Equal(t, 5000, Iterations(DefaultIterationFactor))
	assert.Equal(t, 1000, Iterations(1))
}
