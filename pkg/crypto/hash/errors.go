package hash

import "github.com/pkg/errors"

var (
	ErrInvalidHash                 = errors.New("the encoded hash is not in the correct format")
	ErrIncompatibleVersion         = errors.New("incompatible version of the hash format")
	ErrUnknownHashFormat           = errors.New("no hasher understands the encoded hash")
	ErrUnsupported                 = errors.New("operation not supported by this hasher")

	ErrEmptyPepper       = errors.New("pepper must not be empty")
	ErrInvalidIterations = errors.New("iterations must be at least 1")
	ErrInvalidSalt       = errors.New("salt has the wrong length")
	ErrRandomSource      = errors.New("random source failed")
)

// randomSourceError keeps the reader's error inspectable while matching
// ErrRandomSource.
type randomSourceError struct {
	err error
}

func (e *randomSourceError) Error() string {
	return ErrRandomSource.Error() + ": " + e.err.Error()
}

func (e *randomSourceError) Is(target error) bool {
	return target == ErrRandomSource
}

func (e *randomSourceError) Unwrap() error {
	return e.err
}

func randomSourceFailure(err error) error {
	return errors.WithStack(&randomSourceError{err: err})
}
