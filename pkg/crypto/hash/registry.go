package hash

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pkg/errors"
)

// Registry makes new hashes with one default hasher and verifies stored
// hashes with whichever registered hasher understands them, so several
// formats can be live during a migration.
type Registry struct {
	def     Hasher
	hashers []Hasher
	log     *log.Helper
}

var _ HashProvider = (*Registry)(nil)

// NewRegistry returns a Registry generating with def. Stored hashes are
// matched against def first, then the others in order.
func NewRegistry(logger log.Logger, def Hasher, others ...Hasher) *Registry {
	if logger == nil {
		logger = log.DefaultLogger
	}
	return &Registry{
		def:     def,
		hashers: append([]Hasher{def}, others...),
		log:     log.NewHelper(log.With(logger, "module", "hash/registry")),
	}
}

func (r *Registry) Hasher(ctx context.Context) Hasher {
	return r.def
}

// Generate hashes secret with the default hasher.
func (r *Registry) Generate(ctx context.Context, secret []byte) ([]byte, error) {
	return r.def.Generate(ctx, secret)
}

// Verify checks secret with the first hasher that understands hash.
func (r *Registry) Verify(ctx context.Context, secret, hash []byte) (bool, error) {
	h := r.find(hash)
	if h == nil {
		r.log.WithContext(ctx).Warnf("unrecognised hash format, length %d", len(hash))
		return false, errors.WithStack(ErrUnknownHashFormat)
	}
	return h.Verify(ctx, secret, hash)
}

// Understands reports whether any registered hasher understands hash.
func (r *Registry) Understands(hash []byte) bool {
	return r.find(hash) != nil
}

// NeedsRehash reports whether hash should be replaced with a fresh one from
// the default hasher. Call it after a successful Verify.
func (r *Registry) NeedsRehash(hash []byte) bool {
	h := r.find(hash)
	if h != r.def {
		return true
	}
	if rh, ok := h.(rehasher); ok {
		return rh.NeedsRehash(hash)
	}
	return false
}

func (r *Registry) find(hash []byte) Hasher {
	for _, h := range r.hashers {
		if h.Understands(hash) {
			return h
		}
	}
	return nil
}
