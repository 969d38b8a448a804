package ports

import (
	"context"

	"github.com/slab-build/slab/internal/core/domain"
)

// BuildFunc produces a committed layer on a cache miss. It is invoked at most
// once per fingerprint across concurrent builds.
type BuildFunc func(ctx context.Context) (*domain.Layer, error)

// LayerCache is a content-addressed store mapping fingerprints to
// materialized filesystem layers. A fingerprint's layer content is immutable
// for the cache's lifetime; eviction is explicit.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type LayerCache interface {
	// Lookup returns the cached layer for fp, if any.
	Lookup(fp domain.Fingerprint) (*domain.Layer, bool, error)

	// Insert records a committed layer under fp. Inserting under an existing
	// fingerprint is a no-op when the content matches and
	// domain.ErrCacheCorruption when it differs.
	Insert(fp domain.Fingerprint, layer *domain.Layer) error

	// Commit stores the delta of rootfs under fp as a new layer blob and
	// inserts the resulting layer.
	Commit(fp domain.Fingerprint, rootfs string, delta domain.Delta) (*domain.Layer, error)

	// Apply replays a cached layer's delta onto rootfs.
	Apply(layer *domain.Layer, rootfs string) error

	// Materialize returns the layer for fp, building it via build on a miss.
	// Concurrent callers for the same fingerprint collapse into a single
	// execution; the boolean reports whether this caller's build function
	// ran.
	Materialize(ctx context.Context, fp domain.Fingerprint, build BuildFunc) (*domain.Layer, bool, error)

	// Evict garbage-collects layers matching the policy and returns how many
	// were removed.
	Evict(policy domain.EvictPolicy) (int, error)
}
