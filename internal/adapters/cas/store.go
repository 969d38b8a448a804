// Package cas implements the content-addressed layer cache.
package cas

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"

	"github.com/slab-build/slab/internal/core/domain"
	"github.com/slab-build/slab/internal/core/ports"
)

var _ ports.LayerCache = (*Store)(nil)

// Store implements ports.LayerCache on disk. Layer metadata lives in a flat
// JSON manifest; each layer's delta files live in a blob directory addressed
// by the layer fingerprint. The layout round-trips across process restarts.
//
// A fingerprint's layer content is immutable for the cache's lifetime:
// entries are only ever added, or removed by explicit eviction. Concurrent
// builds for the same fingerprint collapse into a single execution via
// per-fingerprint single-flight, so unrelated fingerprints never contend on
// an execution lock.
type Store struct {
	dir string

	mu       sync.RWMutex
	manifest map[domain.Fingerprint]*domain.Layer

	group singleflight.Group
}

// NewStore creates a layer cache rooted at the given directory.
func NewStore(dir string) (*Store, error) {
	s := &Store{
		dir:      filepath.Clean(dir),
		manifest: make(map[domain.Fingerprint]*domain.Layer),
	}

	if err := os.MkdirAll(filepath.Join(s.dir, "layers"), 0o750); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) manifestPath() string {
	return filepath.Join(s.dir, "manifest.json")
}

func (s *Store) blobPath(fp domain.Fingerprint) string {
	return filepath.Join(s.dir, "layers", fp.Algorithm(), fp.Encoded())
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.manifestPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.manifest); err != nil {
		return zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	return nil
}

// save persists the manifest. Callers must hold mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.manifest, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.manifestPath(), data, 0o644); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

// Lookup returns the cached layer for fp, stamping its last use.
func (s *Store) Lookup(fp domain.Fingerprint) (*domain.Layer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	layer, ok := s.manifest[fp]
	if !ok {
		return nil, false, nil
	}

	layer.LastUsedAt = time.Now().UTC()
	if err := s.save(); err != nil {
		return nil, false, err
	}

	cp := *layer
	return &cp, true, nil
}

// Insert records a committed layer under fp. Re-inserting matching content is
// a no-op; differing content for an existing fingerprint signals a hashing
// bug or non-determinism upstream and is reported as cache corruption.
func (s *Store) Insert(fp domain.Fingerprint, layer *domain.Layer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.manifest[fp]; ok {
		if existing.DiffDigest == layer.DiffDigest {
			return nil
		}
		return zerr.With(
			zerr.With(zerr.Wrap(domain.ErrCacheCorruption, "conflicting layer content for fingerprint"),
				"fingerprint", fp.String()),
			"have", existing.DiffDigest.String(),
		)
	}

	cp := *layer
	cp.Fingerprint = fp
	now := time.Now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.LastUsedAt = now
	s.manifest[fp] = &cp

	return s.save()
}

// Evict garbage-collects layers matching the policy. Nothing is evicted
// implicitly; a zero policy removes nothing.
func (s *Store) Evict(policy domain.EvictPolicy) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	removed := 0

	for fp, layer := range s.manifest {
		stale := policy.All ||
			(policy.UnusedFor > 0 && now.Sub(layer.LastUsedAt) > policy.UnusedFor)
		if !stale {
			continue
		}

		if err := os.RemoveAll(s.blobPath(fp)); err != nil {
			return removed, zerr.With(zerr.Wrap(err, "failed to remove layer blob"), "fingerprint", fp.String())
		}
		delete(s.manifest, fp)
		removed++
	}

	if removed > 0 {
		if err := s.save(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// Materialize returns the layer for fp, invoking build on a miss. Concurrent
// requesters for the same fingerprint wait for a single execution instead of
// duplicating the work. The boolean reports whether this caller's build
// function ran, which tells the executor whether its staging filesystem
// already carries the layer's changes.
func (s *Store) Materialize(
	ctx context.Context,
	fp domain.Fingerprint,
	build ports.BuildFunc,
) (*domain.Layer, bool, error) {
	executed := false

	v, err, _ := s.group.Do(fp.String(), func() (any, error) {
		// Re-check after waiting: a concurrent build may have committed the
		// layer while this caller queued.
		if layer, ok, err := s.Lookup(fp); err != nil {
			return nil, err
		} else if ok {
			return layer, nil
		}

		executed = true
		return build(ctx)
	})
	if err != nil {
		return nil, executed, err
	}

	return v.(*domain.Layer), executed, nil
}
