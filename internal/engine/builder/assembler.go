package builder

import (
	"slices"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/slab-build/slab/internal/core/domain"
)

// Assemble builds an immutable image descriptor from an ordered layer chain
// and its runtime metadata. The image ID is the digest of the ordered layer
// fingerprints, so identical chains always yield identical IDs.
func Assemble(layers []domain.Fingerprint, meta domain.ImageMetadata) (*domain.Image, error) {
	if len(layers) == 0 {
		return nil, domain.ErrEmptyLayerSequence
	}
	if meta.Workdir == "" {
		return nil, domain.ErrMissingWorkdir
	}

	digester := digest.Canonical.Digester()
	for _, fp := range layers {
		_, _ = digester.Hash().Write([]byte(fp.String()))
		_, _ = digester.Hash().Write([]byte{0})
	}

	return &domain.Image{
		ID:        digester.Digest(),
		Layers:    slices.Clone(layers),
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}, nil
}
