package ports

import "github.com/slab-build/slab/internal/core/domain"

// ContextStager copies files from the build context into a staging
// filesystem.
//
//go:generate go run go.uber.org/mock/mockgen -source=stager.go -destination=mocks/mock_stager.go -package=mocks
type ContextStager interface {
	// Stage resolves src inside contextDir (a file, a directory, or a glob)
	// and copies the matches to dest inside rootfs. Sources outside the
	// context and destinations outside rootfs are rejected.
	Stage(contextDir, src, rootfs, dest string) error
}

// Snapshotter captures the state of a staging filesystem so instruction
// deltas can be computed.
type Snapshotter interface {
	// Capture records the content hash and mode of every file under rootfs.
	Capture(rootfs string) (domain.Snapshot, error)
}
