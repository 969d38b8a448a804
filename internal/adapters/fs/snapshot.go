package fs

import (
	iofs "io/fs"
	"path/filepath"

	"go.trai.ch/zerr"

	"github.com/slab-build/slab/internal/core/domain"
	"github.com/slab-build/slab/internal/core/ports"
)

var _ ports.Snapshotter = (*Snapshotter)(nil)

// Snapshotter captures the observable state of a staging filesystem. Two
// captures around an instruction's execution yield the instruction's layer
// delta.
type Snapshotter struct{}

// NewSnapshotter creates a new Snapshotter.
func NewSnapshotter() *Snapshotter {
	return &Snapshotter{}
}

// Capture records the content hash and mode of every regular file under
// rootfs, keyed by rootfs-relative path.
func (s *Snapshotter) Capture(rootfs string) (domain.Snapshot, error) {
	snap := make(domain.Snapshot)

	err := filepath.WalkDir(rootfs, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		hash, err := ComputeFileHash(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(rootfs, path)
		if err != nil {
			return err
		}

		snap[filepath.ToSlash(rel)] = domain.FileState{Hash: hash, Mode: info.Mode()}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to snapshot rootfs"), "rootfs", rootfs)
	}

	return snap, nil
}
