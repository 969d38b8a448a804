package cas

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"go.trai.ch/zerr"

	"github.com/slab-build/slab/internal/core/domain"
)

// Commit stores the delta of rootfs under fp as a new layer. The delta files
// are copied into a blob directory, the diff digest is computed over the
// sorted file paths and their content plus any whiteouts, and the resulting
// layer is inserted into the manifest. An empty delta commits an empty layer
// so metadata instructions keep the fingerprint chain unbroken.
func (s *Store) Commit(fp domain.Fingerprint, rootfs string, delta domain.Delta) (*domain.Layer, error) {
	added := append([]string(nil), delta.Added...)
	removed := append([]string(nil), delta.Removed...)
	sort.Strings(added)
	sort.Strings(removed)

	tmp := filepath.Join(s.dir, "layers", ".tmp-"+uuid.NewString())
	if err := os.MkdirAll(tmp, 0o750); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	defer os.RemoveAll(tmp) //nolint:errcheck // Best effort cleanup

	digester := digest.Canonical.Digester()
	h := digester.Hash()
	var size int64

	for _, rel := range added {
		src, err := securejoin.SecureJoin(rootfs, rel)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to resolve delta path"), "path", rel)
		}

		info, err := os.Stat(src)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to stat delta file"), "path", src)
		}
		size += info.Size()

		_, _ = io.WriteString(h, "f:"+rel)
		_, _ = h.Write([]byte{0})
		if err := copyAndHash(src, filepath.Join(tmp, filepath.FromSlash(rel)), info.Mode(), h); err != nil {
			return nil, err
		}
	}
	for _, rel := range removed {
		_, _ = io.WriteString(h, "w:"+rel)
		_, _ = h.Write([]byte{0})
	}

	layer := &domain.Layer{
		Fingerprint: fp,
		DiffDigest:  digester.Digest(),
		Files:       added,
		Whiteouts:   removed,
		Size:        size,
		CreatedAt:   time.Now().UTC(),
	}

	blob := s.blobPath(fp)
	if _, err := os.Stat(blob); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(blob), 0o750); err != nil {
			return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
		}
		if err := os.Rename(tmp, blob); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to move layer blob into place"), "fingerprint", fp.String())
		}
	}

	if err := s.Insert(fp, layer); err != nil {
		return nil, err
	}
	return layer, nil
}

// Apply replays a cached layer's delta onto rootfs: whiteouts are removed,
// then the blob's files are copied in place.
func (s *Store) Apply(layer *domain.Layer, rootfs string) error {
	blob := s.blobPath(layer.Fingerprint)

	for _, rel := range layer.Whiteouts {
		target, err := securejoin.SecureJoin(rootfs, rel)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to resolve whiteout path"), "path", rel)
		}
		if err := os.RemoveAll(target); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to apply whiteout"), "path", target)
		}
	}

	for _, rel := range layer.Files {
		src := filepath.Join(blob, filepath.FromSlash(rel))
		info, err := os.Stat(src)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "layer blob file missing"), "path", src)
		}

		dst, err := securejoin.SecureJoin(rootfs, rel)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to resolve layer path"), "path", rel)
		}
		if err := copyAndHash(src, dst, info.Mode(), io.Discard); err != nil {
			return err
		}
	}

	return nil
}

// copyAndHash copies src to dst with the given mode while teeing the content
// into hash.
func copyAndHash(src, dst string, mode os.FileMode, hash io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create blob directory"), "path", dst)
	}

	in, err := os.Open(src) //nolint:gosec // Path is contained by the caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open blob source"), "path", src)
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm()) //nolint:gosec // Path is contained by the caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create blob file"), "path", dst)
	}

	if _, err := io.Copy(io.MultiWriter(out, hash), in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy blob file"), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close blob file"), "path", dst)
	}

	// OpenFile applies the mode only when it creates the file, so an existing
	// destination keeps its old permissions unless chmodded explicitly.
	if err := os.Chmod(dst, mode.Perm()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set blob file mode"), "path", dst)
	}
	return nil
}
