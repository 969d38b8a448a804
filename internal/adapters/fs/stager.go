package fs

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"go.trai.ch/zerr"

	"github.com/slab-build/slab/internal/core/ports"
)

var _ ports.ContextStager = (*Stager)(nil)

// Stager copies build context files into a staging filesystem. Destinations
// are contained inside the rootfs; absolute destinations address the image
// filesystem root.
type Stager struct{}

// NewStager creates a new Stager.
func NewStager() *Stager {
	return &Stager{}
}

// Stage resolves src inside contextDir and copies the matches to dest inside
// rootfs.
//
// A single file source copies to dest as the file name, unless dest ends
// with a slash or names an existing directory, in which case the file lands
// inside it under its own base name. Directory and multi-match sources treat
// dest as a directory.
func (s *Stager) Stage(contextDir, src, rootfs, dest string) error {
	matches, err := resolveContextPaths(contextDir, src)
	if err != nil {
		return err
	}

	destPath, err := securejoin.SecureJoin(rootfs, dest)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve destination"), "dest", dest)
	}

	destIsDir := strings.HasSuffix(dest, "/") || dest == "." || len(matches) > 1
	if info, err := os.Stat(destPath); err == nil && info.IsDir() {
		destIsDir = true
	}

	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to stat source"), "path", match)
		}

		switch {
		case info.IsDir():
			if err := copyTree(match, destPath); err != nil {
				return err
			}
		case destIsDir:
			if err := copyFile(match, filepath.Join(destPath, filepath.Base(match)), info.Mode()); err != nil {
				return err
			}
		default:
			if err := copyFile(match, destPath, info.Mode()); err != nil {
				return err
			}
		}
	}

	return nil
}

// copyTree copies the regular files of a directory tree rooted at src into
// dst, preserving relative layout and file modes.
func copyTree(src, dst string) error {
	walker := NewWalker()
	for path := range walker.WalkFiles(src) {
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return zerr.Wrap(err, "failed to resolve relative path")
		}

		info, err := os.Stat(path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to stat source"), "path", path)
		}

		if err := copyFile(path, filepath.Join(dst, rel), info.Mode()); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create destination directory"), "path", dst)
	}

	in, err := os.Open(src) //nolint:gosec // Path is resolved inside the build context
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open source"), "path", src)
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm()) //nolint:gosec // Path is contained in rootfs
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create destination"), "path", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close destination"), "path", dst)
	}

	// OpenFile applies the mode only when it creates the file, so an existing
	// destination keeps its old permissions unless chmodded explicitly.
	if err := os.Chmod(dst, mode.Perm()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set destination mode"), "path", dst)
	}
	return nil
}
