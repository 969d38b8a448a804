package fs

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/opencontainers/go-digest"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/slab-build/slab/internal/core/domain"
	"github.com/slab-build/slab/internal/core/ports"
)

var _ ports.Fingerprinter = (*Fingerprinter)(nil)

// Fingerprinter computes layer fingerprints. A fingerprint chains the parent
// layer's fingerprint with the instruction's type and literal arguments; copy
// instructions additionally fold in the byte content of every matched context
// file, so editing a source file invalidates the layer even when the
// instruction text is unchanged.
type Fingerprinter struct {
	walker *Walker
}

// NewFingerprinter creates a new Fingerprinter.
func NewFingerprinter(walker *Walker) *Fingerprinter {
	return &Fingerprinter{walker: walker}
}

// Fingerprint derives the fingerprint for executing instr on top of parent.
func (f *Fingerprinter) Fingerprint(
	instr domain.Instruction,
	parent domain.Fingerprint,
	contextDir string,
) (domain.Fingerprint, error) {
	digester := digest.Canonical.Digester()
	h := digester.Hash()

	writeField(h, string(parent))
	writeField(h, string(instr.Kind))

	switch instr.Kind {
	case domain.KindCopyFiles:
		writeField(h, instr.Src)
		writeField(h, instr.Dest)
		if err := f.hashContextFiles(h, contextDir, instr.Src); err != nil {
			return "", err
		}
	case domain.KindRunCommand:
		// Command side effects are opaque: the hash covers only the literal
		// argv and the parent chain. Non-deterministic commands defeat the
		// cache; that is a documented limitation.
		for _, arg := range instr.Argv {
			writeField(h, arg)
		}
	case domain.KindSetWorkdir:
		writeField(h, instr.Dir)
	case domain.KindSetEnv:
		writeField(h, instr.Key)
		writeField(h, instr.Value)
	}

	return domain.Fingerprint(digester.Digest()), nil
}

// writeField writes a NUL-terminated field so adjacent fields cannot
// collide.
func writeField(w io.Writer, s string) {
	_, _ = io.WriteString(w, s)
	_, _ = w.Write([]byte{0})
}

// hashContextFiles folds the content of every file matched by src into the
// digest, in deterministic path order. File contents are hashed
// concurrently.
func (f *Fingerprinter) hashContextFiles(w io.Writer, contextDir, src string) error {
	matches, err := resolveContextPaths(contextDir, src)
	if err != nil {
		return err
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to stat context path"), "path", match)
		}
		if info.IsDir() {
			for path := range f.walker.WalkFiles(match) {
				files = append(files, path)
			}
		} else {
			files = append(files, match)
		}
	}
	sort.Strings(files)

	hashes := make([]uint64, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	var mu sync.Mutex

	for i, path := range files {
		g.Go(func() error {
			hash, err := ComputeFileHash(path)
			if err != nil {
				return err
			}
			mu.Lock()
			hashes[i] = hash
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range files {
		rel, err := filepath.Rel(contextDir, path)
		if err != nil {
			rel = path
		}
		writeField(w, filepath.ToSlash(rel))
		if err := binary.Write(w, binary.LittleEndian, hashes[i]); err != nil {
			return zerr.Wrap(err, "failed to write hash to digest")
		}
	}

	return nil
}

// ComputeFileHash computes the XXHash of a file's content.
func ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}
