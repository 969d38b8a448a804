package fs

import (
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"go.trai.ch/zerr"

	"github.com/slab-build/slab/internal/core/domain"
)

// resolveContextPaths resolves a copy source inside the build context to the
// absolute paths it matches. The source may name a file, a directory, or a
// glob pattern. Resolution never escapes the context root.
func resolveContextPaths(contextDir, src string) ([]string, error) {
	joined, err := securejoin.SecureJoin(contextDir, src)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrPathEscapesContext, err.Error()), "path", src)
	}

	if _, err := os.Stat(joined); err == nil {
		return []string{joined}, nil
	}

	// Glob metacharacters survive SecureJoin's lexical cleaning, so the
	// joined path doubles as the pattern.
	matches, globErr := filepath.Glob(joined)
	if globErr == nil && len(matches) > 0 {
		return matches, nil
	}

	return nil, zerr.With(zerr.Wrap(domain.ErrMissingContextPath, src), "path", src)
}
