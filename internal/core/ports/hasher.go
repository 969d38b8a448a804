package ports

import "github.com/slab-build/slab/internal/core/domain"

// Fingerprinter computes content-derived layer fingerprints.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Fingerprinter interface {
	// Fingerprint derives the fingerprint of the layer that executing instr on
	// top of parent would produce. For copy instructions it depends on the
	// byte content of every context file the source matches, not just the
	// path string. For run instructions it depends only on the literal argv
	// and the parent fingerprint; command side effects are trusted to be
	// deterministic given identical inputs.
	Fingerprint(instr domain.Instruction, parent domain.Fingerprint, contextDir string) (domain.Fingerprint, error)
}
