// Package ports defines the core interfaces of the build engine.
package ports

import (
	"io"

	"github.com/slab-build/slab/internal/core/domain"
)

// RecipeParser turns raw recipe text into a validated instruction sequence.
//
//go:generate go run go.uber.org/mock/mockgen -source=parser.go -destination=mocks/mock_parser.go -package=mocks
type RecipeParser interface {
	// Parse reads recipe text and returns the ordered instruction sequence.
	// It is side-effect free; failures identify the offending line.
	Parse(r io.Reader) ([]domain.Instruction, error)

	// ParseFile parses the recipe at the given path.
	ParseFile(path string) ([]domain.Instruction, error)
}
