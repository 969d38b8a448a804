package recipe

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/slab-build/slab/internal/core/ports"
)

// NodeID is the unique identifier for the recipe parser node.
const NodeID graft.ID = "adapter.recipe_parser"

func init() {
	graft.Register(graft.Node[ports.RecipeParser]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RecipeParser, error) {
			return NewParser(), nil
		},
	})
}
