package cas

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"

	"github.com/slab-build/slab/internal/core/ports"
)

// NodeID is the unique identifier for the layer cache node.
const NodeID graft.ID = "adapter.layer_cache"

// StateDir resolves the on-disk state directory. SLAB_STATE_DIR overrides
// the default .slab directory under the current working directory.
func StateDir() string {
	if dir := os.Getenv("SLAB_STATE_DIR"); dir != "" {
		return dir
	}
	return ".slab"
}

func init() {
	graft.Register(graft.Node[ports.LayerCache]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LayerCache, error) {
			return NewStore(filepath.Join(StateDir(), "cache"))
		},
	})
}
