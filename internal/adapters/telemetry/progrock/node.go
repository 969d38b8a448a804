package progrock

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/slab-build/slab/internal/core/ports"
)

// NodeID is the unique identifier for the telemetry node.
const NodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Telemetry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Telemetry, error) {
			return New(), nil
		},
	})
}
