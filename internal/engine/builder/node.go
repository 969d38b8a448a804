package builder

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"

	"github.com/slab-build/slab/internal/adapters/cas"                //nolint:depguard // Wired in engine wiring
	"github.com/slab-build/slab/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"github.com/slab-build/slab/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"github.com/slab-build/slab/internal/adapters/shell"              //nolint:depguard // Wired in engine wiring
	"github.com/slab-build/slab/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"github.com/slab-build/slab/internal/core/ports"
)

// NodeID is the unique identifier for the builder Graft node.
const NodeID graft.ID = "engine.builder"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.FingerprinterNodeID,
			fs.StagerNodeID,
			fs.SnapshotterNodeID,
			cas.NodeID,
			shell.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Builder, error) {
			fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
			if err != nil {
				return nil, err
			}

			cache, err := graft.Dep[ports.LayerCache](ctx)
			if err != nil {
				return nil, err
			}

			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}

			stager, err := graft.Dep[ports.ContextStager](ctx)
			if err != nil {
				return nil, err
			}

			snapshots, err := graft.Dep[ports.Snapshotter](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			workRoot := filepath.Join(os.TempDir(), "slab")

			return NewBuilder(
				fingerprinter,
				cache,
				runner,
				stager,
				snapshots,
				telemetry,
				log,
				workRoot,
			), nil
		},
	})
}
