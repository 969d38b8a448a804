package fs

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/slab-build/slab/internal/core/ports"
)

const (
	// WalkerNodeID is the unique identifier for the walker node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// FingerprinterNodeID is the unique identifier for the fingerprinter node.
	FingerprinterNodeID graft.ID = "adapter.fs.fingerprinter"
	// StagerNodeID is the unique identifier for the context stager node.
	StagerNodeID graft.ID = "adapter.fs.stager"
	// SnapshotterNodeID is the unique identifier for the snapshotter node.
	SnapshotterNodeID graft.ID = "adapter.fs.snapshotter"
)

func init() {
	// Walker Node (concrete implementation needed by the Fingerprinter)
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	// Fingerprinter Node
	graft.Register(graft.Node[ports.Fingerprinter]{
		ID:        FingerprinterNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID},
		Run: func(ctx context.Context) (ports.Fingerprinter, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewFingerprinter(walker), nil
		},
	})

	// Stager Node
	graft.Register(graft.Node[ports.ContextStager]{
		ID:        StagerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ContextStager, error) {
			return NewStager(), nil
		},
	})

	// Snapshotter Node
	graft.Register(graft.Node[ports.Snapshotter]{
		ID:        SnapshotterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Snapshotter, error) {
			return NewSnapshotter(), nil
		},
	})
}
