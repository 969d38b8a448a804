// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/slab-build/slab/internal/adapters/cas"
	_ "github.com/slab-build/slab/internal/adapters/config"
	_ "github.com/slab-build/slab/internal/adapters/fs"
	_ "github.com/slab-build/slab/internal/adapters/logger"
	_ "github.com/slab-build/slab/internal/adapters/recipe"
	_ "github.com/slab-build/slab/internal/adapters/shell"
	_ "github.com/slab-build/slab/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "github.com/slab-build/slab/internal/app"
	_ "github.com/slab-build/slab/internal/engine/builder"
)
