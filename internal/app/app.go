// Package app implements the application layer for slab.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"

	"github.com/slab-build/slab/internal/adapters/config"
	"github.com/slab-build/slab/internal/core/domain"
	"github.com/slab-build/slab/internal/core/ports"
	"github.com/slab-build/slab/internal/engine/builder"
)

// BuildOptions are the per-invocation knobs of a build.
type BuildOptions struct {
	// ConfigPath is the slab.yaml to load. Empty means the default filename
	// in the current directory.
	ConfigPath string

	// NoRunCache forces run steps to execute even when cached.
	NoRunCache bool

	// Timeout overrides the configured per-step timeout when positive.
	Timeout time.Duration
}

// GCOptions select which cached layers to evict.
type GCOptions struct {
	All       bool
	OlderThan time.Duration
}

// App represents the main application logic.
type App struct {
	loader   ports.ConfigLoader
	parser   ports.RecipeParser
	builder  *builder.Builder
	cache    ports.LayerCache
	logger   ports.Logger
	stateDir string
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	parser ports.RecipeParser,
	b *builder.Builder,
	cache ports.LayerCache,
	logger ports.Logger,
	stateDir string,
) *App {
	return &App{
		loader:   loader,
		parser:   parser,
		builder:  b,
		cache:    cache,
		logger:   logger,
		stateDir: stateDir,
	}
}

// Build loads the configuration, parses the recipe, executes the build and
// assembles the resulting image. The image descriptor is persisted under the
// state directory.
func (a *App) Build(ctx context.Context, opts BuildOptions) (*domain.Image, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultFilename
	}

	cfg, err := a.loader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	instructions, err := a.parser.ParseFile(cfg.Recipe)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to parse recipe")
	}

	timeout := cfg.StepTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	req := domain.BuildRequest{
		Instructions:    instructions,
		ContextDir:      cfg.ContextDir,
		StepTimeout:     timeout,
		DisableRunCache: opts.NoRunCache || !cfg.RunCache,
	}

	layers, err := a.builder.Build(ctx, req)
	if err != nil {
		return nil, err
	}

	img, err := builder.Assemble(layers, cfg.Metadata)
	if err != nil {
		return nil, err
	}

	descriptor, err := a.writeImage(img)
	if err != nil {
		return nil, err
	}

	a.logger.Info(fmt.Sprintf("built %s (%d layers), descriptor at %s", img.ID, len(img.Layers), descriptor))
	return img, nil
}

// GC evicts cached layers per opts and returns how many were removed.
func (a *App) GC(_ context.Context, opts GCOptions) (int, error) {
	policy := domain.EvictPolicy{
		All:       opts.All,
		UnusedFor: opts.OlderThan,
	}

	removed, err := a.cache.Evict(policy)
	if err != nil {
		return 0, zerr.Wrap(err, "failed to evict layers")
	}

	a.logger.Info(fmt.Sprintf("evicted %d layers", removed))
	return removed, nil
}

// writeImage persists the image descriptor as JSON under the state directory
// and returns its path.
func (a *App) writeImage(img *domain.Image) (string, error) {
	dir := filepath.Join(a.stateDir, "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create image directory"), "path", dir)
	}

	data, err := json.MarshalIndent(img, "", "  ")
	if err != nil {
		return "", zerr.Wrap(err, "failed to encode image descriptor")
	}

	path := filepath.Join(dir, img.ID.Encoded()+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // Descriptor is not sensitive
		return "", zerr.With(zerr.Wrap(err, "failed to write image descriptor"), "path", path)
	}

	return path, nil
}
