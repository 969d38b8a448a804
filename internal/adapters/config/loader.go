// Package config provides the configuration loader for slab.
package config

import (
	"os"
	"path"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/slab-build/slab/internal/core/domain"
	"github.com/slab-build/slab/internal/core/ports"
)

// DefaultFilename is the configuration file slab looks for.
const DefaultFilename = "slab.yaml"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and validates the configuration at the given path. Relative
// recipe and context paths resolve against the config file's directory.
func (l *Loader) Load(configPath string) (*domain.BuildConfig, error) {
	data, err := os.ReadFile(configPath) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	var file Slabfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", configPath)
	}

	return toDomain(&file, filepath.Dir(configPath))
}

func toDomain(file *Slabfile, baseDir string) (*domain.BuildConfig, error) {
	cfg := &domain.BuildConfig{
		Recipe:     file.Recipe,
		ContextDir: file.Context,
		Metadata: domain.ImageMetadata{
			Workdir:    file.Image.Workdir,
			Entrypoint: file.Image.Entrypoint,
			Env:        file.Image.Env,
		},
	}

	if cfg.Recipe == "" {
		cfg.Recipe = "slabfile"
	}
	if cfg.ContextDir == "" {
		cfg.ContextDir = "."
	}
	if !filepath.IsAbs(cfg.Recipe) {
		cfg.Recipe = filepath.Join(baseDir, cfg.Recipe)
	}
	if !filepath.IsAbs(cfg.ContextDir) {
		cfg.ContextDir = filepath.Join(baseDir, cfg.ContextDir)
	}

	if cfg.Metadata.Workdir == "" {
		return nil, domain.ErrMissingWorkdir
	}
	if !path.IsAbs(cfg.Metadata.Workdir) {
		return nil, zerr.With(
			zerr.Wrap(domain.ErrConfigParseFailed, "image workdir must be absolute"),
			"workdir", cfg.Metadata.Workdir,
		)
	}

	switch file.Cache.RunSteps {
	case "", "enabled":
		cfg.RunCache = true
	case "disabled":
		cfg.RunCache = false
	default:
		return nil, zerr.With(
			zerr.Wrap(domain.ErrConfigParseFailed, "cache.runSteps must be 'enabled' or 'disabled'"),
			"value", file.Cache.RunSteps,
		)
	}

	if file.StepTimeout != "" {
		timeout, err := time.ParseDuration(file.StepTimeout)
		if err != nil {
			return nil, zerr.With(
				zerr.Wrap(domain.ErrConfigParseFailed, "invalid stepTimeout"),
				"value", file.StepTimeout,
			)
		}
		cfg.StepTimeout = timeout
	}

	return cfg, nil
}
