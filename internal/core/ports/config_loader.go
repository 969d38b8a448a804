package ports

import "github.com/slab-build/slab/internal/core/domain"

// ConfigLoader loads the build configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads and validates the config file at the given path.
	Load(path string) (*domain.BuildConfig, error)
}
