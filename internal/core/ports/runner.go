package ports

import (
	"context"
	"io"

	"github.com/slab-build/slab/internal/core/domain"
)

// CommandRunner executes run instructions as external processes.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type CommandRunner interface {
	// Run executes cmd, streaming its output to the given writers. The
	// process is terminated when ctx is cancelled or times out. A nonzero
	// exit status is returned as an error carrying the exit code.
	Run(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error
}
