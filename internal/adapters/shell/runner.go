// Package shell provides the command runner adapter.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/zerr"

	"github.com/slab-build/slab/internal/core/domain"
	"github.com/slab-build/slab/internal/core/ports"
)

var _ ports.CommandRunner = (*Runner)(nil)

// Runner implements ports.CommandRunner using os/exec. Commands run with the
// host environment as a base and the build's accumulated ENV entries layered
// on top. The executor does not sandbox the process; it only controls the
// working directory, the environment, and the lifetime via ctx.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes cmd, streaming output to the given writers. The process is
// killed when ctx is cancelled or its deadline passes; an expired deadline is
// reported as a step timeout.
func (r *Runner) Run(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error {
	if len(cmd.Argv) == 0 {
		return nil
	}

	//nolint:gosec // user provided command
	proc := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	proc.Dir = cmd.Dir
	proc.Env = mergeEnvironment(os.Environ(), cmd.Env)
	proc.Stdout = stdout
	proc.Stderr = stderr

	r.logger.Info("executing: " + strings.Join(cmd.Argv, " "))

	err := proc.Run()
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return zerr.Wrap(domain.ErrStepTimeout, strings.Join(cmd.Argv, " "))
	}
	if ctx.Err() != nil {
		return zerr.Wrap(ctx.Err(), "command terminated")
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return zerr.With(
		zerr.Wrap(domain.ErrStepExecutionFailed, err.Error()),
		"exit_code", exitCode,
	)
}

// mergeEnvironment overlays override entries on the base environment.
// Entries are KEY=VALUE strings; later values win per key.
func mergeEnvironment(base, overrides []string) []string {
	envMap := make(map[string]string, len(base)+len(overrides))
	var order []string

	add := func(entries []string) {
		for _, entry := range entries {
			k, v, ok := strings.Cut(entry, "=")
			if !ok {
				continue
			}
			if _, seen := envMap[k]; !seen {
				order = append(order, k)
			}
			envMap[k] = v
		}
	}
	add(base)
	add(overrides)

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}
