// Package main is the entry point for the slab build tool.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"

	"github.com/slab-build/slab/cmd/slab/commands"
	"github.com/slab-build/slab/internal/app"
	"github.com/slab-build/slab/internal/core/domain"
	_ "github.com/slab-build/slab/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed.
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	defer components.Telemetry.Close() //nolint:errcheck // Best effort flush on exit

	cli := commands.New(components.App)

	if err := cli.Execute(ctx); err != nil {
		var failure *domain.StepFailure
		if errors.As(err, &failure) {
			// The failing step already logged its output.
			components.Logger.Error(failure)
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
