// Package commands implements the CLI commands for the slab build tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/slab-build/slab/internal/app"
	"github.com/slab-build/slab/internal/build"
	"github.com/slab-build/slab/internal/core/domain"
)

// Application is the app-layer surface the CLI drives.
type Application interface {
	Build(ctx context.Context, opts app.BuildOptions) (*domain.Image, error)
	GC(ctx context.Context, opts app.GCOptions) (int, error)
}

// CLI represents the command line interface for slab.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "slab",
		Short:         "A layered, cacheable build executor",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newGCCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
