package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slab-build/slab/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the image described by the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			noRunCache, _ := cmd.Flags().GetBool("no-run-cache")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			img, err := c.app.Build(cmd.Context(), app.BuildOptions{
				ConfigPath: configPath,
				NoRunCache: noRunCache,
				Timeout:    timeout,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), img.ID)
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to the configuration file (default slab.yaml)")
	cmd.Flags().BoolP("no-run-cache", "n", false, "Execute run steps even when a cached layer exists")
	cmd.Flags().DurationP("timeout", "t", 0, "Per-step timeout, overriding the configured value")
	return cmd
}
