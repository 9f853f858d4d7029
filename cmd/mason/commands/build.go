package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build all stale pages of the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			jobs, _ := cmd.Flags().GetInt("jobs")

			return c.app.Run(cmd.Context(), app.RunOptions{
				Force: force,
				Jobs:  jobs,
			})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Rebuild every page regardless of cache state")
	cmd.Flags().IntP("jobs", "j", 0, "Maximum parallel page builds (0 uses the site setting)")
	return cmd
}
