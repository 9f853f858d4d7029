package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build the site and rebuild on file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			jobs, _ := cmd.Flags().GetInt("jobs")

			return c.app.Watch(cmd.Context(), app.RunOptions{
				Force: force,
				Jobs:  jobs,
			})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Rebuild every page on the initial build")
	cmd.Flags().IntP("jobs", "j", 0, "Maximum parallel page builds (0 uses the site setting)")
	return cmd
}
