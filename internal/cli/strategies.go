package cli

import (
	"github.com/spf13/cobra"

	"github.com/ivlev/stripscroll/internal/transform"
)

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List card entry animations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range transform.Names() {
				printInfo(out, "%s", name)
			}
			return nil
		},
	}
}
