package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version shown by --version. main calls it with values
// injected through ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "stripscroll",
		Short:        "stripscroll turns a long image strip into a scrolling video",
		Long:         `stripscroll stitches images or PDF pages into one long strip, animates its cards in, and scrolls across it in fixed or per-loop timings.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("stripscroll %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newTimelineCmd())
	root.AddCommand(newStrategiesCmd())
	root.AddCommand(newBoundariesCmd())
	root.AddCommand(newInitCmd())
	return root
}

// Execute runs the stripscroll CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
