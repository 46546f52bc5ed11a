package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/overlayd/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch overlay activity live",
	Long: `Open a live view of overlay activity.

Shows the currently displayed overlay and a scrolling log of shown and
closed events as the daemon emits them.

Key bindings:
  c           Clear the event log
  ?           Toggle help
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	return tui.Run(context.Background(), client)
}
