package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/overlayd/internal/overlay"
)

var hideOpts struct {
	reason string
}

var hideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Remove the current overlay",
	Long: `Remove the currently displayed overlay, if any.

Exits with status 0 whether or not an overlay was visible; use --verbose
to see which.`,
	Args: cobra.NoArgs,
	RunE: runHide,
}

func init() {
	rootCmd.AddCommand(hideCmd)

	hideCmd.Flags().StringVar(&hideOpts.reason, "reason", string(overlay.ReasonScreenTap),
		"Removal reason reported in the OverlayClosed signal")
}

func runHide(cmd *cobra.Command, args []string) error {
	hidden, err := client.Hide(hideOpts.reason)
	if err != nil {
		return err
	}
	if hidden {
		fmt.Println("hidden")
	} else {
		fmt.Println("no overlay visible")
	}
	return nil
}
