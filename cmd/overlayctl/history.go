package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/overlayd/internal/history"
)

var historyOpts struct {
	limit  int
	file   string
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently finished overlays",
	Long: `List finished overlay sessions from the daemon's session log.

The log is read directly from disk, so this works even when the daemon
is not running.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 20,
		"Maximum number of sessions to show (0 = all)")
	historyCmd.Flags().StringVar(&historyOpts.file, "file", "",
		"Path to session log (default: ~/.local/share/overlayd/sessions.jsonl)")
	historyCmd.Flags().StringVar(&historyOpts.format, "format", "text",
		"Output format: text, json or yaml")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := historyOpts.file
	if path == "" {
		var err error
		path, err = history.LogPath()
		if err != nil {
			return fmt.Errorf("failed to resolve session log path: %w", err)
		}
	}

	records, err := history.Load(path)
	if err != nil {
		return err
	}
	if historyOpts.limit > 0 && len(records) > historyOpts.limit {
		records = records[len(records)-historyOpts.limit:]
	}

	if historyOpts.format != "text" {
		data, err := history.Export(records, historyOpts.format)
		if err != nil {
			return err
		}
		fmt.Println(strings.TrimSuffix(string(data), "\n"))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("no sessions recorded")
		return nil
	}

	// Newest first.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		name := r.Label
		if name == "" {
			name = r.App
		}
		fmt.Printf("%-12s %-10s %-24s %s\n",
			humanize.Time(r.ClosedTime()), r.Status, name, r.Reason)
	}
	return nil
}
