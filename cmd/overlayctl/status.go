package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/overlayd/internal/dbus"
)

var statusOpts struct {
	waybar bool
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon overlay status",
	Long: `Show whether an overlay is currently displayed and for which app.

With --waybar the status is printed in Waybar's custom module JSON
format:

  "custom/overlay": {
    "exec": "overlayctl status --waybar",
    "interval": 2,
    "return-type": "json",
    "on-click": "overlayctl hide"
  }`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusOpts.waybar, "waybar", false,
		"Output Waybar custom module JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := client.Status()
	if err != nil {
		if statusOpts.waybar {
			return outputWaybar(WaybarStatus{Text: "", Alt: "error", Class: "error"})
		}
		return err
	}

	if statusOpts.waybar {
		return outputWaybar(waybarStatus(st))
	}

	if !st.Active {
		fmt.Println("idle")
		return nil
	}
	fmt.Printf("active  %s  shown %s  [%s]\n", st.App, humanize.Time(st.ShownAt), st.ID)
	return nil
}

// waybarStatus converts daemon status to the Waybar module payload.
func waybarStatus(st dbus.Status) WaybarStatus {
	if !st.Active {
		return WaybarStatus{Text: "", Alt: "idle", Class: "idle"}
	}
	return WaybarStatus{
		Text:    st.App,
		Alt:     "active",
		Tooltip: fmt.Sprintf("%s\nshown %s", st.App, humanize.Time(st.ShownAt)),
		Class:   "active",
	}
}

// outputWaybar writes the status as JSON.
func outputWaybar(status WaybarStatus) error {
	encoder := json.NewEncoder(os.Stdout)
	return encoder.Encode(status)
}
