package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/overlayd/internal/a11y"
	"github.com/jmylchreest/overlayd/internal/dbus"
)

var showOpts struct {
	icon    string
	label   string
	timeout time.Duration
	content []string
}

var showCmd = &cobra.Command{
	Use:   "show <app> [body]",
	Short: "Display an overlay",
	Long: `Display a transient overlay for an application.

<app> is the application identifier (desktop entry basename, e.g.
"org.mozilla.firefox"). The overlay's label and icon are resolved from
the application's desktop entry unless overridden.

A visible overlay is replaced in place; only one overlay exists at a
time. The overlay expires after the timeout, stretched by the daemon's
accessibility policy when --content names what the overlay carries.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showOpts.icon, "icon", "",
		"Icon name override (default: from the app's desktop entry)")
	showCmd.Flags().StringVar(&showOpts.label, "label", "",
		"Label override (default: from the app's desktop entry)")
	showCmd.Flags().DurationVarP(&showOpts.timeout, "timeout", "t", 0,
		"Display duration, e.g. 3s (0 = daemon default)")
	showCmd.Flags().StringSliceVar(&showOpts.content, "content", nil,
		"Overlay content kinds for accessibility timing: icons, text, controls")
}

func runShow(cmd *cobra.Command, args []string) error {
	flags, err := contentFlags(showOpts.content)
	if err != nil {
		return err
	}

	req := dbus.ShowRequest{
		App:       args[0],
		Icon:      showOpts.icon,
		Label:     showOpts.label,
		TimeoutMs: int32(showOpts.timeout.Milliseconds()),
		Flags:     uint32(flags),
	}
	if len(args) > 1 {
		req.Body = args[1]
	}

	id, err := client.Show(req)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

// contentFlags parses --content values into the a11y bitmask.
func contentFlags(kinds []string) (a11y.ContentFlags, error) {
	var flags a11y.ContentFlags
	for _, kind := range kinds {
		switch strings.ToLower(strings.TrimSpace(kind)) {
		case "icons":
			flags |= a11y.FlagContentIcons
		case "text":
			flags |= a11y.FlagContentText
		case "controls":
			flags |= a11y.FlagContentControls
		case "":
		default:
			return 0, fmt.Errorf("unknown content kind %q (want icons, text or controls)", kind)
		}
	}
	return flags, nil
}
