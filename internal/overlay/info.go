// Package overlay implements the transient overlay controller: a
// single, replaceable, auto-expiring overlay surface shown above other
// UI, driven by successive display requests.
package overlay

import (
	"time"

	"github.com/jmylchreest/overlayd/internal/a11y"
)

// DisplayInfo describes what an overlay should show and how long the
// caller wants it visible. It is immutable once passed to the
// controller.
type DisplayInfo struct {
	// AppPackage identifies the application the overlay is shown for
	// (desktop-entry basename). Used for metadata lookup.
	AppPackage string

	// Label overrides the resolved application name when non-empty.
	Label string

	// Icon overrides the resolved application icon when non-empty.
	Icon string

	// Body is optional secondary text.
	Body string

	// RequestedTimeout is the caller's desired display duration. The
	// accessibility policy may extend it, never shorten it.
	RequestedTimeout time.Duration

	// ContentFlags describe the surface's affordances for the
	// accessibility timeout computation.
	ContentFlags a11y.ContentFlags
}

// RemoveReason explains why an overlay was removed. Callers may pass
// their own values; the controller only generates ReasonTimeout.
type RemoveReason string

const (
	// ReasonTimeout means the display duration elapsed.
	ReasonTimeout RemoveReason = "TIMEOUT"
	// ReasonScreenTap means the user tapped the overlay away.
	ReasonScreenTap RemoveReason = "SCREEN_TAP"
	// ReasonReplaced is used by callers tearing an overlay down to make
	// room for unrelated UI.
	ReasonReplaced RemoveReason = "REPLACED"
	// reasonReinflateFailed is generated internally when a surface
	// rebuild after a scale change fails.
	reasonReinflateFailed RemoveReason = "REINFLATE_FAILED"
)

// Default metadata used when package lookup fails.
const (
	DefaultAppLabel = "Application"
	DefaultAppIcon  = "application-x-executable"
)
