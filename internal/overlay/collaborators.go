package overlay

import (
	"time"

	"github.com/jmylchreest/overlayd/internal/a11y"
)

// Surface is a live overlay window. The controller never draws into it
// directly; content flows through the ContentRenderer.
type Surface interface {
	// Apply updates the surface to show the given info.
	Apply(info DisplayInfo)
	// Destroy releases the surface. The handle is dead afterwards.
	Destroy()
}

// SurfaceFactory creates overlay surfaces. The window system behind it
// (compositor, layer shell) is opaque to the controller.
type SurfaceFactory interface {
	Create(info DisplayInfo) (Surface, error)
}

// TimeoutPolicy computes how long an overlay should stay visible.
type TimeoutPolicy interface {
	RecommendedTimeout(requested time.Duration, flags a11y.ContentFlags) time.Duration
}

// PowerMonitor exposes display power state. Wake is fire-and-forget:
// the controller never waits on it.
type PowerMonitor interface {
	DisplayOn() bool
	Wake(reason string)
}

// ScaleNotifier delivers display scale/density change events. Subscribe
// returns an unsubscribe function; calling it more than once is safe.
type ScaleNotifier interface {
	Subscribe(fn func()) (unsubscribe func())
}

// CancelHandle cancels a scheduled task. Cancel is idempotent.
type CancelHandle interface {
	Cancel()
}

// Scheduler is the single-threaded task queue the controller runs on.
// Both immediate and deferred tasks execute serialized on it. PostSync
// waits for fn to finish and reports false, without running fn, when
// the queue has stopped.
type Scheduler interface {
	Post(fn func())
	PostSync(fn func()) bool
	ScheduleAfter(d time.Duration, fn func()) CancelHandle
}
