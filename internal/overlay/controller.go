package overlay

import (
	"errors"
	"log/slog"

	"github.com/jmylchreest/overlayd/internal/appinfo"
)

// session is the live (info, surface, pending-timeout) tuple while an
// overlay is displayed. The three fields transition together: a session
// never exists with a surface but no info.
type session struct {
	info        DisplayInfo
	surface     Surface
	timeout     CancelHandle
	unsubscribe func()
}

// RemovedFunc observes overlay removal. Called on the controller's
// queue after the session has been torn down.
type RemovedFunc func(info DisplayInfo, reason RemoveReason)

// DisplayFailedFunc observes display requests dropped because no
// surface could be created. Called on the controller's queue; no
// session exists at that point.
type DisplayFailedFunc func(info DisplayInfo, err error)

// Controller shows a single, replaceable, auto-expiring overlay. It has
// two states: idle (no session) and displayed (one session). A display
// request while displayed replaces the info in place and resets the
// timeout; it never creates a second surface.
//
// All session state is confined to the scheduler's queue. Public
// methods post onto the queue, so they are safe to call from any
// goroutine.
type Controller struct {
	queue    Scheduler
	surfaces SurfaceFactory
	policy   TimeoutPolicy
	power    PowerMonitor
	scale    ScaleNotifier
	renderer ContentRenderer
	apps     appinfo.Resolver
	logger   *slog.Logger

	// Queue-confined. Nil while idle.
	session *session

	onRemoved       RemovedFunc
	onDisplayFailed DisplayFailedFunc
}

// Options carries the controller's collaborators.
type Options struct {
	Queue    Scheduler
	Surfaces SurfaceFactory
	Policy   TimeoutPolicy
	Power    PowerMonitor
	Scale    ScaleNotifier
	Renderer ContentRenderer // defaults to BaseRenderer
	Apps     appinfo.Resolver
	Logger   *slog.Logger
}

// NewController creates a Controller from its collaborators.
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = BaseRenderer{}
	}
	return &Controller{
		queue:    opts.Queue,
		surfaces: opts.Surfaces,
		policy:   opts.Policy,
		power:    opts.Power,
		scale:    opts.Scale,
		renderer: renderer,
		apps:     opts.Apps,
		logger:   logger,
	}
}

// SetRemovedFunc registers a removal observer. Must be called before
// the first DisplayView.
func (c *Controller) SetRemovedFunc(fn RemovedFunc) {
	c.onRemoved = fn
}

// SetDisplayFailedFunc registers a display-failure observer. Must be
// called before the first DisplayView.
func (c *Controller) SetDisplayFailedFunc(fn DisplayFailedFunc) {
	c.onDisplayFailed = fn
}

// DisplayView shows info on the overlay. If an overlay is already
// displayed its content is replaced in place; otherwise a new surface
// is created. Either way the expiry timeout restarts, stretched by the
// accessibility policy.
func (c *Controller) DisplayView(info DisplayInfo) {
	c.queue.Post(func() { c.displayView(info) })
}

// RemoveView removes the overlay. A no-op while idle.
func (c *Controller) RemoveView(reason RemoveReason) {
	c.queue.Post(func() { c.removeView(reason) })
}

// Active reports whether an overlay is currently displayed. It round-
// trips through the queue for a consistent answer; a stopped queue
// reads as idle.
func (c *Controller) Active() bool {
	res := make(chan bool, 1)
	if !c.queue.PostSync(func() { res <- c.session != nil }) {
		return false
	}
	return <-res
}

// CurrentInfo returns the displayed info, if any. A stopped queue
// reads as idle.
func (c *Controller) CurrentInfo() (DisplayInfo, bool) {
	type snap struct {
		info DisplayInfo
		ok   bool
	}
	res := make(chan snap, 1)
	posted := c.queue.PostSync(func() {
		if c.session != nil {
			res <- snap{c.session.info, true}
		} else {
			res <- snap{}
		}
	})
	if !posted {
		return DisplayInfo{}, false
	}
	s := <-res
	return s.info, s.ok
}

// displayView runs on the queue.
func (c *Controller) displayView(info DisplayInfo) {
	if c.session != nil {
		c.session.info = info
		c.renderer.ApplyUpdate(c.session.surface, info)
	} else {
		if !c.power.DisplayOn() {
			c.power.Wake("overlay")
		}
		unsubscribe := c.scale.Subscribe(func() {
			c.queue.Post(c.reinflateView)
		})

		surface, err := c.surfaces.Create(info)
		if err != nil {
			unsubscribe()
			c.logger.Error("failed to create overlay surface", "app", info.AppPackage, "error", err)
			if c.onDisplayFailed != nil {
				c.onDisplayFailed(info, err)
			}
			return
		}
		c.renderer.ApplyUpdate(surface, info)
		c.renderer.AnimateIn(surface)

		c.session = &session{
			info:        info,
			surface:     surface,
			unsubscribe: unsubscribe,
		}
		c.logger.Debug("overlay displayed", "app", info.AppPackage)
	}

	if c.session.timeout != nil {
		c.session.timeout.Cancel()
	}
	d := c.policy.RecommendedTimeout(info.RequestedTimeout, info.ContentFlags)
	c.session.timeout = c.queue.ScheduleAfter(d, func() {
		c.removeView(ReasonTimeout)
	})
	c.logger.Debug("overlay timeout scheduled", "requested", info.RequestedTimeout, "effective", d)
}

// removeView runs on the queue.
func (c *Controller) removeView(reason RemoveReason) {
	if c.session == nil {
		return
	}
	c.logger.Info("overlay removed", "reason", string(reason))

	s := c.session
	c.session = nil

	s.unsubscribe()
	if s.timeout != nil {
		s.timeout.Cancel()
	}
	s.surface.Destroy()

	if c.onRemoved != nil {
		c.onRemoved(s.info, reason)
	}
}

// reinflateView rebuilds the surface with the current info after a
// scale/density change. The timeout countdown is untouched. Runs on the
// queue.
func (c *Controller) reinflateView() {
	if c.session == nil {
		return
	}

	c.session.surface.Destroy()
	surface, err := c.surfaces.Create(c.session.info)
	if err != nil {
		c.logger.Error("failed to rebuild overlay surface", "error", err)
		// The session can't survive without a surface; tear it down.
		s := c.session
		c.session = nil
		s.unsubscribe()
		if s.timeout != nil {
			s.timeout.Cancel()
		}
		if c.onRemoved != nil {
			c.onRemoved(s.info, reasonReinflateFailed)
		}
		return
	}

	c.session.surface = surface
	c.renderer.ApplyUpdate(surface, c.session.info)
	c.logger.Debug("overlay surface rebuilt after scale change")
}

// ResolveContentDescription resolves the label/icon pair used for
// accessibility. Overrides win; otherwise the application's desktop
// metadata is consulted, and a lookup failure degrades to the default
// pair rather than propagating.
func (c *Controller) ResolveContentDescription(app, iconOverride, nameOverride string) (label, icon string) {
	label = nameOverride
	icon = iconOverride

	if label == "" {
		resolved, err := c.apps.AppLabel(app)
		switch {
		case err == nil:
			label = resolved
		case errors.Is(err, appinfo.ErrNotFound):
			c.logger.Debug("no label for app, using default", "app", app)
			label = DefaultAppLabel
		default:
			c.logger.Warn("app label lookup failed", "app", app, "error", err)
			label = DefaultAppLabel
		}
	}

	if icon == "" {
		resolved, err := c.apps.AppIcon(app)
		switch {
		case err == nil:
			icon = resolved
		case errors.Is(err, appinfo.ErrNotFound):
			c.logger.Debug("no icon for app, using default", "app", app)
			icon = DefaultAppIcon
		default:
			c.logger.Warn("app icon lookup failed", "app", app, "error", err)
			icon = DefaultAppIcon
		}
	}

	return label, icon
}
