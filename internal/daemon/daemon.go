package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/overlayd/internal/a11y"
	"github.com/jmylchreest/overlayd/internal/appinfo"
	"github.com/jmylchreest/overlayd/internal/config"
	"github.com/jmylchreest/overlayd/internal/dbus"
	"github.com/jmylchreest/overlayd/internal/history"
	"github.com/jmylchreest/overlayd/internal/overlay"
	"github.com/jmylchreest/overlayd/internal/power"
	"github.com/jmylchreest/overlayd/internal/taskq"
)

// reasonDisplayFailed closes a tracker session whose surface never
// came up.
const reasonDisplayFailed = overlay.RemoveReason("DISPLAY_FAILED")

// ControlServer is the daemon's view of the D-Bus control surface.
type ControlServer interface {
	SetShowHandler(dbus.ShowHandler)
	SetHideHandler(dbus.HideHandler)
	SetStatusHandler(dbus.StatusHandler)
	Start() error
	Stop() error
	EmitOverlayShown(id, app string) error
	EmitOverlayClosed(id, reason string) error
}

// configUpdatable is implemented by surface factories that can take new
// display settings on hot reload.
type configUpdatable interface {
	UpdateConfig(config.DisplayConfig)
}

// queueScheduler adapts taskq.Queue to the controller's Scheduler.
type queueScheduler struct {
	q *taskq.Queue
}

func (s queueScheduler) Post(fn func()) {
	s.q.Post(fn)
}

func (s queueScheduler) PostSync(fn func()) bool {
	return s.q.PostSync(fn)
}

func (s queueScheduler) ScheduleAfter(d time.Duration, fn func()) overlay.CancelHandle {
	return s.q.ScheduleAfter(d, fn)
}

// Options carries the daemon's collaborators.
type Options struct {
	Config   *config.Config
	Server   ControlServer
	Surfaces overlay.SurfaceFactory
	Renderer overlay.ContentRenderer
	Power    overlay.PowerMonitor
	Scale    overlay.ScaleNotifier
	Apps     appinfo.Resolver
	History  *history.Log // optional session log, owned by the caller
	Logger   *slog.Logger
}

// Daemon wires the overlay controller to the D-Bus control surface and
// keeps session bookkeeping.
type Daemon struct {
	logger   *slog.Logger
	queue    *taskq.Queue
	policy   *a11y.Policy
	ctl      *overlay.Controller
	tracker  *SessionTracker
	server   ControlServer
	surfaces overlay.SurfaceFactory
	histLog  *history.Log

	mu  sync.RWMutex
	cfg *config.Config
}

// New creates a Daemon from its collaborators.
func New(opts Options) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	d := &Daemon{
		logger:   logger,
		queue:    taskq.New(logger),
		policy:   a11y.NewPolicy(cfg.Timeouts.A11yMultiplier),
		tracker:  NewSessionTracker(),
		server:   opts.Server,
		surfaces: opts.Surfaces,
		histLog:  opts.History,
		cfg:      cfg,
	}

	powerMon := opts.Power
	if powerMon == nil || !cfg.Daemon.WakeDisplay {
		powerMon = power.Stub{}
	}
	apps := opts.Apps
	if apps == nil {
		apps = appinfo.NewDesktopResolver(logger)
	}

	d.ctl = overlay.NewController(overlay.Options{
		Queue:    queueScheduler{d.queue},
		Surfaces: opts.Surfaces,
		Policy:   d.policy,
		Power:    powerMon,
		Scale:    opts.Scale,
		Renderer: opts.Renderer,
		Apps:     apps,
		Logger:   logger,
	})
	d.ctl.SetRemovedFunc(d.handleRemoved)
	d.ctl.SetDisplayFailedFunc(d.handleDisplayFailed)

	d.server.SetShowHandler(d.handleShow)
	d.server.SetHideHandler(d.Hide)
	d.server.SetStatusHandler(d.handleStatus)

	return d
}

// Start starts the task queue and the control server.
func (d *Daemon) Start() error {
	d.queue.Start()
	if err := d.server.Start(); err != nil {
		d.queue.Stop()
		return err
	}
	d.logger.Info("overlayd started")
	return nil
}

// Stop removes any visible overlay and shuts the daemon down.
func (d *Daemon) Stop() {
	d.ctl.RemoveView(overlay.RemoveReason("SHUTDOWN"))
	d.queue.Sync()
	if err := d.server.Stop(); err != nil {
		d.logger.Warn("error stopping control server", "error", err)
	}
	d.queue.Stop()
	d.logger.Info("overlayd stopped")
}

// Hide removes the overlay. Reports whether one was visible. Exposed as
// the D-Bus Hide handler and used by the surface tap callback.
func (d *Daemon) Hide(reason string) bool {
	if _, live := d.tracker.Current(); !live {
		return false
	}
	d.ctl.RemoveView(overlay.RemoveReason(reason))
	return true
}

// handleShow serves a D-Bus Show request.
func (d *Daemon) handleShow(req dbus.ShowRequest) (string, error) {
	d.mu.RLock()
	defaultTimeout := d.cfg.Timeouts.Default.Duration()
	minTimeout := d.cfg.Timeouts.Minimum.Duration()
	d.mu.RUnlock()

	info := req.DisplayInfo(defaultTimeout, minTimeout)
	info.Label, info.Icon = d.ctl.ResolveContentDescription(req.App, req.Icon, req.Label)

	id := d.tracker.Begin(req.App)
	d.ctl.DisplayView(info)

	if err := d.server.EmitOverlayShown(id, req.App); err != nil {
		d.logger.Warn("failed to emit OverlayShown", "error", err)
	}
	d.logger.Info("overlay shown", "id", id, "app", req.App, "timeout", info.RequestedTimeout)
	return id, nil
}

// handleStatus serves a D-Bus Status request.
func (d *Daemon) handleStatus() dbus.Status {
	s, live := d.tracker.Current()
	if !live {
		return dbus.Status{}
	}
	return dbus.Status{Active: true, ID: s.ID, App: s.App, ShownAt: s.ShownAt}
}

// handleRemoved runs on the controller queue after a session ended.
func (d *Daemon) handleRemoved(info overlay.DisplayInfo, reason overlay.RemoveReason) {
	s, ok := d.tracker.Close(reason)
	if !ok {
		return
	}
	if err := d.server.EmitOverlayClosed(s.ID, string(reason)); err != nil {
		d.logger.Warn("failed to emit OverlayClosed", "error", err)
	}
	if d.histLog != nil {
		err := d.histLog.Append(history.Record{
			ID:       s.ID,
			App:      s.App,
			Label:    info.Label,
			Status:   s.Status.String(),
			Reason:   string(s.Reason),
			ShownAt:  s.ShownAt.Unix(),
			ClosedAt: s.ClosedAt.Unix(),
		})
		if err != nil {
			d.logger.Warn("failed to log session", "id", s.ID, "error", err)
		}
	}
}

// handleDisplayFailed runs on the controller queue when a show request
// got no surface. The session opened in handleShow has to be closed
// out here, or Status keeps reporting an overlay that never appeared.
func (d *Daemon) handleDisplayFailed(info overlay.DisplayInfo, err error) {
	s, ok := d.tracker.Close(reasonDisplayFailed)
	if !ok {
		return
	}
	d.logger.Warn("overlay show failed", "id", s.ID, "app", s.App, "error", err)
	if emitErr := d.server.EmitOverlayClosed(s.ID, string(s.Reason)); emitErr != nil {
		d.logger.Warn("failed to emit OverlayClosed", "error", emitErr)
	}
}

// ApplyConfig applies a hot-reloaded configuration.
func (d *Daemon) ApplyConfig(cfg *config.Config) {
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()

	d.policy.SetMultiplier(cfg.Timeouts.A11yMultiplier)
	if u, ok := d.surfaces.(configUpdatable); ok {
		u.UpdateConfig(cfg.Display)
	}
	d.logger.Debug("daemon config applied",
		"a11y_multiplier", cfg.Timeouts.A11yMultiplier,
		"default_timeout", cfg.Timeouts.Default.Duration(),
	)
}
