package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// ShowHandler is called when a Show request is received. It returns the
// session ID assigned to the overlay.
type ShowHandler func(req ShowRequest) (string, error)

// HideHandler is called when a Hide request is received. It reports
// whether an overlay was actually visible.
type HideHandler func(reason string) bool

// StatusHandler is called when a Status request is received.
type StatusHandler func() Status

// Server exports the overlayd control interface on the session bus.
type Server struct {
	conn   *dbus.Conn
	logger *slog.Logger

	showHandler   ShowHandler
	hideHandler   HideHandler
	statusHandler StatusHandler

	mu      sync.Mutex
	running bool
}

// NewServer creates a Server. Handlers must be set before Start.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger}
}

// SetShowHandler sets the handler for Show requests.
func (s *Server) SetShowHandler(handler ShowHandler) {
	s.showHandler = handler
}

// SetHideHandler sets the handler for Hide requests.
func (s *Server) SetHideHandler(handler HideHandler) {
	s.hideHandler = handler
}

// SetStatusHandler sets the handler for Status requests.
func (s *Server) SetStatusHandler(handler StatusHandler) {
	s.statusHandler = handler
}

// Start connects to the session bus and exports the control interface.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, Path, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: Path,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: controlMethods(),
				Signals: controlSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), Path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus control server started", "interface", Interface, "path", Path)
	return nil
}

// Stop releases the bus name.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(BusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// The connection is the shared session bus; don't close it.
	}

	s.logger.Info("D-Bus control server stopped")
	return nil
}

// Show displays an overlay, replacing any currently visible one.
// D-Bus method: Show(s app, s icon, s label, s body, i timeout_ms, u flags) -> s
func (s *Server) Show(app, icon, label, body string, timeoutMs int32, flags uint32) (string, *dbus.Error) {
	s.logger.Debug("Show called", "app", app, "timeout_ms", timeoutMs, "flags", flags)
	if s.showHandler == nil {
		return "", dbus.MakeFailedError(fmt.Errorf("no show handler"))
	}
	id, err := s.showHandler(ShowRequest{
		App:       app,
		Icon:      icon,
		Label:     label,
		Body:      body,
		TimeoutMs: timeoutMs,
		Flags:     flags,
	})
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return id, nil
}

// Hide removes the overlay if one is visible.
// D-Bus method: Hide(s reason) -> b
func (s *Server) Hide(reason string) (bool, *dbus.Error) {
	s.logger.Debug("Hide called", "reason", reason)
	if s.hideHandler == nil {
		return false, dbus.MakeFailedError(fmt.Errorf("no hide handler"))
	}
	return s.hideHandler(reason), nil
}

// Status reports the current overlay state.
// D-Bus method: Status() -> (b active, s id, s app, x shown_at_unix)
func (s *Server) Status() (bool, string, string, int64, *dbus.Error) {
	if s.statusHandler == nil {
		return false, "", "", 0, dbus.MakeFailedError(fmt.Errorf("no status handler"))
	}
	st := s.statusHandler()
	var shownAt int64
	if !st.ShownAt.IsZero() {
		shownAt = st.ShownAt.Unix()
	}
	return st.Active, st.ID, st.App, shownAt, nil
}

// EmitOverlayShown emits the OverlayShown signal.
func (s *Server) EmitOverlayShown(id, app string) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	if err := s.conn.Emit(Path, Interface+".OverlayShown", id, app); err != nil {
		return fmt.Errorf("failed to emit OverlayShown signal: %w", err)
	}
	s.logger.Debug("emitted OverlayShown signal", "id", id, "app", app)
	return nil
}

// EmitOverlayClosed emits the OverlayClosed signal.
func (s *Server) EmitOverlayClosed(id, reason string) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	if err := s.conn.Emit(Path, Interface+".OverlayClosed", id, reason); err != nil {
		return fmt.Errorf("failed to emit OverlayClosed signal: %w", err)
	}
	s.logger.Debug("emitted OverlayClosed signal", "id", id, "reason", reason)
	return nil
}

// controlMethods returns the introspection data for the control
// interface methods.
func controlMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Show",
			Args: []introspect.Arg{
				{Name: "app", Type: "s", Direction: "in"},
				{Name: "icon", Type: "s", Direction: "in"},
				{Name: "label", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "timeout_ms", Type: "i", Direction: "in"},
				{Name: "flags", Type: "u", Direction: "in"},
				{Name: "id", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Hide",
			Args: []introspect.Arg{
				{Name: "reason", Type: "s", Direction: "in"},
				{Name: "hidden", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "active", Type: "b", Direction: "out"},
				{Name: "id", Type: "s", Direction: "out"},
				{Name: "app", Type: "s", Direction: "out"},
				{Name: "shown_at_unix", Type: "x", Direction: "out"},
			},
		},
	}
}

// controlSignals returns the introspection data for the control
// interface signals.
func controlSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "OverlayShown",
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
				{Name: "app", Type: "s"},
			},
		},
		{
			Name: "OverlayClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
				{Name: "reason", Type: "s"},
			},
		},
	}
}
