// Package power exposes display power state to the overlay controller.
package power

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	login1Bus         = "org.freedesktop.login1"
	login1SessionPath = "/org/freedesktop/login1/session/auto"
	login1SessionIntf = "org.freedesktop.login1.Session"
)

// Monitor reports display power state and can wake the display. Wake
// is fire-and-forget: callers never wait on it.
type Monitor interface {
	DisplayOn() bool
	Wake(reason string)
}

// LogindMonitor implements Monitor over the logind session on the
// system bus. The idle hint stands in for display power: an idle
// session has its display dimmed or off.
type LogindMonitor struct {
	conn   *dbus.Conn
	obj    dbus.BusObject
	logger *slog.Logger
}

// NewLogindMonitor connects to the system bus and binds the caller's
// session object.
func NewLogindMonitor(logger *slog.Logger) (*LogindMonitor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return &LogindMonitor{
		conn:   conn,
		obj:    conn.Object(login1Bus, login1SessionPath),
		logger: logger,
	}, nil
}

// DisplayOn reports whether the session is non-idle. Errors degrade to
// true so a broken logind never forces spurious wakes.
func (m *LogindMonitor) DisplayOn() bool {
	v, err := m.obj.GetProperty(login1SessionIntf + ".IdleHint")
	if err != nil {
		m.logger.Debug("failed to read idle hint", "error", err)
		return true
	}
	idle, ok := v.Value().(bool)
	if !ok {
		return true
	}
	return !idle
}

// Wake clears the session idle hint. Failures are logged and dropped;
// there is no return path the controller waits on.
func (m *LogindMonitor) Wake(reason string) {
	go func() {
		if err := m.obj.Call(login1SessionIntf+".SetIdleHint", 0, false).Err; err != nil {
			m.logger.Debug("failed to wake display", "reason", reason, "error", err)
			return
		}
		m.logger.Debug("display wake requested", "reason", reason)
	}()
}

// Stub is a Monitor for headless operation and tests: the display is
// always on and Wake does nothing.
type Stub struct{}

func (Stub) DisplayOn() bool { return true }
func (Stub) Wake(string)     {}
