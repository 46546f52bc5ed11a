package dbus

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

// Client talks to a running overlayd over the session bus.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(BusName, Path),
	}, nil
}

// Show asks the daemon to display an overlay and returns its session
// ID.
func (c *Client) Show(req ShowRequest) (string, error) {
	var id string
	err := c.obj.Call(Interface+".Show", 0,
		req.App, req.Icon, req.Label, req.Body, req.TimeoutMs, req.Flags).Store(&id)
	if err != nil {
		return "", fmt.Errorf("Show call failed: %w", err)
	}
	return id, nil
}

// Hide asks the daemon to remove the overlay. Returns false if nothing
// was visible.
func (c *Client) Hide(reason string) (bool, error) {
	var hidden bool
	err := c.obj.Call(Interface+".Hide", 0, reason).Store(&hidden)
	if err != nil {
		return false, fmt.Errorf("Hide call failed: %w", err)
	}
	return hidden, nil
}

// Status returns the daemon's current overlay state.
func (c *Client) Status() (Status, error) {
	var (
		active  bool
		id      string
		app     string
		shownAt int64
	)
	err := c.obj.Call(Interface+".Status", 0).Store(&active, &id, &app, &shownAt)
	if err != nil {
		return Status{}, fmt.Errorf("Status call failed: %w", err)
	}
	st := Status{Active: active, ID: id, App: app}
	if shownAt != 0 {
		st.ShownAt = time.Unix(shownAt, 0)
	}
	return st, nil
}

// Watch subscribes to overlay signals and delivers them on the returned
// channel until ctx is cancelled.
func (c *Client) Watch(ctx context.Context) (<-chan Event, error) {
	if err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(Path),
		dbus.WithMatchInterface(Interface),
	); err != nil {
		return nil, fmt.Errorf("failed to add signal match: %w", err)
	}

	sigCh := make(chan *dbus.Signal, 32)
	c.conn.Signal(sigCh)

	events := make(chan Event, 32)
	go func() {
		defer close(events)
		defer c.conn.RemoveSignal(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-sigCh:
				if !ok {
					return
				}
				ev, ok := parseSignal(sig)
				if !ok {
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

// parseSignal converts a raw D-Bus signal to an Event.
func parseSignal(sig *dbus.Signal) (Event, bool) {
	switch sig.Name {
	case Interface + ".OverlayShown":
		if len(sig.Body) < 2 {
			return Event{}, false
		}
		id, _ := sig.Body[0].(string)
		app, _ := sig.Body[1].(string)
		return Event{Type: EventShown, ID: id, App: app, At: time.Now()}, true
	case Interface + ".OverlayClosed":
		if len(sig.Body) < 2 {
			return Event{}, false
		}
		id, _ := sig.Body[0].(string)
		reason, _ := sig.Body[1].(string)
		return Event{Type: EventClosed, ID: id, Reason: reason, At: time.Now()}, true
	default:
		return Event{}, false
	}
}
