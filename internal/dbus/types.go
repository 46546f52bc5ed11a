// Package dbus implements the overlayd control interface on the
// session bus.
package dbus

import (
	"time"

	"github.com/jmylchreest/overlayd/internal/a11y"
	"github.com/jmylchreest/overlayd/internal/overlay"
)

const (
	// Interface is the overlayd control interface name.
	Interface = "io.github.jmylchreest.overlayd"
	// Path is the overlayd object path.
	Path = "/io/github/jmylchreest/overlayd"
	// BusName is the bus name to claim.
	BusName = "io.github.jmylchreest.overlayd"
)

// ShowRequest carries the parameters of a Show call.
type ShowRequest struct {
	App       string
	Icon      string // optional icon name override
	Label     string // optional label override
	Body      string
	TimeoutMs int32  // 0 = server default
	Flags     uint32 // a11y content flags
}

// DisplayInfo converts the request to the controller's payload.
// defaultTimeout substitutes a zero or negative timeout; minTimeout is
// the configured lower bound.
func (r ShowRequest) DisplayInfo(defaultTimeout, minTimeout time.Duration) overlay.DisplayInfo {
	timeout := time.Duration(r.TimeoutMs) * time.Millisecond
	if r.TimeoutMs <= 0 {
		timeout = defaultTimeout
	}
	if timeout < minTimeout {
		timeout = minTimeout
	}
	return overlay.DisplayInfo{
		AppPackage:       r.App,
		Icon:             r.Icon,
		Label:            r.Label,
		Body:             r.Body,
		RequestedTimeout: timeout,
		ContentFlags:     a11y.ContentFlags(r.Flags),
	}
}

// Status is the reply to a Status call.
type Status struct {
	Active  bool
	ID      string // session ULID, empty while idle
	App     string
	ShownAt time.Time // zero while idle
}

// EventType distinguishes watch events.
type EventType int

const (
	// EventShown means an overlay appeared or was replaced.
	EventShown EventType = iota
	// EventClosed means the overlay was removed.
	EventClosed
)

// Event is a signal observed by a watching client.
type Event struct {
	Type   EventType
	ID     string
	App    string
	Reason string // set for EventClosed
	At     time.Time
}
