// Package daemon provides the main orchestration for overlayd.
package daemon

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/overlayd/internal/overlay"
)

// SessionStatus is the lifecycle state of an overlay session.
type SessionStatus int

const (
	// StatusActive means the overlay is currently displayed.
	StatusActive SessionStatus = iota
	// StatusExpired means the overlay timed out.
	StatusExpired
	// StatusDismissed means the user tapped the overlay away.
	StatusDismissed
	// StatusClosed means the overlay was removed programmatically.
	StatusClosed
)

// String returns the string representation of SessionStatus.
func (s SessionStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	case StatusDismissed:
		return "dismissed"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// statusForReason maps a removal reason to a terminal session status.
func statusForReason(reason overlay.RemoveReason) SessionStatus {
	switch reason {
	case overlay.ReasonTimeout:
		return StatusExpired
	case overlay.ReasonScreenTap:
		return StatusDismissed
	default:
		return StatusClosed
	}
}

// Session records one overlay display, live or finished.
type Session struct {
	ID       string
	App      string
	ShownAt  time.Time
	ClosedAt time.Time
	Status   SessionStatus
	Reason   overlay.RemoveReason
}

// maxRecentSessions bounds the finished-session ring.
const maxRecentSessions = 32

// SessionTracker assigns ULIDs to overlay sessions and keeps a small
// history of finished ones.
type SessionTracker struct {
	mu      sync.RWMutex
	current *Session
	recent  []Session
}

// NewSessionTracker creates an empty tracker.
func NewSessionTracker() *SessionTracker {
	return &SessionTracker{}
}

// Begin starts a session for app and returns its ID. If a session is
// already live it is replaced in place: same ID, updated app. The
// controller keeps one surface across replacements, so the session
// identity carries over too.
func (t *SessionTracker) Begin(app string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil {
		t.current.App = app
		return t.current.ID
	}

	t.current = &Session{
		ID:      ulid.Make().String(),
		App:     app,
		ShownAt: time.Now(),
		Status:  StatusActive,
	}
	return t.current.ID
}

// Close finishes the live session with the given reason. Returns the
// finished session and false if nothing was live.
func (t *SessionTracker) Close(reason overlay.RemoveReason) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return Session{}, false
	}

	s := *t.current
	s.ClosedAt = time.Now()
	s.Status = statusForReason(reason)
	s.Reason = reason
	t.current = nil

	t.recent = append(t.recent, s)
	if len(t.recent) > maxRecentSessions {
		t.recent = t.recent[len(t.recent)-maxRecentSessions:]
	}
	return s, true
}

// Current returns the live session, if any.
func (t *SessionTracker) Current() (Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.current == nil {
		return Session{}, false
	}
	return *t.current, true
}

// Recent returns finished sessions, oldest first.
func (t *SessionTracker) Recent() []Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Session, len(t.recent))
	copy(out, t.recent)
	return out
}
