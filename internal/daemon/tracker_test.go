package daemon

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/overlayd/internal/overlay"
)

func TestSessionTracker_BeginClose(t *testing.T) {
	tr := NewSessionTracker()

	_, live := tr.Current()
	assert.False(t, live)

	id := tr.Begin("org.example.app")
	require.NotEmpty(t, id)

	cur, live := tr.Current()
	require.True(t, live)
	assert.Equal(t, id, cur.ID)
	assert.Equal(t, "org.example.app", cur.App)
	assert.Equal(t, StatusActive, cur.Status)

	s, ok := tr.Close(overlay.ReasonTimeout)
	require.True(t, ok)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, StatusExpired, s.Status)
	assert.Equal(t, overlay.ReasonTimeout, s.Reason)
	assert.False(t, s.ClosedAt.IsZero())

	_, live = tr.Current()
	assert.False(t, live)
}

func TestSessionTracker_ReplacementKeepsID(t *testing.T) {
	tr := NewSessionTracker()

	id1 := tr.Begin("org.example.a")
	id2 := tr.Begin("org.example.b")
	assert.Equal(t, id1, id2)

	cur, live := tr.Current()
	require.True(t, live)
	assert.Equal(t, "org.example.b", cur.App)
}

func TestSessionTracker_CloseWhileIdle(t *testing.T) {
	tr := NewSessionTracker()
	_, ok := tr.Close(overlay.ReasonScreenTap)
	assert.False(t, ok)
	assert.Empty(t, tr.Recent())
}

func TestSessionTracker_StatusMapping(t *testing.T) {
	tests := []struct {
		reason overlay.RemoveReason
		want   SessionStatus
	}{
		{overlay.ReasonTimeout, StatusExpired},
		{overlay.ReasonScreenTap, StatusDismissed},
		{overlay.RemoveReason("SHUTDOWN"), StatusClosed},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			tr := NewSessionTracker()
			tr.Begin("app")
			s, ok := tr.Close(tt.reason)
			require.True(t, ok)
			assert.Equal(t, tt.want, s.Status)
		})
	}
}

func TestSessionTracker_RecentRing(t *testing.T) {
	tr := NewSessionTracker()
	for i := 0; i < maxRecentSessions+8; i++ {
		tr.Begin(fmt.Sprintf("app-%d", i))
		tr.Close(overlay.ReasonTimeout)
	}

	recent := tr.Recent()
	require.Len(t, recent, maxRecentSessions)
	// Oldest entries fell off the front.
	assert.Equal(t, fmt.Sprintf("app-%d", 8), recent[0].App)
	assert.Equal(t, fmt.Sprintf("app-%d", maxRecentSessions+7), recent[len(recent)-1].App)
}

func TestSessionStatus_String(t *testing.T) {
	assert.Equal(t, "active", StatusActive.String())
	assert.Equal(t, "expired", StatusExpired.String())
	assert.Equal(t, "dismissed", StatusDismissed.String())
	assert.Equal(t, "closed", StatusClosed.String())
	assert.Equal(t, "unknown", SessionStatus(99).String())
}
