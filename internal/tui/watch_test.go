package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/overlayd/internal/dbus"
)

func TestUpdate_EventTracksStatus(t *testing.T) {
	m := newModel(nil, make(chan dbus.Event))

	shown := dbus.Event{Type: dbus.EventShown, ID: "01X", App: "org.example.app", At: time.Now()}
	next, _ := m.Update(eventMsg(shown))
	m = next.(Model)

	require.Len(t, m.log, 1)
	assert.True(t, m.status.Active)
	assert.Equal(t, "org.example.app", m.status.App)

	closed := dbus.Event{Type: dbus.EventClosed, ID: "01X", Reason: "TIMEOUT", At: time.Now()}
	next, _ = m.Update(eventMsg(closed))
	m = next.(Model)

	require.Len(t, m.log, 2)
	assert.False(t, m.status.Active)
}

func TestUpdate_LogBounded(t *testing.T) {
	m := newModel(nil, make(chan dbus.Event))
	for i := 0; i < maxEvents+10; i++ {
		next, _ := m.Update(eventMsg(dbus.Event{Type: dbus.EventShown, App: "app", At: time.Now()}))
		m = next.(Model)
	}
	assert.Len(t, m.log, maxEvents)
}

func TestVisibleLog(t *testing.T) {
	log := make([]dbus.Event, 10)
	for i := range log {
		log[i] = dbus.Event{ID: string(rune('a' + i))}
	}

	assert.Len(t, visibleLog(log, 20), 10)

	got := visibleLog(log, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "h", got[0].ID)
	assert.Equal(t, "j", got[2].ID)
}
