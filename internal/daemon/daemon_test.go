package daemon

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/overlayd/internal/appinfo"
	"github.com/jmylchreest/overlayd/internal/config"
	"github.com/jmylchreest/overlayd/internal/dbus"
	"github.com/jmylchreest/overlayd/internal/history"
	"github.com/jmylchreest/overlayd/internal/overlay"
	"github.com/jmylchreest/overlayd/internal/surface"
)

type emittedSignal struct {
	id     string
	app    string
	reason string
}

// fakeControlServer stands in for the D-Bus server so daemon tests run
// without a bus.
type fakeControlServer struct {
	mu      sync.Mutex
	started bool
	stopped bool
	shown   []emittedSignal
	closed  []emittedSignal

	show   dbus.ShowHandler
	hide   dbus.HideHandler
	status dbus.StatusHandler
}

func (f *fakeControlServer) SetShowHandler(h dbus.ShowHandler)     { f.show = h }
func (f *fakeControlServer) SetHideHandler(h dbus.HideHandler)     { f.hide = h }
func (f *fakeControlServer) SetStatusHandler(h dbus.StatusHandler) { f.status = h }

func (f *fakeControlServer) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return nil
}

func (f *fakeControlServer) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeControlServer) EmitOverlayShown(id, app string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, emittedSignal{id: id, app: app})
	return nil
}

func (f *fakeControlServer) EmitOverlayClosed(id, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, emittedSignal{id: id, reason: reason})
	return nil
}

func (f *fakeControlServer) shownSignals() []emittedSignal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emittedSignal(nil), f.shown...)
}

func (f *fakeControlServer) closedSignals() []emittedSignal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emittedSignal(nil), f.closed...)
}

// notFoundResolver reports every app as unknown so tests never depend
// on the host's installed desktop entries.
type notFoundResolver struct{}

func (notFoundResolver) AppLabel(string) (string, error) { return "", appinfo.ErrNotFound }
func (notFoundResolver) AppIcon(string) (string, error)  { return "", appinfo.ErrNotFound }

// failingFactory refuses every surface, as a factory would with no
// compositor to talk to.
type failingFactory struct{}

func (failingFactory) Create(overlay.DisplayInfo) (overlay.Surface, error) {
	return nil, errors.New("compositor unavailable")
}

// updatableFactory wraps HeadlessFactory and records config updates.
type updatableFactory struct {
	*surface.HeadlessFactory
	mu      sync.Mutex
	updates []config.DisplayConfig
}

func (f *updatableFactory) UpdateConfig(cfg config.DisplayConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, cfg)
}

func newTestDaemon(t *testing.T) (*Daemon, *fakeControlServer, *surface.HeadlessFactory) {
	t.Helper()
	server := &fakeControlServer{}
	surfaces := surface.NewHeadlessFactory()
	d := New(Options{
		Server:   server,
		Surfaces: surfaces,
		Scale:    surface.NopScaleNotifier{},
		Apps:     notFoundResolver{},
	})
	require.NoError(t, d.Start())
	t.Cleanup(d.Stop)
	return d, server, surfaces
}

func TestDaemon_ShowDisplaysOverlay(t *testing.T) {
	d, server, surfaces := newTestDaemon(t)

	id, err := d.handleShow(dbus.ShowRequest{App: "org.example.app", Body: "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	d.queue.Sync()

	status := d.handleStatus()
	assert.True(t, status.Active)
	assert.Equal(t, id, status.ID)
	assert.Equal(t, "org.example.app", status.App)
	assert.False(t, status.ShownAt.IsZero())

	created := surfaces.Surfaces()
	require.Len(t, created, 1)
	assert.Equal(t, "hello", created[0].Info().Body)
	// No .desktop entry for the test app, so defaults fill the label.
	assert.Equal(t, overlay.DefaultAppLabel, created[0].Info().Label)

	shown := server.shownSignals()
	require.Len(t, shown, 1)
	assert.Equal(t, id, shown[0].id)
	assert.Equal(t, "org.example.app", shown[0].app)
}

func TestDaemon_ShowAppliesDefaultTimeout(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	_, err := d.handleShow(dbus.ShowRequest{App: "org.example.app", TimeoutMs: 0})
	require.NoError(t, err)
	d.queue.Sync()

	info, ok := d.ctl.CurrentInfo()
	require.True(t, ok)
	assert.Equal(t, config.DefaultConfig().Timeouts.Default.Duration(), info.RequestedTimeout)
}

func TestDaemon_ReplacementKeepsSessionAndSurface(t *testing.T) {
	d, server, surfaces := newTestDaemon(t)

	id1, err := d.handleShow(dbus.ShowRequest{App: "org.example.a"})
	require.NoError(t, err)
	id2, err := d.handleShow(dbus.ShowRequest{App: "org.example.b"})
	require.NoError(t, err)
	d.queue.Sync()

	assert.Equal(t, id1, id2)
	assert.Len(t, surfaces.Surfaces(), 1)
	assert.Equal(t, "org.example.b", surfaces.Surfaces()[0].Info().AppPackage)
	assert.Len(t, server.shownSignals(), 2)
	assert.Empty(t, server.closedSignals())
}

func TestDaemon_HideClosesSession(t *testing.T) {
	d, server, surfaces := newTestDaemon(t)

	id, err := d.handleShow(dbus.ShowRequest{App: "org.example.app"})
	require.NoError(t, err)
	d.queue.Sync()

	require.True(t, d.Hide(string(overlay.ReasonScreenTap)))
	d.queue.Sync()

	assert.False(t, d.handleStatus().Active)
	assert.True(t, surfaces.Surfaces()[0].Destroyed())

	closed := server.closedSignals()
	require.Len(t, closed, 1)
	assert.Equal(t, id, closed[0].id)
	assert.Equal(t, string(overlay.ReasonScreenTap), closed[0].reason)

	recent := d.tracker.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, StatusDismissed, recent[0].Status)
}

func TestDaemon_ShowFailureClosesSession(t *testing.T) {
	server := &fakeControlServer{}
	d := New(Options{
		Server:   server,
		Surfaces: failingFactory{},
		Scale:    surface.NopScaleNotifier{},
		Apps:     notFoundResolver{},
	})
	require.NoError(t, d.Start())
	t.Cleanup(d.Stop)

	id, err := d.handleShow(dbus.ShowRequest{App: "org.example.app"})
	require.NoError(t, err)
	d.queue.Sync()

	// The session opened for the request is closed again, so Status
	// reports idle and Hide has nothing to do.
	assert.False(t, d.handleStatus().Active)
	assert.False(t, d.Hide(string(overlay.ReasonScreenTap)))

	closed := server.closedSignals()
	require.Len(t, closed, 1)
	assert.Equal(t, id, closed[0].id)
	assert.Equal(t, string(reasonDisplayFailed), closed[0].reason)

	recent := d.tracker.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, StatusClosed, recent[0].Status)
}

func TestDaemon_HideWhileIdle(t *testing.T) {
	d, server, _ := newTestDaemon(t)
	assert.False(t, d.Hide(string(overlay.ReasonScreenTap)))
	d.queue.Sync()
	assert.Empty(t, server.closedSignals())
}

func TestDaemon_ApplyConfig(t *testing.T) {
	server := &fakeControlServer{}
	surfaces := &updatableFactory{HeadlessFactory: surface.NewHeadlessFactory()}
	d := New(Options{
		Server:   server,
		Surfaces: surfaces,
		Scale:    surface.NopScaleNotifier{},
		Apps:     notFoundResolver{},
	})
	require.NoError(t, d.Start())
	defer d.Stop()

	cfg := config.DefaultConfig()
	cfg.Timeouts.A11yMultiplier = 2.0
	cfg.Timeouts.Default = config.Duration(5 * time.Second)
	cfg.Display.Width = 420
	d.ApplyConfig(cfg)

	surfaces.mu.Lock()
	updates := append([]config.DisplayConfig(nil), surfaces.updates...)
	surfaces.mu.Unlock()
	require.Len(t, updates, 1)
	assert.Equal(t, 420, updates[0].Width)

	// New default timeout applies to subsequent shows.
	_, err := d.handleShow(dbus.ShowRequest{App: "org.example.app"})
	require.NoError(t, err)
	d.queue.Sync()
	info, ok := d.ctl.CurrentInfo()
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, info.RequestedTimeout)
}

func TestDaemon_SessionLogged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.jsonl")
	hist, err := history.Open(path)
	require.NoError(t, err)

	server := &fakeControlServer{}
	d := New(Options{
		Server:   server,
		Surfaces: surface.NewHeadlessFactory(),
		Scale:    surface.NopScaleNotifier{},
		Apps:     notFoundResolver{},
		History:  hist,
	})
	require.NoError(t, d.Start())

	id, err := d.handleShow(dbus.ShowRequest{App: "org.example.app"})
	require.NoError(t, err)
	d.queue.Sync()
	require.True(t, d.Hide(string(overlay.ReasonScreenTap)))
	d.queue.Sync()

	d.Stop()
	require.NoError(t, hist.Close())

	records, err := history.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "org.example.app", records[0].App)
	assert.Equal(t, "dismissed", records[0].Status)
	assert.Equal(t, string(overlay.ReasonScreenTap), records[0].Reason)
}

func TestDaemon_StopRemovesOverlay(t *testing.T) {
	server := &fakeControlServer{}
	surfaces := surface.NewHeadlessFactory()
	d := New(Options{
		Server:   server,
		Surfaces: surfaces,
		Scale:    surface.NopScaleNotifier{},
		Apps:     notFoundResolver{},
	})
	require.NoError(t, d.Start())

	_, err := d.handleShow(dbus.ShowRequest{App: "org.example.app"})
	require.NoError(t, err)
	d.queue.Sync()

	d.Stop()

	assert.True(t, surfaces.Surfaces()[0].Destroyed())
	closed := server.closedSignals()
	require.Len(t, closed, 1)
	assert.Equal(t, "SHUTDOWN", closed[0].reason)
	assert.True(t, server.stopped)
}
