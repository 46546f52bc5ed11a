package theme

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/fsnotify/fsnotify"
)

// Loader loads the overlay stylesheet into a GTK CSS provider and
// hot-reloads the user override when it changes on disk.
type Loader struct {
	logger   *slog.Logger
	provider *gtk.CSSProvider
	path     string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewLoader creates a Loader for the user stylesheet at path. An empty
// path means the default location.
func NewLoader(path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = StylePath()
	}
	return &Loader{
		logger:   logger,
		provider: gtk.NewCSSProvider(),
		path:     path,
	}
}

// Load reads the stylesheet into the provider. Must run on the GTK main
// loop.
func (l *Loader) Load() {
	css, userStyle, err := ReadStyle(l.path)
	if err != nil {
		l.logger.Warn("failed to read stylesheet, using bundled default", "path", l.path, "error", err)
		css = DefaultCSS()
	}
	l.provider.LoadFromString(css)
	if userStyle {
		l.logger.Info("loaded user stylesheet", "path", l.path)
	} else {
		l.logger.Debug("loaded bundled stylesheet")
	}
}

// Apply attaches the provider to a display. A nil display means the
// default one. Must run on the GTK main loop.
func (l *Loader) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, cannot apply stylesheet")
		return
	}
	gtk.StyleContextAddProviderForDisplay(
		display,
		l.provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}

// StartHotReload watches the user stylesheet and reloads the provider
// on change. reload is invoked on the watcher goroutine and must
// marshal onto the GTK main loop itself.
func (l *Loader) StartHotReload(reload func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	l.watcher = watcher
	l.done = make(chan struct{})
	filename := filepath.Base(l.path)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filename {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
					l.logger.Info("stylesheet changed, reloading", "path", l.path)
					reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("stylesheet watcher error", "error", err)
			case <-l.done:
				return
			}
		}
	}()

	l.logger.Debug("stylesheet watcher started", "path", l.path)
	return nil
}

// StopHotReload stops the stylesheet watcher.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher == nil {
		return
	}
	close(l.done)
	_ = l.watcher.Close()
	l.watcher = nil
}
