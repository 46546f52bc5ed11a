// Package main is the entry point for the overlayd transient overlay daemon.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/overlayd/internal/appinfo"
	"github.com/jmylchreest/overlayd/internal/config"
	"github.com/jmylchreest/overlayd/internal/daemon"
	"github.com/jmylchreest/overlayd/internal/dbus"
	"github.com/jmylchreest/overlayd/internal/history"
	"github.com/jmylchreest/overlayd/internal/overlay"
	"github.com/jmylchreest/overlayd/internal/power"
	"github.com/jmylchreest/overlayd/internal/surface"
	"github.com/jmylchreest/overlayd/internal/theme"
)

const (
	appID   = "io.github.jmylchreest.overlayd"
	appName = "overlayd"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	headless := flag.Bool("headless", false, "Run without a window system (overlays are logged, not drawn)")
	configPath := flag.String("config", "", "Path to config file (default ~/.config/overlayd/config.toml)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		println("overlayd version", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Daemon.LogLevel),
	}))
	slog.SetDefault(logger)

	if *headless {
		runHeadless(cfg, *configPath, logger)
		return
	}

	runGTK(cfg, *configPath, logger)
}

// logLevel maps the config log level to slog.
func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// powerMonitor returns the logind monitor, degrading to a stub when
// logind is unreachable (containers, headless CI).
func powerMonitor(logger *slog.Logger) overlay.PowerMonitor {
	mon, err := power.NewLogindMonitor(logger)
	if err != nil {
		logger.Warn("logind unavailable, display wake disabled", "error", err)
		return power.Stub{}
	}
	return mon
}

// openHistoryLog opens the session log, returning nil when it cannot
// be created. The daemon runs without session history in that case.
func openHistoryLog(logger *slog.Logger) *history.Log {
	path, err := history.LogPath()
	if err != nil {
		logger.Warn("failed to resolve session log path", "error", err)
		return nil
	}
	hist, err := history.Open(path)
	if err != nil {
		logger.Warn("failed to open session log", "error", err)
		return nil
	}
	logger.Debug("session log opened", "path", path)
	return hist
}

// runHeadless runs overlayd without a window system. Overlay content is
// recorded on headless surfaces and logged; the D-Bus interface works
// as usual.
func runHeadless(cfg *config.Config, configPath string, logger *slog.Logger) {
	logger.Info("starting overlayd in headless mode", "version", version)

	hist := openHistoryLog(logger)

	d := daemon.New(daemon.Options{
		Config:   cfg,
		Server:   dbus.NewServer(logger),
		Surfaces: surface.NewHeadlessFactory(),
		Scale:    surface.NopScaleNotifier{},
		Power:    powerMonitor(logger),
		Apps:     appinfo.NewDesktopResolver(logger),
		History:  hist,
		Logger:   logger,
	})
	if err := d.Start(); err != nil {
		logger.Error("failed to start daemon", "error", err)
		os.Exit(1)
	}

	watcher := startConfigWatcher(configPath, d, logger)

	logger.Info("overlayd ready", "dbus_interface", dbus.Interface)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	if watcher != nil {
		watcher.Stop()
	}
	d.Stop()
	if hist != nil {
		_ = hist.Close()
	}
}

// runGTK runs overlayd with real GTK4 layer-shell overlays.
func runGTK(cfg *config.Config, configPath string, logger *slog.Logger) {
	logger.Info("starting overlayd", "version", version)

	app := gtk.NewApplication(appID, 0)

	var (
		d       *daemon.Daemon
		watcher *daemon.ConfigWatcher
		styles  *theme.Loader
		hist    *history.Log
		running atomic.Bool
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		glib.IdleAdd(func() {
			if running.Load() {
				app.Quit()
			}
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		styles = theme.NewLoader("", logger)
		styles.Load()
		styles.Apply(nil)
		if err := styles.StartHotReload(func() {
			glib.IdleAdd(func() { styles.Load() })
		}); err != nil {
			logger.Warn("failed to start stylesheet watcher", "error", err)
		}

		factory := surface.NewGTKFactory(app, cfg.Display, func() {
			d.Hide(string(overlay.ReasonScreenTap))
		}, logger)

		hist = openHistoryLog(logger)

		d = daemon.New(daemon.Options{
			Config:   cfg,
			Server:   dbus.NewServer(logger),
			Surfaces: factory,
			Renderer: surface.GTKRenderer{Size: cfg.Display.IconSize},
			Scale:    surface.GTKScaleNotifier{},
			Power:    powerMonitor(logger),
			Apps:     appinfo.NewDesktopResolver(logger),
			History:  hist,
			Logger:   logger,
		})
		if err := d.Start(); err != nil {
			logger.Error("failed to start daemon", "error", err)
			app.Quit()
			return
		}

		watcher = startConfigWatcher(configPath, d, logger)

		logger.Info("overlayd ready", "dbus_interface", dbus.Interface)

		// Keep the application running with no visible windows
		// (GTK apps quit when all windows are closed)
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(app)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if watcher != nil {
			watcher.Stop()
		}
		if styles != nil {
			styles.StopHotReload()
		}
		if d != nil {
			d.Stop()
		}
		if hist != nil {
			_ = hist.Close()
		}
		running.Store(false)
	})

	status := app.Run(os.Args[:1])
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		os.Exit(status)
	}

	logger.Info("overlayd stopped")
}

// startConfigWatcher wires config hot reload into the daemon. Returns
// nil when the watcher cannot be created; the daemon runs without
// reload in that case.
func startConfigWatcher(configPath string, d *daemon.Daemon, logger *slog.Logger) *daemon.ConfigWatcher {
	if configPath == "" {
		configPath = config.ConfigPath()
	}
	if configPath == "" {
		return nil
	}

	watcher, err := daemon.NewConfigWatcher(configPath, d.ApplyConfig, logger)
	if err != nil {
		logger.Warn("failed to create config watcher", "error", err)
		return nil
	}
	if err := watcher.Start(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
		watcher.Stop()
		return nil
	}
	return watcher
}
