package surface

import (
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/overlayd/internal/config"
	"github.com/jmylchreest/overlayd/internal/overlay"
)

// TapFunc is invoked when the user clicks/taps the overlay.
type TapFunc func()

// GTKSurface is an overlay window rendered through GTK4 layer-shell.
// All GTK mutation is marshalled onto the GTK main loop; the surface
// itself may be driven from any goroutine.
type GTKSurface struct {
	window   *gtk.Window
	box      *gtk.Box
	icon     *gtk.Image
	label    *gtk.Label
	body     *gtk.Label
	cfg      config.DisplayConfig
	iconSize int
	closed   bool
}

// GTKFactory creates GTKSurfaces bound to a gtk.Application.
type GTKFactory struct {
	app    *gtk.Application
	cfg    config.DisplayConfig
	logger *slog.Logger
	onTap  TapFunc
}

// NewGTKFactory creates a factory. onTap may be nil.
func NewGTKFactory(app *gtk.Application, cfg config.DisplayConfig, onTap TapFunc, logger *slog.Logger) *GTKFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &GTKFactory{app: app, cfg: cfg, logger: logger, onTap: onTap}
}

// UpdateConfig swaps the display settings used for future surfaces.
// Called on config hot reload.
func (f *GTKFactory) UpdateConfig(cfg config.DisplayConfig) {
	f.cfg = cfg
}

// Create builds a surface on the GTK main loop and waits for it.
func (f *GTKFactory) Create(info overlay.DisplayInfo) (overlay.Surface, error) {
	ch := make(chan *GTKSurface, 1)
	glib.IdleAdd(func() {
		ch <- f.build()
	})
	s := <-ch
	f.logger.Debug("overlay surface created", "app", info.AppPackage)
	return s, nil
}

// build constructs the window. Runs on the GTK main loop.
func (f *GTKFactory) build() *GTKSurface {
	s := &GTKSurface{cfg: f.cfg, iconSize: f.cfg.IconSize}

	s.window = gtk.NewWindow()
	s.window.SetApplication(f.app)
	s.window.SetDecorated(false)
	s.window.SetResizable(false)
	s.window.SetDefaultSize(f.cfg.Width, -1)

	layershell.InitForWindow(s.window)
	layershell.SetLayer(s.window, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(s.window, 0)
	layershell.SetKeyboardMode(s.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(s.window, "overlayd")
	s.applyAnchors()

	s.box = gtk.NewBox(gtk.OrientationHorizontal, 12)
	s.box.AddCSSClass("overlay-chip")
	s.box.SetMarginTop(10)
	s.box.SetMarginBottom(10)
	s.box.SetMarginStart(14)
	s.box.SetMarginEnd(14)

	s.icon = gtk.NewImage()
	s.icon.AddCSSClass("overlay-icon")
	s.icon.SetPixelSize(s.iconSize)
	s.box.Append(s.icon)

	textBox := gtk.NewBox(gtk.OrientationVertical, 2)
	s.label = gtk.NewLabel("")
	s.label.AddCSSClass("overlay-label")
	s.label.SetXAlign(0)
	textBox.Append(s.label)

	s.body = gtk.NewLabel("")
	s.body.AddCSSClass("overlay-body")
	s.body.SetXAlign(0)
	s.body.SetVisible(false)
	textBox.Append(s.body)
	s.box.Append(textBox)

	s.window.SetChild(s.box)

	if f.onTap != nil {
		onTap := f.onTap
		clickCtrl := gtk.NewGestureClick()
		clickCtrl.SetButton(0)
		clickCtrl.ConnectReleased(func(nPress int, x, y float64) {
			onTap()
		})
		s.window.AddController(clickCtrl)
	}

	return s
}

// applyAnchors sets the layer-shell anchors and margins for the
// configured position. Runs on the GTK main loop.
func (s *GTKSurface) applyAnchors() {
	offsetX := s.cfg.OffsetX
	offsetY := s.cfg.OffsetY

	layershell.SetAnchor(s.window, layershell.LayerShellEdgeTop, false)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeBottom, false)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeLeft, false)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeRight, false)

	switch s.cfg.Position {
	case config.PositionTopRight:
		layershell.SetAnchor(s.window, layershell.LayerShellEdgeTop, true)
		layershell.SetAnchor(s.window, layershell.LayerShellEdgeRight, true)
		layershell.SetMargin(s.window, layershell.LayerShellEdgeTop, offsetY)
		layershell.SetMargin(s.window, layershell.LayerShellEdgeRight, offsetX)
	case config.PositionTopLeft:
		layershell.SetAnchor(s.window, layershell.LayerShellEdgeTop, true)
		layershell.SetAnchor(s.window, layershell.LayerShellEdgeLeft, true)
		layershell.SetMargin(s.window, layershell.LayerShellEdgeTop, offsetY)
		layershell.SetMargin(s.window, layershell.LayerShellEdgeLeft, offsetX)
	case config.PositionTopCenter:
		layershell.SetAnchor(s.window, layershell.LayerShellEdgeTop, true)
		layershell.SetMargin(s.window, layershell.LayerShellEdgeTop, offsetY)
	case config.PositionBottomRight:
		layershell.SetAnchor(s.window, layershell.LayerShellEdgeBottom, true)
		layershell.SetAnchor(s.window, layershell.LayerShellEdgeRight, true)
		layershell.SetMargin(s.window, layershell.LayerShellEdgeBottom, offsetY)
		layershell.SetMargin(s.window, layershell.LayerShellEdgeRight, offsetX)
	case config.PositionBottomLeft:
		layershell.SetAnchor(s.window, layershell.LayerShellEdgeBottom, true)
		layershell.SetAnchor(s.window, layershell.LayerShellEdgeLeft, true)
		layershell.SetMargin(s.window, layershell.LayerShellEdgeBottom, offsetY)
		layershell.SetMargin(s.window, layershell.LayerShellEdgeLeft, offsetX)
	case config.PositionBottomCenter:
		layershell.SetAnchor(s.window, layershell.LayerShellEdgeBottom, true)
		layershell.SetMargin(s.window, layershell.LayerShellEdgeBottom, offsetY)
	case config.PositionCenter:
		// No anchors: the compositor centers the surface.
	}
}

// Apply updates the rendered content.
func (s *GTKSurface) Apply(info overlay.DisplayInfo) {
	glib.IdleAdd(func() {
		if s.closed {
			return
		}
		icon := info.Icon
		if icon == "" {
			icon = overlay.DefaultAppIcon
		}
		s.icon.SetFromIconName(icon)

		label := info.Label
		if label == "" {
			label = overlay.DefaultAppLabel
		}
		s.label.SetText(label)
		s.window.SetTooltipText(label)

		s.body.SetText(info.Body)
		s.body.SetVisible(info.Body != "")
	})
}

// Present shows the window.
func (s *GTKSurface) Present() {
	glib.IdleAdd(func() {
		if !s.closed {
			s.window.Present()
		}
	})
}

// Destroy closes the window. Safe to call more than once.
func (s *GTKSurface) Destroy() {
	glib.IdleAdd(func() {
		if s.closed {
			return
		}
		s.closed = true
		s.window.Close()
	})
}

// GTKRenderer renders overlay content onto GTKSurfaces with a CSS
// entry animation.
type GTKRenderer struct {
	Size int
}

func (r GTKRenderer) ApplyUpdate(s overlay.Surface, info overlay.DisplayInfo) {
	s.Apply(info)
}

func (r GTKRenderer) IconSize() int {
	if r.Size > 0 {
		return r.Size
	}
	return 48
}

func (r GTKRenderer) AnimateIn(s overlay.Surface) {
	gs, ok := s.(*GTKSurface)
	if !ok {
		return
	}
	glib.IdleAdd(func() {
		if !gs.closed {
			gs.box.AddCSSClass("overlay-enter")
		}
	})
	gs.Present()
}

// GTKScaleNotifier reports display density changes by watching the
// GTK font scaling setting. Layer-shell surfaces need a rebuild when
// it changes.
type GTKScaleNotifier struct{}

// Subscribe registers fn for density changes and returns an
// unsubscribe function.
func (GTKScaleNotifier) Subscribe(fn func()) func() {
	settings := gtk.SettingsGetDefault()
	if settings == nil {
		return func() {}
	}
	handle := settings.NotifyProperty("gtk-xft-dpi", fn)
	return func() {
		settings.HandlerDisconnect(handle)
	}
}
