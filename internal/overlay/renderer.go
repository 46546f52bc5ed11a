package overlay

// ContentRenderer is the capability hook a surface specialization
// implements to control how info is rendered. Implementations replace
// the base behavior per concern; there is no inheritance.
type ContentRenderer interface {
	// ApplyUpdate pushes info onto the surface.
	ApplyUpdate(s Surface, info DisplayInfo)
	// IconSize returns the icon edge length in pixels.
	IconSize() int
	// AnimateIn plays the entry animation for a freshly created
	// surface.
	AnimateIn(s Surface)
}

// BaseRenderer is the default ContentRenderer: it records info on the
// surface, uses a fixed icon size and shows surfaces without animation.
type BaseRenderer struct {
	// Size overrides the icon size when > 0.
	Size int
}

const defaultIconSize = 48

func (r BaseRenderer) ApplyUpdate(s Surface, info DisplayInfo) {
	s.Apply(info)
}

func (r BaseRenderer) IconSize() int {
	if r.Size > 0 {
		return r.Size
	}
	return defaultIconSize
}

func (r BaseRenderer) AnimateIn(s Surface) {}
