// Package surface provides overlay surface implementations: a real
// GTK4 layer-shell window and a headless surface for monitor mode and
// tests.
package surface

import (
	"sync"

	"github.com/jmylchreest/overlayd/internal/overlay"
)

// Headless is a Surface that records what would be displayed without
// touching a window system.
type Headless struct {
	mu        sync.Mutex
	info      overlay.DisplayInfo
	applied   int
	destroyed bool
}

// Apply records the displayed info.
func (s *Headless) Apply(info overlay.DisplayInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = info
	s.applied++
}

// Destroy marks the surface dead.
func (s *Headless) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
}

// Info returns the last applied info.
func (s *Headless) Info() overlay.DisplayInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Destroyed reports whether Destroy was called.
func (s *Headless) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// AppliedCount returns how many times Apply ran.
func (s *Headless) AppliedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// HeadlessFactory creates Headless surfaces and keeps every surface it
// ever created for inspection.
type HeadlessFactory struct {
	mu       sync.Mutex
	surfaces []*Headless
}

// NewHeadlessFactory creates a HeadlessFactory.
func NewHeadlessFactory() *HeadlessFactory {
	return &HeadlessFactory{}
}

// Create returns a fresh Headless surface.
func (f *HeadlessFactory) Create(info overlay.DisplayInfo) (overlay.Surface, error) {
	s := &Headless{}
	f.mu.Lock()
	f.surfaces = append(f.surfaces, s)
	f.mu.Unlock()
	return s, nil
}

// Surfaces returns every surface created so far.
func (f *HeadlessFactory) Surfaces() []*Headless {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Headless, len(f.surfaces))
	copy(out, f.surfaces)
	return out
}

// NopScaleNotifier is a ScaleNotifier that never fires. Used in
// headless mode where there is no compositor to report scale changes.
type NopScaleNotifier struct{}

// Subscribe returns an unsubscribe that does nothing.
func (NopScaleNotifier) Subscribe(func()) func() {
	return func() {}
}
