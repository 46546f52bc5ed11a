// Package a11y computes accessibility-safe display durations for
// transient UI.
package a11y

import (
	"sync"
	"time"
)

// ContentFlags describe which affordances a transient surface contains.
// Each one raises the minimum time a user needs to perceive and react
// to the surface.
type ContentFlags uint32

const (
	// FlagContentIcons indicates the surface shows one or more icons.
	FlagContentIcons ContentFlags = 1 << iota
	// FlagContentText indicates the surface shows text the user is
	// expected to read.
	FlagContentText
	// FlagContentControls indicates the surface contains interactive
	// controls (buttons, links).
	FlagContentControls
)

// Minimum safe durations per content flag.
const (
	minIconDuration    = 1 * time.Second
	minTextDuration    = 2 * time.Second
	minControlDuration = 5 * time.Second
)

// Policy computes recommended timeouts for transient surfaces.
// The multiplier comes from user accessibility settings: users who need
// more time to read or act get proportionally longer timeouts.
type Policy struct {
	mu         sync.RWMutex
	multiplier float64
}

// NewPolicy creates a Policy with the given timeout multiplier.
// A multiplier below 1 is treated as 1.
func NewPolicy(multiplier float64) *Policy {
	if multiplier < 1 {
		multiplier = 1
	}
	return &Policy{multiplier: multiplier}
}

// SetMultiplier updates the timeout multiplier. Used on config reload.
func (p *Policy) SetMultiplier(multiplier float64) {
	if multiplier < 1 {
		multiplier = 1
	}
	p.mu.Lock()
	p.multiplier = multiplier
	p.mu.Unlock()
}

// Multiplier returns the current timeout multiplier.
func (p *Policy) Multiplier() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.multiplier
}

// RecommendedTimeout returns the duration a surface with the given
// content should stay visible. The result is never shorter than the
// requested duration: callers can ask for more time, never less.
func (p *Policy) RecommendedTimeout(requested time.Duration, flags ContentFlags) time.Duration {
	var floor time.Duration
	if flags&FlagContentIcons != 0 {
		floor += minIconDuration
	}
	if flags&FlagContentText != 0 {
		floor += minTextDuration
	}
	if flags&FlagContentControls != 0 {
		floor += minControlDuration
	}

	base := requested
	if floor > base {
		base = floor
	}

	p.mu.RLock()
	multiplier := p.multiplier
	p.mu.RUnlock()

	recommended := time.Duration(float64(base) * multiplier)
	if recommended < requested {
		recommended = requested
	}
	return recommended
}
