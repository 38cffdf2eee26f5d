// Package clock provides time sources producing epoch based timestamps in seconds
package clock

import (
	"sync"
	"time"
)

// Source supplies current time in seconds
type Source interface {
	// Now returns current time in seconds
	Now() float64
}

// Unix returns current Unix time in seconds with microsecond resolution
func Unix() float64 {
	return FromTime(time.Now())
}

// FromTime converts t to Unix time in seconds with microsecond resolution
func FromTime(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

// System is wall clock time source
type System struct{}

// Now returns current Unix time in seconds
func (System) Now() float64 {
	return Unix()
}

// Manual is a time source which only moves when told to.
// It is safe for concurrent use.
type Manual struct {
	mu sync.Mutex
	t  float64
}

// NewManual returns manual clock set to t
func NewManual(t float64) *Manual {
	return &Manual{t: t}
}

// Now returns current clock time
func (m *Manual) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}

// Set sets clock time to t
func (m *Manual) Set(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = t
}

// Advance moves clock time by dt and returns the new time
func (m *Manual) Advance(dt float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t += dt
	return m.t
}
