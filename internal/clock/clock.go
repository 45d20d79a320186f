// Package clock provides the Clock abstraction the congestion
// controllers use instead of calling time.Now directly, so tests can
// drive them with a fake clock.
package clock

import "time"

// Clock returns the current wall time. Controllers never call
// time.Now() directly so tests can substitute a deterministic clock.
type Clock interface {
	Now() time.Time
}

// DefaultClock is the production Clock, backed by the real wall clock.
type DefaultClock struct{}

// Now returns time.Now().
func (DefaultClock) Now() time.Time { return time.Now() }
