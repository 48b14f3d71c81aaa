// Package clock provides an injectable time source. Lifecycle transitions
// and sweep selection are all driven by a Clock so period math is
// deterministic under test.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC. All persisted timestamps are UTC.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant. Tests advance it explicitly.
type Fixed struct {
	t time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	return f.t
}

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.t = f.t.Add(d)
}

// Set repositions the fixed clock.
func (f *Fixed) Set(t time.Time) {
	f.t = t.UTC()
}
