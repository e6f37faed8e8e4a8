package clock

import "time"

// Clock provides the current time. Services take a Clock instead of calling
// time.Now directly so expiry logic can be tested without real waits.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Fixed is a Clock pinned to a settable instant. Intended for tests.
type Fixed struct {
	Time time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Time
}

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.Time = f.Time.Add(d)
}
