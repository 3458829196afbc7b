package clock

import "time"

// Clock supplies the current time and schedules delayed callbacks. The
// scheduler and session depend on this interface so tests can drive time
// manually instead of sleeping.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending callback handle. Stop reports whether the callback was
// prevented from running; stopping an already-fired or already-stopped timer
// is a no-op.
type Timer interface {
	Stop() bool
}

// System is the real clock backed by the time package.
type System struct{}

// Now returns the current wall-clock time. Durations derived by subtracting
// two Now values still use Go's monotonic reading, so interval math is safe
// across wall-clock adjustments.
func (System) Now() time.Time { return time.Now() }

// AfterFunc schedules fn on its own goroutine after d.
func (System) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
