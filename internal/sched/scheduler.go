// Package sched owns the three cooperating timeouts behind the tracking
// loop: the once-a-second elapsed tick, the "still working?" interval prompt,
// and the stop-on-silence timeout armed while a prompt is open.
//
// Arming a slot always cancels any pending instance of that same slot first.
// The original applet re-registered callbacks from inside themselves and
// leaked duplicate timeouts across restarts; cancel-then-arm makes a double
// arm collapse to a single future firing.
package sched

import (
	"sync"
	"time"

	"tracktray/internal/clock"
)

// Slot names one of the scheduler's timers.
type Slot int

const (
	SlotElapsed Slot = iota
	SlotInterval
	SlotStop
	slotCount
)

// Scheduler manages the three named timer slots over a Clock. All methods
// are safe for concurrent use; callbacks run on the clock's dispatch
// goroutine.
type Scheduler struct {
	clock clock.Clock

	mu     sync.Mutex
	timers [slotCount]clock.Timer
	gen    [slotCount]uint64
}

// New builds a Scheduler on the given clock.
func New(c clock.Clock) *Scheduler {
	return &Scheduler{clock: c}
}

// Arm schedules fn to fire once after d, canceling any pending firing of the
// same slot. The slot disarms itself before fn runs, so a callback that wants
// a cadence re-arms explicitly.
func (s *Scheduler) Arm(slot Slot, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.timers[slot]; t != nil {
		t.Stop()
	}
	s.gen[slot]++
	g := s.gen[slot]
	s.timers[slot] = s.clock.AfterFunc(d, func() {
		s.clear(slot, g)
		fn()
	})
}

// Cancel stops a pending firing of the slot. Canceling an unarmed slot is a
// no-op.
func (s *Scheduler) Cancel(slot Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.timers[slot]; t != nil {
		t.Stop()
		s.timers[slot] = nil
	}
	s.gen[slot]++
}

// CancelAll stops every pending firing. Used on logout and shutdown.
func (s *Scheduler) CancelAll() {
	for slot := Slot(0); slot < slotCount; slot++ {
		s.Cancel(slot)
	}
}

// Armed reports whether the slot has a pending firing.
func (s *Scheduler) Armed(slot Slot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[slot] != nil
}

// clear disarms the slot only if the firing belongs to the current arming;
// a firing that raced with a rearm must not knock out the fresh timer.
func (s *Scheduler) clear(slot Slot, g uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[slot] == g {
		s.timers[slot] = nil
	}
}
