// Package session owns the mutable state of one authenticated tracking
// session and the control flow around it.
//
// # State machine
//
//	Idle ──start/continue──▶ Running ──interval fires──▶ PromptOpen
//	                            ▲                            │
//	                            │ "yes" (commit+refresh)     │ "no", or stop
//	                            └────────────────────────────┤ timer fires
//	                                                         ▼
//	                                                      Stopped
//
// Stopped is sticky: reconciles that still see a recently touched entry do
// not resume tracking until the user explicitly starts or continues.
//
// # Timers
//
// Three slots on one scheduler. The elapsed tick (1s) re-checks the oracle
// and advances the display accumulator; it never writes remotely. The
// interval timer re-arms unconditionally on every firing (idle, away, or
// mid-prompt), so the cadence needs no drift bookkeeping; its body decides
// whether a prompt is actually warranted. The stop timer only exists while a
// prompt is open. All timer callbacks recover from panics and keep their
// cadence; a failing tick is a log line, not a dead timer.
//
// # Serialization
//
// One mutex guards CurrentState. Timer callbacks, user commands, and the
// background poller all take it, so snapshot replacement can never interleave
// with a commit. Network calls run under the lock but are bounded by the
// gateway's request timeout; the elapsed cadence picks up again on the next
// tick after a slow call resolves.
package session
