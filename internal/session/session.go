package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tracktray/internal/clock"
	"tracktray/internal/harvest"
	"tracktray/internal/sched"
	"tracktray/internal/track"
)

// Phase is the entry-tracking state machine position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePromptOpen
	// PhaseStopped is sticky: a reconcile that still sees a recent entry must
	// not silently resume tracking after the user said no (or said nothing).
	// Only an explicit start/continue leaves it.
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePromptOpen:
		return "prompt-open"
	case PhaseStopped:
		return "stopped"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

const elapsedTick = time.Second

// Config carries the two durations the timers run on.
type Config struct {
	// Interval is the cadence of "still working?" prompts and doubles as the
	// oracle's recency window.
	Interval time.Duration
	// StopInterval is how long an open prompt waits before auto-stop.
	StopInterval time.Duration
}

// Session owns the CurrentState for one authenticated user and serializes
// every mutation: timer callbacks, user commands, and commits all take the
// same mutex, so a tick can never interleave with a half-applied snapshot.
// Network calls run under the lock; they are bounded by the gateway's request
// timeout, and the elapsed cadence resumes on the next tick after a slow
// commit resolves.
type Session struct {
	gateway   harvest.Gateway
	committer *track.Committer
	clock     clock.Clock
	sched     *sched.Scheduler
	notifier  Notifier
	recorder  Recorder
	cfg       Config

	mu          sync.Mutex
	ctx         context.Context
	state       track.CurrentState
	phase       Phase
	lastRefresh time.Time // wall time of the last applied reconcile
	active      bool
}

// New wires a Session. recorder may be nil.
func New(gateway harvest.Gateway, c clock.Clock, notifier Notifier, recorder Recorder, cfg Config) *Session {
	return &Session{
		gateway:   gateway,
		committer: track.NewCommitter(gateway, c.Now),
		clock:     c,
		sched:     sched.New(c),
		notifier:  notifier,
		recorder:  recorder,
		cfg:       cfg,
	}
}

// Start performs the initial refresh and arms the elapsed and interval
// timers. The context bounds every network call the session makes for its
// lifetime.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.active = true
	s.lastRefresh = s.clock.Now()
	s.mu.Unlock()

	if err := s.Refresh(); err != nil {
		return err
	}

	s.armElapsed()
	s.armInterval()
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() track.CurrentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Phase returns the state machine position.
func (s *Session) CurrentPhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Refresh fetches today's snapshot and reconciles. On any failure the prior
// state is kept untouched and the error is surfaced as a banner.
func (s *Session) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked()
}

func (s *Session) refreshLocked() error {
	snap, err := s.gateway.GetToday(s.ctx)
	if err != nil {
		s.notifier.Banner(fmt.Sprintf("refresh failed: %v", err))
		return err
	}
	fresh, err := track.Reconcile(snap, s.cfg.Interval, s.clock.Now())
	if err != nil {
		s.notifier.Banner(fmt.Sprintf("refresh discarded: %v", err))
		return err
	}

	// Session-owned flags survive the wholesale snapshot replacement.
	fresh.AwayFromDesk = s.state.AwayFromDesk
	fresh.IntervalPromptOpen = s.state.IntervalPromptOpen
	fresh.AutoStopArmed = s.state.AutoStopArmed

	if s.phase == PhaseStopped || s.phase == PhasePromptOpen {
		// Stopped stays stopped regardless of what recency says, and an open
		// prompt must not have the entry swapped out from under it.
		if s.phase == PhaseStopped {
			fresh.RunningEntryID = 0
			fresh.AccumulatedHours = 0
		}
	} else if fresh.Running() {
		s.phase = PhaseRunning
	} else {
		s.phase = PhaseIdle
	}

	s.state = fresh
	s.lastRefresh = s.clock.Now()
	s.notifier.StateChanged(s.state)
	return nil
}

// StartOrContinue commits the selected project/task and resumes tracking.
// Any away-from-desk suppression is cleared: touching the tracker is proof of
// presence.
func (s *Session) StartOrContinue(projectID, taskID int64, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.AwayFromDesk = false

	wasRunning := s.phase == PhaseRunning &&
		s.state.SelectedProject == projectID && s.state.SelectedTask == taskID
	hours := s.cfg.Interval.Hours()
	if wasRunning {
		hours = s.state.AccumulatedHours
	}

	entry, err := s.committer.Commit(s.ctx, track.CommitRequest{
		ProjectID:  projectID,
		TaskID:     taskID,
		Notes:      notes,
		Hours:      hours,
		WasRunning: wasRunning,
	})
	if err != nil {
		s.surfaceCommitErrorLocked(err)
		return err
	}
	s.record(entry)

	s.phase = PhaseRunning
	if err := s.refreshLocked(); err != nil {
		// The commit landed; a failed follow-up refresh only delays the
		// re-derivation until the next poll.
		log.Printf("post-commit refresh failed: %v", err)
	}
	s.armInterval()
	return nil
}

// Stop toggles the remote timer flag off for the entry and halts local
// tracking. Explicit, user-initiated stop: unlike auto-stop this does touch
// the remote store, because the user asked for it.
func (s *Session) Stop(entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.gateway.ToggleTimer(s.ctx, entryID); err != nil {
		s.notifier.Banner(fmt.Sprintf("stop failed: %v", err))
		return &track.CommitError{Op: "toggle", Err: err}
	}
	s.phase = PhaseStopped
	s.state.RunningEntryID = 0
	s.state.AccumulatedHours = 0
	if err := s.refreshLocked(); err != nil {
		log.Printf("post-stop refresh failed: %v", err)
	}
	return nil
}

// AnswerStillWorking resolves an open interval prompt. Yes commits the
// accumulated hours and keeps tracking; no stops locally without touching the
// remote store.
func (s *Session) AnswerStillWorking(yes bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePromptOpen {
		return nil
	}
	s.closePromptLocked()

	if !yes {
		s.phase = PhaseStopped
		s.state.RunningEntryID = 0
		s.state.AccumulatedHours = 0
		s.notifier.StateChanged(s.state)
		return nil
	}

	entry, ok := s.state.RunningEntry()
	if !ok {
		s.phase = PhaseIdle
		s.notifier.StateChanged(s.state)
		return nil
	}

	committed, err := s.committer.Commit(s.ctx, track.CommitRequest{
		ProjectID:  entry.ProjectID,
		TaskID:     entry.TaskID,
		Hours:      s.state.AccumulatedHours,
		WasRunning: true,
	})
	if err != nil {
		s.phase = PhaseRunning
		s.surfaceCommitErrorLocked(err)
		return err
	}
	s.record(committed)

	s.phase = PhaseRunning
	if err := s.refreshLocked(); err != nil {
		log.Printf("post-confirm refresh failed: %v", err)
	}
	return nil
}

// SetAwayFromDesk toggles prompt suppression. The interval cadence keeps
// ticking; its firing body just declines to prompt while away.
func (s *Session) SetAwayFromDesk(away bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AwayFromDesk = away
	s.notifier.StateChanged(s.state)
}

// Logout cancels all timers and discards the session state. When stopRemote
// is set and an entry is still running, its remote timer flag is toggled off
// first, matching the original applet's on-quit behavior.
func (s *Session) Logout(stopRemote bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stopRemote {
		if entry, ok := s.state.RunningEntry(); ok && s.phase == PhaseRunning {
			if _, err := s.gateway.ToggleTimer(s.ctx, entry.ID); err != nil {
				log.Printf("stop remote timer on logout: %v", err)
			}
		}
	}

	s.sched.CancelAll()
	s.active = false
	s.phase = PhaseIdle
	s.state = track.CurrentState{}
	s.notifier.StateChanged(s.state)
}

// ---- timer callbacks ----

func (s *Session) armElapsed() {
	s.sched.Arm(sched.SlotElapsed, elapsedTick, s.guard("elapsed", s.onElapsed))
}

func (s *Session) armInterval() {
	s.sched.Arm(sched.SlotInterval, s.cfg.Interval, s.guard("interval", s.onInterval))
}

func (s *Session) armStop() {
	s.sched.Arm(sched.SlotStop, s.cfg.StopInterval, s.guard("stop", s.onStop))
}

// guard keeps a panicking tick from killing the cadence: the error is logged
// and the timer rearms on its normal schedule regardless.
func (s *Session) guard(name string, fn func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("%s timer: recovered: %v", name, r)
			}
		}()
		fn()
	}
}

// onElapsed advances the live hours accumulator and re-checks the oracle: a
// different client may have gone quiet (or loud) since the last refresh.
// Never touches the remote store.
func (s *Session) onElapsed() {
	s.mu.Lock()

	if !s.active {
		s.mu.Unlock()
		return
	}
	now := s.clock.Now()

	if s.phase == PhaseRunning {
		if entry, ok := s.state.RunningEntry(); ok {
			if track.IsRunning(entry.UpdatedAt, s.cfg.Interval, now) {
				// Local wall clock since the last refresh, not server
				// updated_at deltas: skew between the two clocks is an
				// accepted display inaccuracy, not something to amplify.
				s.state.AccumulatedHours = entry.Hours + now.Sub(s.lastRefresh).Hours()
			} else {
				// Nobody (us included) has touched the entry within one
				// interval; some other client owns it no longer. Stop showing
				// it as live.
				s.state.RunningEntryID = 0
				s.state.AccumulatedHours = 0
				s.phase = PhaseIdle
			}
		}
		s.notifier.StateChanged(s.state)
	}

	s.mu.Unlock()
	s.armElapsed()
}

// onInterval fires the "still working?" cadence. It re-arms unconditionally,
// even while idle, away, or mid-prompt, so the rhythm needs no drift
// bookkeeping and resumes prompting the moment tracking is live again.
func (s *Session) onInterval() {
	s.mu.Lock()

	shouldPrompt := s.active &&
		s.phase == PhaseRunning &&
		!s.state.AwayFromDesk &&
		!s.state.IntervalPromptOpen

	var text string
	if shouldPrompt {
		if entry, ok := s.state.RunningEntry(); ok {
			text = track.EntryText(entry)
			s.phase = PhasePromptOpen
			s.state.IntervalPromptOpen = true
			s.state.AutoStopArmed = true
		} else {
			shouldPrompt = false
		}
	}
	active := s.active
	s.mu.Unlock()

	if shouldPrompt {
		s.notifier.PromptStillWorking(text)
		s.armStop()
	}
	if active {
		s.armInterval()
	}
}

// onStop fires when an open prompt went unanswered for the whole stop
// interval: close the prompt, stop locally, and say so. Deliberately no
// remote call: once commits cease, recency converges every client on "not
// running" without a write.
func (s *Session) onStop() {
	s.mu.Lock()

	if !s.active || s.phase != PhasePromptOpen {
		s.mu.Unlock()
		return
	}
	s.closePromptLocked()
	s.phase = PhaseStopped
	s.state.RunningEntryID = 0
	s.state.AccumulatedHours = 0
	state := s.state
	s.mu.Unlock()

	s.notifier.PromptAutoStopped()
	s.notifier.StateChanged(state)
}

func (s *Session) closePromptLocked() {
	s.state.IntervalPromptOpen = false
	s.state.AutoStopArmed = false
	s.sched.Cancel(sched.SlotStop)
}

func (s *Session) surfaceCommitErrorLocked(err error) {
	if errors.Is(err, track.ErrNoSelection) {
		s.notifier.Banner("select a project and task first")
		return
	}
	s.notifier.Banner(fmt.Sprintf("commit failed: %v", err))
}

func (s *Session) record(entry harvest.TimeEntry) {
	if s.recorder != nil {
		s.recorder.RecordCommit(entry)
	}
}
