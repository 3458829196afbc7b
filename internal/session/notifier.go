package session

import (
	"tracktray/internal/harvest"
	"tracktray/internal/track"
)

// Notifier is the surface the presentation layer implements. The session
// calls it from timer callbacks and command handlers; implementations must
// not call back into the session synchronously.
type Notifier interface {
	// StateChanged delivers a fresh copy of the current state after any
	// reconcile, tick, or transition.
	StateChanged(state track.CurrentState)
	// PromptStillWorking asks whether the user is still on the entry
	// described by text. The answer arrives via AnswerStillWorking.
	PromptStillWorking(text string)
	// PromptAutoStopped announces that tracking was stopped because an open
	// prompt went unanswered.
	PromptAutoStopped()
	// Banner surfaces a non-fatal, user-visible condition (service down,
	// commit failure, unusable snapshot).
	Banner(message string)
}

// Recorder receives successfully committed entries. The history store
// implements it; a nil Recorder disables recording.
type Recorder interface {
	RecordCommit(entry harvest.TimeEntry)
}

// NopNotifier discards all notifications. Useful in tests that only assert
// on state.
type NopNotifier struct{}

func (NopNotifier) StateChanged(track.CurrentState) {}
func (NopNotifier) PromptStillWorking(string)       {}
func (NopNotifier) PromptAutoStopped()              {}
func (NopNotifier) Banner(string)                   {}
