package track

import (
	"fmt"
	"time"

	"tracktray/internal/harvest"
)

// Reconcile derives a fresh CurrentState from a daily snapshot. The entry
// with the latest UpdatedAt is the candidate running entry (exact ties go to
// the later scan position, so an out-of-order late completion cannot unseat a
// newer record), and the recency oracle decides whether it still counts as
// running. When it does, the selection fields and the live hours accumulator
// seed from it; otherwise selection is left unset and the caller must ask the
// user.
//
// A snapshot missing its entries or projects list is unusable: the previous
// state must be kept and ErrMalformedSnapshot is returned. Reconcile never
// partially applies.
func Reconcile(snap harvest.DailySnapshot, interval time.Duration, now time.Time) (CurrentState, error) {
	if snap.Entries == nil {
		return CurrentState{}, fmt.Errorf("%w: day entries missing", ErrMalformedSnapshot)
	}
	if snap.Projects == nil {
		return CurrentState{}, fmt.Errorf("%w: projects missing", ErrMalformedSnapshot)
	}

	state := CurrentState{
		Entries:  snap.Entries,
		Projects: snap.Projects,
		ForDay:   snap.ForDay,
	}

	latest := -1
	for i, e := range snap.Entries {
		state.TodayTotalHours += e.Hours
		if latest < 0 || !e.UpdatedAt.Before(snap.Entries[latest].UpdatedAt) {
			latest = i
		}
	}
	state.TodayTotalHours = RoundHours(state.TodayTotalHours)

	if latest >= 0 {
		candidate := snap.Entries[latest]
		if IsRunning(candidate.UpdatedAt, interval, now) {
			state.RunningEntryID = candidate.ID
			state.SelectedProject = candidate.ProjectID
			state.SelectedTask = candidate.TaskID
			state.AccumulatedHours = candidate.Hours
		}
	}

	return state, nil
}
