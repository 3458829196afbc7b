package track

import (
	"fmt"

	"tracktray/internal/harvest"
)

// CurrentState is the core's single mutable aggregate for one authenticated
// session. Reconcile replaces the snapshot-derived fields wholesale; the
// session layer owns the transient flags and serializes all mutation.
//
// ID fields use zero for "unset"; the remote store never issues zero IDs.
type CurrentState struct {
	// Snapshot-derived, replaced on every reconcile.
	Entries          []harvest.TimeEntry
	Projects         []harvest.Project // server order, drives stable selector indices
	RunningEntryID   int64
	SelectedProject  int64
	SelectedTask     int64
	AccumulatedHours float64 // running entry's hours plus local elapsed time, display only
	TodayTotalHours  float64
	ForDay           string

	// Session-owned flags, carried across reconciles.
	AwayFromDesk       bool
	IntervalPromptOpen bool
	AutoStopArmed      bool
}

// Running reports whether a running entry was identified.
func (s CurrentState) Running() bool { return s.RunningEntryID != 0 }

// RunningEntry returns the running entry when there is one.
func (s CurrentState) RunningEntry() (harvest.TimeEntry, bool) {
	return s.Entry(s.RunningEntryID)
}

// Entry returns the entry with the given id from the current snapshot.
func (s CurrentState) Entry(id int64) (harvest.TimeEntry, bool) {
	if id == 0 {
		return harvest.TimeEntry{}, false
	}
	for _, e := range s.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return harvest.TimeEntry{}, false
}

// ProjectLabel renders "Client - Name" for a project id, matching the
// selector rows.
func (s CurrentState) ProjectLabel(id int64) string {
	for _, p := range s.Projects {
		if p.ID == id {
			return fmt.Sprintf("%s - %s", p.Client, p.Name)
		}
	}
	return ""
}

// TasksFor returns the task list of a project in server order.
func (s CurrentState) TasksFor(projectID int64) []harvest.Task {
	for _, p := range s.Projects {
		if p.ID == projectID {
			return p.Tasks
		}
	}
	return nil
}

// EntryText renders the "hours on task for project" line used by prompts and
// the status display.
func EntryText(e harvest.TimeEntry) string {
	return fmt.Sprintf("%0.02f on %s for %s", e.Hours, e.TaskName, e.ProjectName)
}

// SummaryText renders the today-total line.
func (s CurrentState) SummaryText() string {
	return fmt.Sprintf("%d entries %0.02f hours total", len(s.Entries), s.TodayTotalHours)
}
