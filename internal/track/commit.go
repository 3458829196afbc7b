package track

import (
	"context"
	"time"

	"tracktray/internal/harvest"
)

// CommitRequest carries the user intent behind one commit. Hours is the
// tracked total when WasRunning (the accumulator value), or a fixed increment
// to add to the matched entry's existing hours when not.
type CommitRequest struct {
	ProjectID  int64
	TaskID     int64
	Notes      string
	Hours      float64
	WasRunning bool
}

// Committer turns user intent into exactly one remote create-or-update. It
// never trusts cached state for the create/update decision: a fresh snapshot
// is fetched per commit so two clients racing on the same day cannot produce
// duplicate entries from stale data.
type Committer struct {
	gateway harvest.Gateway
	now     func() time.Time
}

// NewCommitter builds a Committer over the gateway. now is used for the note
// timestamp prefix; nil means time.Now.
func NewCommitter(gateway harvest.Gateway, now func() time.Time) *Committer {
	if now == nil {
		now = time.Now
	}
	return &Committer{gateway: gateway, now: now}
}

// Commit validates the selection, fetches a fresh snapshot, then updates the
// matching project/task entry or creates a new one. If the resulting record
// comes back with the server-side timer flag set, the flag is toggled off:
// recency of updated_at is the only running signal this design honors, and a
// lingering server timer would keep bumping it from the server side.
func (c *Committer) Commit(ctx context.Context, req CommitRequest) (harvest.TimeEntry, error) {
	if req.ProjectID == 0 || req.TaskID == 0 {
		return harvest.TimeEntry{}, ErrNoSelection
	}

	snap, err := c.gateway.GetToday(ctx)
	if err != nil {
		return harvest.TimeEntry{}, &CommitError{Op: "fetch", Err: err}
	}

	var result harvest.TimeEntry
	if match, ok := findEntry(snap.Entries, req.ProjectID, req.TaskID); ok {
		hours := req.Hours
		if !req.WasRunning {
			hours = match.Hours + req.Hours
		}
		fields := harvest.EntryFields{
			ProjectID: req.ProjectID,
			TaskID:    req.TaskID,
			Hours:     RoundHours(hours),
			Notes:     MergeNotes(match.Notes, req.Notes, c.now()),
		}
		result, err = c.gateway.Update(ctx, match.ID, fields)
		if err != nil {
			return harvest.TimeEntry{}, &CommitError{Op: "update", Err: err}
		}
	} else {
		fields := harvest.EntryFields{
			ProjectID: req.ProjectID,
			TaskID:    req.TaskID,
			Hours:     RoundHours(req.Hours),
			Notes:     MergeNotes("", req.Notes, c.now()),
		}
		result, err = c.gateway.Create(ctx, fields)
		if err != nil {
			return harvest.TimeEntry{}, &CommitError{Op: "create", Err: err}
		}
	}

	if result.TimerStartedAt != nil {
		result, err = c.gateway.ToggleTimer(ctx, result.ID)
		if err != nil {
			return harvest.TimeEntry{}, &CommitError{Op: "toggle", Err: err}
		}
	}

	return result, nil
}

func findEntry(entries []harvest.TimeEntry, projectID, taskID int64) (harvest.TimeEntry, bool) {
	for _, e := range entries {
		if e.ProjectID == projectID && e.TaskID == taskID {
			return e, true
		}
	}
	return harvest.TimeEntry{}, false
}
