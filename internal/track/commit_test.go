package track

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracktray/internal/harvest"
)

// countingGateway records every call so tests can assert exactly which
// operations a commit performed.
type countingGateway struct {
	snapshot harvest.DailySnapshot
	fetchErr error
	writeErr error

	fetches int
	creates int
	updates int
	toggles int

	lastCreate   harvest.EntryFields
	lastUpdate   harvest.EntryFields
	lastUpdateID int64

	// result returned from Create/Update; ToggleTimer clears its flag.
	result harvest.TimeEntry
}

func (g *countingGateway) GetToday(context.Context) (harvest.DailySnapshot, error) {
	g.fetches++
	if g.fetchErr != nil {
		return harvest.DailySnapshot{}, g.fetchErr
	}
	return g.snapshot, nil
}

func (g *countingGateway) Create(_ context.Context, fields harvest.EntryFields) (harvest.TimeEntry, error) {
	g.creates++
	g.lastCreate = fields
	if g.writeErr != nil {
		return harvest.TimeEntry{}, g.writeErr
	}
	return g.result, nil
}

func (g *countingGateway) Update(_ context.Context, id int64, fields harvest.EntryFields) (harvest.TimeEntry, error) {
	g.updates++
	g.lastUpdateID = id
	g.lastUpdate = fields
	if g.writeErr != nil {
		return harvest.TimeEntry{}, g.writeErr
	}
	return g.result, nil
}

func (g *countingGateway) ToggleTimer(_ context.Context, id int64) (harvest.TimeEntry, error) {
	g.toggles++
	toggled := g.result
	toggled.TimerStartedAt = nil
	return toggled, nil
}

func (g *countingGateway) CheckStatus(context.Context) error { return nil }

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 14, 32, 0, 0, time.Local)
}

func TestCommit_NoSelectionNeverTouchesGateway(t *testing.T) {
	gw := &countingGateway{}
	c := NewCommitter(gw, fixedNow)

	_, err := c.Commit(context.Background(), CommitRequest{ProjectID: 0, TaskID: 10})
	assert.ErrorIs(t, err, ErrNoSelection)

	_, err = c.Commit(context.Background(), CommitRequest{ProjectID: 1, TaskID: 0})
	assert.ErrorIs(t, err, ErrNoSelection)

	assert.Zero(t, gw.fetches)
	assert.Zero(t, gw.creates)
	assert.Zero(t, gw.updates)
}

func TestCommit_MatchingEntryUpdatesOnce(t *testing.T) {
	existing := harvest.TimeEntry{ID: 5, ProjectID: 1, TaskID: 10, Hours: 1.0, Notes: "13:00: did X"}
	gw := &countingGateway{
		snapshot: harvest.DailySnapshot{
			Entries:  []harvest.TimeEntry{existing},
			Projects: []harvest.Project{},
		},
		result: harvest.TimeEntry{ID: 5, ProjectID: 1, TaskID: 10, Hours: 1.33},
	}
	c := NewCommitter(gw, fixedNow)

	got, err := c.Commit(context.Background(), CommitRequest{
		ProjectID: 1,
		TaskID:    10,
		Notes:     "did Y",
		Hours:     0.33,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gw.updates)
	assert.Zero(t, gw.creates)
	assert.Equal(t, int64(5), gw.lastUpdateID)
	assert.Equal(t, 1.33, gw.lastUpdate.Hours)
	assert.Equal(t, "13:00: did X\n14:32: did Y", gw.lastUpdate.Notes)
	assert.Equal(t, int64(5), got.ID)
}

func TestCommit_RunningUsesTotalHoursDirectly(t *testing.T) {
	existing := harvest.TimeEntry{ID: 5, ProjectID: 1, TaskID: 10, Hours: 1.0}
	gw := &countingGateway{
		snapshot: harvest.DailySnapshot{Entries: []harvest.TimeEntry{existing}, Projects: []harvest.Project{}},
		result:   harvest.TimeEntry{ID: 5},
	}
	c := NewCommitter(gw, fixedNow)

	_, err := c.Commit(context.Background(), CommitRequest{
		ProjectID:  1,
		TaskID:     10,
		Hours:      1.8375,
		WasRunning: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.84, gw.lastUpdate.Hours)
}

func TestCommit_NoMatchCreatesOnce(t *testing.T) {
	other := harvest.TimeEntry{ID: 5, ProjectID: 1, TaskID: 99, Hours: 1.0}
	gw := &countingGateway{
		snapshot: harvest.DailySnapshot{Entries: []harvest.TimeEntry{other}, Projects: []harvest.Project{}},
		result:   harvest.TimeEntry{ID: 6, ProjectID: 1, TaskID: 10, Hours: 0.33},
	}
	c := NewCommitter(gw, fixedNow)

	got, err := c.Commit(context.Background(), CommitRequest{
		ProjectID: 1,
		TaskID:    10,
		Notes:     "kicked off",
		Hours:     0.33,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gw.creates)
	assert.Zero(t, gw.updates)
	assert.Equal(t, 0.33, gw.lastCreate.Hours)
	assert.Equal(t, "14:32: kicked off", gw.lastCreate.Notes)
	assert.Equal(t, int64(6), got.ID)
}

func TestCommit_ClearsServerTimerFlag(t *testing.T) {
	started := fixedNow()
	gw := &countingGateway{
		snapshot: harvest.DailySnapshot{Entries: []harvest.TimeEntry{}, Projects: []harvest.Project{}},
		result:   harvest.TimeEntry{ID: 6, TimerStartedAt: &started},
	}
	c := NewCommitter(gw, fixedNow)

	got, err := c.Commit(context.Background(), CommitRequest{ProjectID: 1, TaskID: 10, Hours: 0.33})
	require.NoError(t, err)

	assert.Equal(t, 1, gw.toggles)
	assert.Nil(t, got.TimerStartedAt)
}

func TestCommit_FetchFailureWrapsCommitError(t *testing.T) {
	cause := errors.New("connection refused")
	gw := &countingGateway{fetchErr: cause}
	c := NewCommitter(gw, fixedNow)

	_, err := c.Commit(context.Background(), CommitRequest{ProjectID: 1, TaskID: 10, Hours: 0.33})

	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, "fetch", commitErr.Op)
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, gw.creates)
	assert.Zero(t, gw.updates)
}

func TestCommit_WriteFailureWrapsCommitError(t *testing.T) {
	cause := errors.New("500 from service")
	gw := &countingGateway{
		snapshot: harvest.DailySnapshot{Entries: []harvest.TimeEntry{}, Projects: []harvest.Project{}},
		writeErr: cause,
	}
	c := NewCommitter(gw, fixedNow)

	_, err := c.Commit(context.Background(), CommitRequest{ProjectID: 1, TaskID: 10, Hours: 0.33})

	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, "create", commitErr.Op)
	assert.ErrorIs(t, err, cause)
}
