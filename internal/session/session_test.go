package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracktray/internal/clock"
	"tracktray/internal/harvest"
	"tracktray/internal/track"
)

type spyNotifier struct {
	states    []track.CurrentState
	prompts   []string
	autoStops int
	banners   []string
}

func (s *spyNotifier) StateChanged(state track.CurrentState) { s.states = append(s.states, state) }
func (s *spyNotifier) PromptStillWorking(text string)        { s.prompts = append(s.prompts, text) }
func (s *spyNotifier) PromptAutoStopped()                    { s.autoStops++ }
func (s *spyNotifier) Banner(message string)                 { s.banners = append(s.banners, message) }

var sessionStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T) (*Session, *harvest.MemoryGateway, *clock.Fake, *spyNotifier) {
	t.Helper()
	fake := clock.NewFake(sessionStart)
	gw := harvest.NewMemoryGateway(harvest.DemoProjects())
	gw.Now = fake.Now
	spy := &spyNotifier{}
	sess := New(gw, fake, spy, nil, Config{
		Interval:     20 * time.Minute,
		StopInterval: 5 * time.Minute,
	})
	return sess, gw, fake, spy
}

func todayEntries(t *testing.T, gw *harvest.MemoryGateway) []harvest.TimeEntry {
	t.Helper()
	snap, err := gw.GetToday(context.Background())
	require.NoError(t, err)
	return snap.Entries
}

func TestStart_EmptyDayIsIdle(t *testing.T) {
	sess, _, _, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))

	assert.Equal(t, PhaseIdle, sess.CurrentPhase())
	assert.False(t, sess.Snapshot().Running())
}

func TestStartOrContinue_CreatesEntryAndRuns(t *testing.T) {
	sess, gw, _, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))

	require.NoError(t, sess.StartOrContinue(101, 1, "refactoring"))

	assert.Equal(t, PhaseRunning, sess.CurrentPhase())
	state := sess.Snapshot()
	assert.True(t, state.Running())
	assert.Equal(t, int64(101), state.SelectedProject)
	assert.Equal(t, int64(1), state.SelectedTask)

	entries := todayEntries(t, gw)
	require.Len(t, entries, 1)
	assert.Equal(t, 0.33, entries[0].Hours)
	assert.Equal(t, "09:00: refactoring", entries[0].Notes)
}

func TestStartOrContinue_WhileRunningCommitsAccumulated(t *testing.T) {
	sess, gw, fake, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))
	require.NoError(t, sess.StartOrContinue(101, 1, "refactoring"))

	fake.Advance(10 * time.Minute)
	require.NoError(t, sess.StartOrContinue(101, 1, "more of the same"))

	entries := todayEntries(t, gw)
	require.Len(t, entries, 1)
	assert.InDelta(t, 0.50, entries[0].Hours, 0.001)
	assert.Equal(t, "09:00: refactoring\n09:10: more of the same", entries[0].Notes)
	assert.Equal(t, PhaseRunning, sess.CurrentPhase())
}

func TestStartOrContinue_NoSelectionBanners(t *testing.T) {
	sess, gw, _, spy := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))

	err := sess.StartOrContinue(0, 0, "oops")
	assert.ErrorIs(t, err, track.ErrNoSelection)
	assert.Empty(t, todayEntries(t, gw))
	require.NotEmpty(t, spy.banners)
	assert.Equal(t, "select a project and task first", spy.banners[len(spy.banners)-1])
}

func TestIntervalPrompt_OpensWithEntryText(t *testing.T) {
	sess, _, fake, spy := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))
	require.NoError(t, sess.StartOrContinue(101, 1, "refactoring"))

	fake.Advance(20 * time.Minute)

	assert.Equal(t, PhasePromptOpen, sess.CurrentPhase())
	require.Len(t, spy.prompts, 1)
	assert.Contains(t, spy.prompts[0], "Development")
	assert.Contains(t, spy.prompts[0], "TPS Migration")
	assert.True(t, sess.Snapshot().IntervalPromptOpen)
}

func TestAnswerYes_CommitsAccumulatedAndKeepsRunning(t *testing.T) {
	sess, gw, fake, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))
	require.NoError(t, sess.StartOrContinue(101, 1, "refactoring"))

	fake.Advance(20 * time.Minute)
	require.Equal(t, PhasePromptOpen, sess.CurrentPhase())

	require.NoError(t, sess.AnswerStillWorking(true))

	assert.Equal(t, PhaseRunning, sess.CurrentPhase())
	entries := todayEntries(t, gw)
	require.Len(t, entries, 1)
	// 0.33 committed plus the interval that just elapsed.
	assert.InDelta(t, 0.66, entries[0].Hours, 0.001)
	assert.False(t, sess.Snapshot().IntervalPromptOpen)
}

func TestAnswerNo_StopsLocallyWithoutRemoteWrite(t *testing.T) {
	sess, gw, fake, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))
	require.NoError(t, sess.StartOrContinue(101, 1, "refactoring"))

	fake.Advance(20 * time.Minute)
	require.Equal(t, PhasePromptOpen, sess.CurrentPhase())

	require.NoError(t, sess.AnswerStillWorking(false))

	assert.Equal(t, PhaseStopped, sess.CurrentPhase())
	state := sess.Snapshot()
	assert.False(t, state.Running())
	assert.Zero(t, state.AccumulatedHours)

	entries := todayEntries(t, gw)
	require.Len(t, entries, 1)
	assert.Equal(t, 0.33, entries[0].Hours)
}

func TestStopped_IsStickyAcrossRefresh(t *testing.T) {
	sess, gw, fake, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))
	require.NoError(t, sess.StartOrContinue(101, 1, "refactoring"))

	fake.Advance(20 * time.Minute)
	require.NoError(t, sess.AnswerStillWorking(false))
	require.Equal(t, PhaseStopped, sess.CurrentPhase())

	// Another client touches the entry. Recency alone would call it running
	// again, but Stopped holds until an explicit start or continue.
	entries := todayEntries(t, gw)
	require.Len(t, entries, 1)
	_, err := gw.Update(context.Background(), entries[0].ID, harvest.EntryFields{
		ProjectID: 101, TaskID: 1, Hours: entries[0].Hours, Notes: entries[0].Notes,
	})
	require.NoError(t, err)
	require.NoError(t, sess.Refresh())

	assert.Equal(t, PhaseStopped, sess.CurrentPhase())
	assert.False(t, sess.Snapshot().Running())
}

func TestAutoStop_UnansweredPromptStopsWithoutRemoteCall(t *testing.T) {
	sess, gw, fake, spy := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))
	require.NoError(t, sess.StartOrContinue(101, 1, "refactoring"))

	fake.Advance(20 * time.Minute)
	require.Equal(t, PhasePromptOpen, sess.CurrentPhase())

	fake.Advance(5 * time.Minute)

	assert.Equal(t, PhaseStopped, sess.CurrentPhase())
	assert.Equal(t, 1, spy.autoStops)
	state := sess.Snapshot()
	assert.False(t, state.Running())
	assert.False(t, state.IntervalPromptOpen)

	entries := todayEntries(t, gw)
	require.Len(t, entries, 1)
	assert.Equal(t, 0.33, entries[0].Hours)
	assert.Nil(t, entries[0].TimerStartedAt)
}

func TestAwayFromDesk_SuppressesPrompt(t *testing.T) {
	sess, _, fake, spy := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))
	require.NoError(t, sess.StartOrContinue(101, 1, "refactoring"))

	sess.SetAwayFromDesk(true)
	fake.Advance(20 * time.Minute)

	assert.Empty(t, spy.prompts)
	assert.NotEqual(t, PhasePromptOpen, sess.CurrentPhase())
}

func TestStartOrContinue_ClearsAway(t *testing.T) {
	sess, _, _, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))

	sess.SetAwayFromDesk(true)
	require.NoError(t, sess.StartOrContinue(101, 1, "back at it"))

	assert.False(t, sess.Snapshot().AwayFromDesk)
}

func TestElapsed_DetectsForeignEntryGoingQuiet(t *testing.T) {
	sess, gw, fake, spy := newTestSession(t)
	// An entry last touched by some other client ten minutes ago.
	gw.Seed(harvest.TimeEntry{
		ProjectID: 101, TaskID: 1, Hours: 1.0,
		ProjectName: "TPS Migration", TaskName: "Development",
		UpdatedAt: sessionStart.Add(-10 * time.Minute),
	})
	require.NoError(t, sess.Start(context.Background()))
	require.Equal(t, PhaseRunning, sess.CurrentPhase())

	// Ten more minutes of silence exhausts the recency window.
	fake.Advance(11 * time.Minute)

	assert.Equal(t, PhaseIdle, sess.CurrentPhase())
	assert.False(t, sess.Snapshot().Running())
	assert.Empty(t, spy.prompts)
}

func TestStop_TogglesRemoteAndSticks(t *testing.T) {
	sess, gw, fake, _ := newTestSession(t)
	started := sessionStart.Add(-time.Minute)
	gw.Seed(harvest.TimeEntry{
		ID: 7, ProjectID: 101, TaskID: 1, Hours: 0.5,
		ProjectName: "TPS Migration", TaskName: "Development",
		UpdatedAt: started, TimerStartedAt: &started,
	})
	require.NoError(t, sess.Start(context.Background()))
	require.Equal(t, PhaseRunning, sess.CurrentPhase())

	require.NoError(t, sess.Stop(7))

	assert.Equal(t, PhaseStopped, sess.CurrentPhase())
	assert.False(t, sess.Snapshot().Running())

	entries := todayEntries(t, gw)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].TimerStartedAt)

	// The toggle bumped UpdatedAt, so recency alone would call this running;
	// the sticky stop must win.
	fake.Advance(time.Minute)
	assert.Equal(t, PhaseStopped, sess.CurrentPhase())
}

func TestLogout_CancelsTimersAndClearsState(t *testing.T) {
	sess, _, fake, _ := newTestSession(t)
	require.NoError(t, sess.Start(context.Background()))
	require.NoError(t, sess.StartOrContinue(101, 1, "refactoring"))

	sess.Logout(true)

	assert.Equal(t, PhaseIdle, sess.CurrentPhase())
	assert.Equal(t, track.CurrentState{}, sess.Snapshot())
	assert.Zero(t, fake.PendingCount())

	// Nothing fires after logout.
	fake.Advance(time.Hour)
	assert.Equal(t, PhaseIdle, sess.CurrentPhase())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "running", PhaseRunning.String())
	assert.Equal(t, "prompt-open", PhasePromptOpen.String())
	assert.Equal(t, "stopped", PhaseStopped.String())
}
