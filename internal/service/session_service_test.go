package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
)

func TestStartValidatesAndHoldsTheSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.sessions.Start(ctx, nil, 0)
	assert.True(t, apperr.IsValidation(err))

	first, err := env.sessions.Start(ctx, nil, 25*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, models.SessionRunning, first.State)

	_, err = env.sessions.Start(ctx, nil, 25*time.Minute)
	assert.True(t, apperr.IsConflict(err), "the focus slot holds one session")

	active, err := env.sessions.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID, "the running session is untouched by the failed start")
}

func TestActiveWhenSlotIsFree(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.sessions.Active(context.Background())
	assert.True(t, apperr.IsNotFound(err))
}

func TestPausedTimeIsExcluded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, TaskDraft{Title: "deep work"})
	require.NoError(t, err)

	_, err = env.sessions.Start(ctx, &task.ID, 25*time.Minute)
	require.NoError(t, err)

	env.clock.Advance(10 * time.Minute)
	_, err = env.sessions.Pause(ctx)
	require.NoError(t, err)

	env.clock.Advance(5 * time.Minute)
	_, err = env.sessions.Resume(ctx)
	require.NoError(t, err)

	env.clock.Advance(5 * time.Minute)
	session, err := env.sessions.Complete(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.SessionCompleted, session.State)
	assert.Equal(t, 15*60, session.ActualSeconds, "the paused interval does not count")
	require.NotNil(t, session.EndedAt)

	reloaded, err := env.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.PomodoroCount)
}

func TestPauseAndResumeAreTolerant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.sessions.Start(ctx, nil, 25*time.Minute)
	require.NoError(t, err)

	resumed, err := env.sessions.Resume(ctx)
	require.NoError(t, err, "resuming a running session is a no-op")
	assert.Equal(t, models.SessionRunning, resumed.State)

	env.clock.Advance(3 * time.Minute)
	paused, err := env.sessions.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SessionPaused, paused.State)

	env.clock.Advance(2 * time.Minute)
	pausedAgain, err := env.sessions.Pause(ctx)
	require.NoError(t, err, "pausing a paused session is a no-op")
	assert.Equal(t, models.SessionPaused, pausedAgain.State)
	assert.Equal(t, 3*60, pausedAgain.RunningSeconds, "the double pause accrues nothing")

	assert.Equal(t, session.ID, pausedAgain.ID)
}

func TestAbandonGetsNoCredit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, TaskDraft{Title: "distracted"})
	require.NoError(t, err)

	_, err = env.sessions.Start(ctx, &task.ID, 25*time.Minute)
	require.NoError(t, err)
	env.clock.Advance(5 * time.Minute)

	session, err := env.sessions.Abandon(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAbandoned, session.State)
	assert.Equal(t, 5*60, session.ActualSeconds)

	reloaded, err := env.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.PomodoroCount, "abandoned sessions do not bump the tally")

	stats, err := env.achievements.Stats(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.FocusMinutes, "abandoned time earns no focus credit")
	assert.Equal(t, int64(5), stats.TotalFocusMinutes, "but stays in the audit total")
	assert.Equal(t, 0, stats.CurrentStreak, "no streak credit either")
}

func TestCompletedSessionFeedsTheStreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.sessions.Start(ctx, nil, 25*time.Minute)
	require.NoError(t, err)
	env.clock.Advance(25 * time.Minute)
	_, err = env.sessions.Complete(ctx)
	require.NoError(t, err)

	stats, err := env.achievements.Stats(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, int64(25), stats.FocusMinutes)
}

func TestCategorySnapshotSurvivesRecategorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category, err := env.tasks.CreateCategory(ctx, "writing", "", "")
	require.NoError(t, err)
	task, err := env.tasks.Create(ctx, TaskDraft{Title: "draft chapter", CategoryID: &category.ID})
	require.NoError(t, err)

	session, err := env.sessions.Start(ctx, &task.ID, 25*time.Minute)
	require.NoError(t, err)
	require.NotNil(t, session.CategoryID)
	assert.Equal(t, category.ID, *session.CategoryID)

	// Moving the task later leaves the session's snapshot alone.
	_, err = env.tasks.Update(ctx, task.ID, TaskPatch{ClearCategory: true})
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	finished, err := env.sessions.Complete(ctx)
	require.NoError(t, err)
	require.NotNil(t, finished.CategoryID)
	assert.Equal(t, category.ID, *finished.CategoryID)
}
