package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
	"tidydo/internal/repository"
)

func TestSnapshotRoundTrip(t *testing.T) {
	source := newTestEnv(t)
	ctx := context.Background()

	category, err := source.tasks.CreateCategory(ctx, "garden", "🌱", "")
	require.NoError(t, err)
	task, err := source.tasks.Create(ctx, TaskDraft{
		Title:      "water plants",
		Due:        source.dueOn(0),
		CategoryID: &category.ID,
		Tags:       []string{"home", "green"},
	})
	require.NoError(t, err)
	_, err = source.tasks.SetRecurrence(ctx, task.ID, models.RecurrenceRule{Frequency: models.FreqWeekly, Interval: 1, Weekdays: "1,4"})
	require.NoError(t, err)

	_, err = source.sessions.Start(ctx, &task.ID, 25*time.Minute)
	require.NoError(t, err)
	source.clock.Advance(25 * time.Minute)
	_, err = source.sessions.Complete(ctx)
	require.NoError(t, err)

	bundle, err := source.snapshots.Export(ctx)
	require.NoError(t, err)

	var envelope Snapshot
	require.NoError(t, json.Unmarshal(bundle, &envelope))
	assert.Equal(t, repository.SchemaVersion, envelope.Version)
	assert.NotEmpty(t, envelope.BundleID)

	target := newTestEnv(t)
	require.NoError(t, target.snapshots.Import(ctx, bundle))

	restored, err := target.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "water plants", restored.Title)
	require.NotNil(t, restored.CategoryID)
	assert.Equal(t, category.ID, *restored.CategoryID)
	assert.Len(t, restored.Tags, 2)
	require.NotNil(t, restored.Recurrence)
	assert.Equal(t, "1,4", restored.Recurrence.Weekdays)

	sessions, err := target.sessions.ListBetween(ctx, time.Time{}, source.clock.t.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.SessionCompleted, sessions[0].State)

	sourceStats, err := source.achievements.Stats(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	targetStats, err := target.achievements.Stats(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, sourceStats.CurrentStreak, targetStats.CurrentStreak, "the streak is rebuilt from the imported history")
	assert.Equal(t, sourceStats.FocusMinutes, targetStats.FocusMinutes)
}

func TestSnapshotRoundTripEmptyStore(t *testing.T) {
	source := newTestEnv(t)
	ctx := context.Background()

	bundle, err := source.snapshots.Export(ctx)
	require.NoError(t, err)

	target := newTestEnv(t)
	require.NoError(t, target.snapshots.Import(ctx, bundle))

	tasks, err := target.tasks.Search(ctx, repository.SearchFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	categories, err := target.tasks.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 4, "the seeded categories travel with the bundle")
}

func TestImportRejectsBadBundles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	existing, err := env.tasks.Create(ctx, TaskDraft{Title: "keep me"})
	require.NoError(t, err)

	t.Run("future schema version", func(t *testing.T) {
		bundle, err := json.Marshal(Snapshot{Version: repository.SchemaVersion + 1})
		require.NoError(t, err)

		err = env.snapshots.Import(ctx, bundle)
		var formatErr *apperr.FormatError
		assert.True(t, errors.As(err, &formatErr))
	})

	t.Run("not json at all", func(t *testing.T) {
		err := env.snapshots.Import(ctx, []byte("definitely not a bundle"))
		var formatErr *apperr.FormatError
		assert.True(t, errors.As(err, &formatErr))
	})

	reloaded, err := env.tasks.Get(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", reloaded.Title, "rejected imports touch nothing")
}
