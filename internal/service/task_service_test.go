package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
	"tidydo/internal/repository"
)

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("empty title rejected", func(t *testing.T) {
		_, err := env.tasks.Create(ctx, TaskDraft{Title: "   "})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("unknown priority defaults to medium", func(t *testing.T) {
		task, err := env.tasks.Create(ctx, TaskDraft{Title: "weird", Priority: "banana"})
		require.NoError(t, err)
		assert.Equal(t, models.PriorityMedium, task.Priority)
	})

	t.Run("due date before today rejected", func(t *testing.T) {
		_, err := env.tasks.Create(ctx, TaskDraft{Title: "late", Due: env.dueOn(-1)})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("missing category rejected", func(t *testing.T) {
		missing := uint(9999)
		_, err := env.tasks.Create(ctx, TaskDraft{Title: "orphan", CategoryID: &missing})
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestCompleteLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, TaskDraft{Title: "ship it"})
	require.NoError(t, err)

	result, err := env.tasks.Complete(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, result.Completed.Status)
	require.NotNil(t, result.Completed.CompletedAt)
	assert.Equal(t, env.clock.t, *result.Completed.CompletedAt)

	_, err = env.tasks.Complete(ctx, task.ID)
	assert.True(t, apperr.IsConflict(err), "completing twice conflicts")

	status := models.StatusOpen
	reopened, err := env.tasks.Update(ctx, task.ID, TaskPatch{Status: &status})
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt, "reopening clears the completion stamp")
}

func TestCycleDetection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent, err := env.tasks.Create(ctx, TaskDraft{Title: "parent"})
	require.NoError(t, err)
	child, err := env.tasks.AddSubtask(ctx, parent.ID, "child")
	require.NoError(t, err)

	_, err = env.tasks.Update(ctx, parent.ID, TaskPatch{ParentID: &child.ID})
	var cycle *apperr.CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, parent.ID, cycle.TaskID)

	reloaded, err := env.tasks.Get(ctx, parent.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ParentID, "failed reparent leaves the hierarchy unchanged")

	t.Run("self parent rejected", func(t *testing.T) {
		_, err := env.tasks.Update(ctx, parent.ID, TaskPatch{ParentID: &parent.ID})
		assert.True(t, errors.As(err, &cycle))
	})
}

func TestSearchOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	low, err := env.tasks.Create(ctx, TaskDraft{Title: "someday", Priority: models.PriorityLow})
	require.NoError(t, err)
	urgentDated, err := env.tasks.Create(ctx, TaskDraft{Title: "now", Priority: models.PriorityUrgent, Due: env.dueOn(1)})
	require.NoError(t, err)
	urgentUndated, err := env.tasks.Create(ctx, TaskDraft{Title: "soonish", Priority: models.PriorityUrgent})
	require.NoError(t, err)

	tasks, err := env.tasks.Search(ctx, repository.SearchFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, urgentDated.ID, tasks[0].ID, "urgent with a due date first")
	assert.Equal(t, urgentUndated.ID, tasks[1].ID, "undated sorts after dated within a priority")
	assert.Equal(t, low.ID, tasks[2].ID)
}

func TestSearchSubstringFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tasks.Create(ctx, TaskDraft{Title: "Pay the rent"})
	require.NoError(t, err)
	_, err = env.tasks.Create(ctx, TaskDraft{Title: "Buy groceries", Description: "rent a car too"})
	require.NoError(t, err)
	_, err = env.tasks.Create(ctx, TaskDraft{Title: "Unrelated"})
	require.NoError(t, err)

	tasks, err := env.tasks.Search(ctx, repository.SearchFilter{Query: "RENT"})
	require.NoError(t, err)
	assert.Len(t, tasks, 2, "matches title and description, case-insensitively")
}

func TestRecurringCompletionMaterializesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, TaskDraft{Title: "water plants", Due: env.dueOn(0), Tags: []string{"home"}})
	require.NoError(t, err)
	_, err = env.tasks.SetRecurrence(ctx, task.ID, models.RecurrenceRule{Frequency: models.FreqDaily, Interval: 1})
	require.NoError(t, err)

	result, err := env.tasks.Complete(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, result.NewInstance)
	assert.False(t, result.RuleExhausted)

	next := result.NewInstance
	require.NotNil(t, next.Due)
	assert.Equal(t, env.clock.t.AddDate(0, 0, 1).Day(), next.Due.Day())
	require.NotNil(t, next.SeriesID)
	assert.Equal(t, task.ID, *next.SeriesID, "instances share the series lineage")

	fresh, err := env.tasks.Get(ctx, next.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.Recurrence, "the rule follows the live instance")
	require.Len(t, fresh.Tags, 1)
	assert.Equal(t, "home", fresh.Tags[0].Name)

	done, err := env.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, done.Recurrence, "the completed row keeps no rule")

	// Reopening and completing the old instance again must not spawn a
	// second open sibling.
	status := models.StatusOpen
	_, err = env.tasks.Update(ctx, task.ID, TaskPatch{Status: &status})
	require.NoError(t, err)
	again, err := env.tasks.Complete(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, again.NewInstance)
}

func TestRecurrenceCountExhaustion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, TaskDraft{Title: "one more time", Due: env.dueOn(0)})
	require.NoError(t, err)
	remaining := 1
	_, err = env.tasks.SetRecurrence(ctx, task.ID, models.RecurrenceRule{
		Frequency: models.FreqDaily, Interval: 1, Remaining: &remaining,
	})
	require.NoError(t, err)

	first, err := env.tasks.Complete(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, first.NewInstance)

	last, err := env.tasks.Complete(ctx, first.NewInstance.ID)
	require.NoError(t, err)
	assert.Nil(t, last.NewInstance)
	assert.True(t, last.RuleExhausted)
}

func TestSetRecurrenceRequirements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("needs a due date", func(t *testing.T) {
		task, err := env.tasks.Create(ctx, TaskDraft{Title: "floating"})
		require.NoError(t, err)
		_, err = env.tasks.SetRecurrence(ctx, task.ID, models.RecurrenceRule{Frequency: models.FreqDaily})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("subtasks cannot recur", func(t *testing.T) {
		parent, err := env.tasks.Create(ctx, TaskDraft{Title: "parent", Due: env.dueOn(1)})
		require.NoError(t, err)
		child, err := env.tasks.AddSubtask(ctx, parent.ID, "child")
		require.NoError(t, err)
		_, err = env.tasks.SetRecurrence(ctx, child.ID, models.RecurrenceRule{Frequency: models.FreqDaily})
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestSubtaskProgressAndToggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent, err := env.tasks.Create(ctx, TaskDraft{Title: "project"})
	require.NoError(t, err)
	first, err := env.tasks.AddSubtask(ctx, parent.ID, "step one")
	require.NoError(t, err)
	_, err = env.tasks.AddSubtask(ctx, parent.ID, "step two")
	require.NoError(t, err)

	toggled, err := env.tasks.ToggleSubtask(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsDone())

	done, total, err := env.tasks.SubtaskProgress(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, total)

	back, err := env.tasks.ToggleSubtask(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, back.IsDone())
	assert.Nil(t, back.CompletedAt)

	_, err = env.tasks.ToggleSubtask(ctx, parent.ID)
	assert.True(t, apperr.IsValidation(err), "toggling a top-level task is rejected")
}

func TestReorderAssignsPositions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.tasks.Create(ctx, TaskDraft{Title: "a"})
	require.NoError(t, err)
	second, err := env.tasks.Create(ctx, TaskDraft{Title: "b"})
	require.NoError(t, err)

	require.NoError(t, env.tasks.Reorder(ctx, []uint{second.ID, first.ID}))

	reloaded, err := env.tasks.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Position)
	reloaded, err = env.tasks.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Position)
}

func TestRollForwardAdvancesOverdueRecurring(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	recurring, err := env.tasks.Create(ctx, TaskDraft{Title: "standup", Due: env.dueOn(0)})
	require.NoError(t, err)
	_, err = env.tasks.SetRecurrence(ctx, recurring.ID, models.RecurrenceRule{Frequency: models.FreqDaily, Interval: 1})
	require.NoError(t, err)

	plain, err := env.tasks.Create(ctx, TaskDraft{Title: "one-off", Due: env.dueOn(0)})
	require.NoError(t, err)

	env.clock.Advance(3 * 24 * time.Hour)

	moved, err := env.tasks.RollForward(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved, "only the recurring task advances")

	reloaded, err := env.tasks.Get(ctx, recurring.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Due)
	assert.Equal(t, env.clock.t.Day(), reloaded.Due.Day(), "the due date caught up to today")

	untouched, err := env.tasks.Get(ctx, plain.ID)
	require.NoError(t, err)
	assert.Equal(t, env.dueOn(-3).Day(), untouched.Due.Day())

	at, found, err := env.tasks.LastRollForward(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, at.Equal(env.clock.t))
}

func TestDeleteCategoryKeepsTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category, err := env.tasks.CreateCategory(ctx, "errands", "🛒", "#FFB7B2")
	require.NoError(t, err)
	task, err := env.tasks.Create(ctx, TaskDraft{Title: "buy milk", CategoryID: &category.ID})
	require.NoError(t, err)

	require.NoError(t, env.tasks.DeleteCategory(ctx, category.ID))

	reloaded, err := env.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CategoryID, "the task survives with its category cleared")
}

func TestDeleteCascadesToSubtasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent, err := env.tasks.Create(ctx, TaskDraft{Title: "doomed"})
	require.NoError(t, err)
	child, err := env.tasks.AddSubtask(ctx, parent.ID, "also doomed")
	require.NoError(t, err)

	require.NoError(t, env.tasks.Delete(ctx, parent.ID))

	_, err = env.tasks.Get(ctx, parent.ID)
	assert.True(t, apperr.IsNotFound(err))
	_, err = env.tasks.Get(ctx, child.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteTagDetachesEverywhere(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, TaskDraft{Title: "tagged", Tags: []string{"zap"}})
	require.NoError(t, err)

	tags, err := env.tasks.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)

	require.NoError(t, env.tasks.DeleteTag(ctx, tags[0].ID))

	reloaded, err := env.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Tags)
}
