package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidydo/internal/models"
)

func TestApplyQualifyingDay(t *testing.T) {
	streak := &models.StreakCounter{}
	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 20, 0, 0, 0, time.Local)
	}

	applyQualifyingDay(streak, day(1))
	assert.Equal(t, 1, streak.Current)

	applyQualifyingDay(streak, day(2))
	assert.Equal(t, 2, streak.Current)

	applyQualifyingDay(streak, day(2))
	assert.Equal(t, 2, streak.Current, "a second event on the same day changes nothing")

	applyQualifyingDay(streak, day(3))
	assert.Equal(t, 3, streak.Current)
	assert.Equal(t, 3, streak.Longest)

	applyQualifyingDay(streak, day(7))
	assert.Equal(t, 1, streak.Current, "a gap resets the run")
	assert.Equal(t, 3, streak.Longest, "the longest run is kept")
	assert.Equal(t, "2026-03-07", streak.LastQualifyingDay)
}

// seedCompletions inserts done tasks directly, bypassing the service, to
// set up aggregate counters.
func seedCompletions(t *testing.T, env *testEnv, stamps []time.Time) {
	t.Helper()
	for i, at := range stamps {
		at := at
		task := models.Task{
			Title:       fmt.Sprintf("done %d", i),
			Status:      models.StatusDone,
			Priority:    models.PriorityMedium,
			CompletedAt: &at,
		}
		require.NoError(t, env.store.DB().Create(&task).Error)
	}
}

func TestEvaluateUnlocksCumulativeTiers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var stamps []time.Time
	base := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.Local)
	for i := 0; i < 50; i++ {
		stamps = append(stamps, base.Add(time.Duration(i)*time.Hour))
	}
	seedCompletions(t, env, stamps)

	err := env.achievements.HandleTaskCompleted(ctx, TaskCompleted{At: stamps[len(stamps)-1]})
	require.NoError(t, err)

	bronze, err := env.store.Achievements.IsUnlocked(ctx, "finisher_bronze")
	require.NoError(t, err)
	silver, err := env.store.Achievements.IsUnlocked(ctx, "finisher_silver")
	require.NoError(t, err)
	gold, err := env.store.Achievements.IsUnlocked(ctx, "finisher_gold")
	require.NoError(t, err)

	assert.True(t, bronze, "one event can unlock several tiers, lowest included")
	assert.True(t, silver)
	assert.False(t, gold, "200 completions not reached")
}

func TestUnlockIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	at := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.Local)
	seedCompletions(t, env, []time.Time{at})

	require.NoError(t, env.achievements.HandleTaskCompleted(ctx, TaskCompleted{At: at}))
	first, err := env.store.Achievements.ListUnlocks(ctx)
	require.NoError(t, err)

	require.NoError(t, env.achievements.HandleTaskCompleted(ctx, TaskCompleted{At: at}))
	second, err := env.store.Achievements.ListUnlocks(ctx)
	require.NoError(t, err)

	assert.Equal(t, len(first), len(second), "re-satisfying an unlocked badge is a no-op")
}

func TestEarlyBirdBucket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var stamps []time.Time
	for d := 1; d <= 5; d++ {
		stamps = append(stamps, time.Date(2026, time.March, d, 6, 15, 0, 0, time.Local))
	}
	seedCompletions(t, env, stamps)

	require.NoError(t, env.achievements.HandleTaskCompleted(ctx, TaskCompleted{At: stamps[4]}))

	early, err := env.store.Achievements.IsUnlocked(ctx, "early_bird_bronze")
	require.NoError(t, err)
	assert.True(t, early, "five completions before 07:00 local")

	night, err := env.store.Achievements.IsUnlocked(ctx, "night_owl_bronze")
	require.NoError(t, err)
	assert.False(t, night)
}

func TestRebuildStreakReplaysHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	days := []int{1, 2, 3, 6}
	var stamps []time.Time
	for _, d := range days {
		stamps = append(stamps, time.Date(2026, time.March, d, 18, 0, 0, 0, time.Local))
	}
	seedCompletions(t, env, stamps)

	require.NoError(t, env.achievements.RebuildStreak(ctx))

	streak, err := env.store.Achievements.Streak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Current, "the gap before the 6th broke the run")
	assert.Equal(t, 3, streak.Longest)
	assert.Equal(t, "2026-03-06", streak.LastQualifyingDay)
}
