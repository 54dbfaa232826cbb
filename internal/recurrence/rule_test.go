package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize(t *testing.T) {
	t.Run("rejects unknown frequency", func(t *testing.T) {
		rule := models.RecurrenceRule{Frequency: "hourly"}
		err := Normalize(&rule)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("floors interval at one", func(t *testing.T) {
		rule := models.RecurrenceRule{Frequency: models.FreqDaily, Interval: 0}
		require.NoError(t, Normalize(&rule))
		assert.Equal(t, 1, rule.Interval)
	})

	t.Run("keeps weekday anchors only for weekly rules", func(t *testing.T) {
		weekly := models.RecurrenceRule{Frequency: models.FreqWeekly, Interval: 1, Weekdays: "1,3,9"}
		require.NoError(t, Normalize(&weekly))
		assert.Equal(t, "1,3", weekly.Weekdays)

		daily := models.RecurrenceRule{Frequency: models.FreqDaily, Interval: 1, Weekdays: "1,3"}
		require.NoError(t, Normalize(&daily))
		assert.Empty(t, daily.Weekdays)
	})

	t.Run("drops negative remaining", func(t *testing.T) {
		remaining := -1
		rule := models.RecurrenceRule{Frequency: models.FreqDaily, Interval: 1, Remaining: &remaining}
		require.NoError(t, Normalize(&rule))
		assert.Nil(t, rule.Remaining)
	})
}

func TestNextOccurrenceDaily(t *testing.T) {
	rule := &models.RecurrenceRule{Frequency: models.FreqDaily, Interval: 2}
	next, ok := NextOccurrence(rule, date(2024, time.January, 1))
	require.True(t, ok)
	assert.Equal(t, date(2024, time.January, 3), next)
}

func TestNextOccurrenceWeekly(t *testing.T) {
	t.Run("without anchors jumps whole weeks", func(t *testing.T) {
		rule := &models.RecurrenceRule{Frequency: models.FreqWeekly, Interval: 1}
		next, ok := NextOccurrence(rule, date(2024, time.January, 1))
		require.True(t, ok)
		assert.Equal(t, date(2024, time.January, 8), next)
	})

	t.Run("advances to the next anchored weekday", func(t *testing.T) {
		// 2024-01-01 is a Monday; anchors are Mon, Wed, Fri.
		rule := &models.RecurrenceRule{Frequency: models.FreqWeekly, Interval: 1, Weekdays: "1,3,5"}
		next, ok := NextOccurrence(rule, date(2024, time.January, 1))
		require.True(t, ok)
		assert.Equal(t, date(2024, time.January, 3), next)
	})

	t.Run("interval skips off-grid weeks", func(t *testing.T) {
		rule := &models.RecurrenceRule{Frequency: models.FreqWeekly, Interval: 2, Weekdays: "1"}
		next, ok := NextOccurrence(rule, date(2024, time.January, 1))
		require.True(t, ok)
		assert.Equal(t, date(2024, time.January, 15), next)
	})
}

func TestNextOccurrenceMonthlyClamps(t *testing.T) {
	rule := &models.RecurrenceRule{Frequency: models.FreqMonthly, Interval: 1, MonthDay: 31}

	next, ok := NextOccurrence(rule, date(2024, time.January, 31))
	require.True(t, ok)
	assert.Equal(t, date(2024, time.February, 29), next, "leap February clamps to the 29th")

	next, ok = NextOccurrence(rule, next)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.March, 31), next, "anchor day snaps back in longer months")
}

func TestNextOccurrenceYearlyLeapDay(t *testing.T) {
	rule := &models.RecurrenceRule{Frequency: models.FreqYearly, Interval: 1}
	next, ok := NextOccurrence(rule, date(2024, time.February, 29))
	require.True(t, ok)
	assert.Equal(t, date(2025, time.February, 28), next)
}

func TestNextOccurrenceEndConditions(t *testing.T) {
	t.Run("zero remaining means exhausted", func(t *testing.T) {
		remaining := 0
		rule := &models.RecurrenceRule{Frequency: models.FreqDaily, Interval: 1, Remaining: &remaining}
		_, ok := NextOccurrence(rule, date(2024, time.January, 1))
		assert.False(t, ok)
	})

	t.Run("until cuts the series off", func(t *testing.T) {
		until := date(2024, time.January, 1)
		rule := &models.RecurrenceRule{Frequency: models.FreqDaily, Interval: 1, Until: &until}
		_, ok := NextOccurrence(rule, date(2024, time.January, 1))
		assert.False(t, ok)
	})

	t.Run("until inclusive of the last occurrence", func(t *testing.T) {
		until := date(2024, time.January, 2)
		rule := &models.RecurrenceRule{Frequency: models.FreqDaily, Interval: 1, Until: &until}
		next, ok := NextOccurrence(rule, date(2024, time.January, 1))
		require.True(t, ok)
		assert.Equal(t, date(2024, time.January, 2), next)
	})
}
