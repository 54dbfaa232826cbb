package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTitleFullSyntax(t *testing.T) {
	parsed := ParseTitle("Pay rent #bills,home @life +high due:tomorrow")

	assert.Equal(t, "Pay rent", parsed.Title)
	assert.Equal(t, []string{"bills", "home"}, parsed.Tags)
	assert.Equal(t, "life", parsed.Category)
	assert.Equal(t, "high", parsed.Priority)
	require.NotNil(t, parsed.Due)
	assert.Empty(t, parsed.Errors)

	tomorrow := time.Now().AddDate(0, 0, 1)
	assert.Equal(t, tomorrow.Day(), parsed.Due.Day())
}

func TestParseTitlePlain(t *testing.T) {
	parsed := ParseTitle("Just a plain task")
	assert.Equal(t, "Just a plain task", parsed.Title)
	assert.Empty(t, parsed.Tags)
	assert.Empty(t, parsed.Category)
	assert.Empty(t, parsed.Priority)
	assert.Nil(t, parsed.Due)
}

func TestParseTitleInvalidPriorityWarns(t *testing.T) {
	parsed := ParseTitle("Do thing +banana")
	assert.Equal(t, "Do thing", parsed.Title)
	assert.Empty(t, parsed.Priority)
	require.Len(t, parsed.Errors, 1)
	assert.Contains(t, parsed.Errors[0], "banana")
}

func TestParseDueDateFormats(t *testing.T) {
	t.Run("iso date", func(t *testing.T) {
		due, err := ParseDueDate("2026-12-15")
		require.NoError(t, err)
		require.NotNil(t, due)
		assert.Equal(t, 2026, due.Year())
		assert.Equal(t, time.December, due.Month())
		assert.Equal(t, 15, due.Day())
		assert.Equal(t, 23, due.Hour(), "date-only input lands at end of day")
	})

	t.Run("slash date validates the calendar", func(t *testing.T) {
		due, err := ParseDueDate("15/12/2026")
		require.NoError(t, err)
		assert.Equal(t, 15, due.Day())

		_, err = ParseDueDate("31/02/2026")
		assert.Error(t, err)
	})

	t.Run("relative days", func(t *testing.T) {
		due, err := ParseDueDate("3 days")
		require.NoError(t, err)
		expected := time.Now().AddDate(0, 0, 3)
		assert.Equal(t, expected.Day(), due.Day())
	})

	t.Run("short units", func(t *testing.T) {
		due, err := ParseDueDate("2w")
		require.NoError(t, err)
		expected := time.Now().AddDate(0, 0, 14)
		assert.Equal(t, expected.Day(), due.Day())
	})

	t.Run("garbage is an error", func(t *testing.T) {
		_, err := ParseDueDate("whenever")
		assert.Error(t, err)
	})

	t.Run("empty is nil without error", func(t *testing.T) {
		due, err := ParseDueDate("")
		require.NoError(t, err)
		assert.Nil(t, due)
	})
}
