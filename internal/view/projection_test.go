package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidydo/internal/models"
)

func at(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func TestKanban(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Status: models.StatusOpen},
		{ID: 2, Status: models.StatusDone},
		{ID: 3, Status: models.StatusOpen},
	}

	board := Kanban(tasks)

	require.Len(t, board, 4, "all four columns exist even when empty")
	assert.Equal(t, uint(1), board[models.StatusOpen][0].ID)
	assert.Equal(t, uint(3), board[models.StatusOpen][1].ID, "input order preserved inside a column")
	assert.Len(t, board[models.StatusDone], 1)
	assert.Empty(t, board[models.StatusCancelled])
}

func TestCalendar(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Due: at(2026, time.March, 5)},
		{ID: 2, Due: at(2026, time.March, 5)},
		{ID: 3, Due: at(2026, time.April, 1)},
		{ID: 4},
	}

	dated, undated := Calendar(tasks, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC))

	require.Len(t, dated["2026-03-05"], 2)
	assert.NotContains(t, dated, "2026-04-01", "out-of-range tasks excluded")
	require.Len(t, undated, 1)
	assert.Equal(t, uint(4), undated[0].ID)
}

func TestQuadrants(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	soon := now.Add(6 * time.Hour)
	overdue := now.Add(-48 * time.Hour)
	later := now.Add(96 * time.Hour)

	tasks := []models.Task{
		{ID: 1, Priority: models.PriorityUrgent, Due: &soon},
		{ID: 2, Priority: models.PriorityHigh, Due: &later},
		{ID: 3, Priority: models.PriorityLow, Due: &overdue},
		{ID: 4, Priority: models.PriorityMedium},
	}

	cells := Quadrants(tasks, now, window)

	require.Len(t, cells[UrgentImportant], 1)
	assert.Equal(t, uint(1), cells[UrgentImportant][0].ID)
	assert.Equal(t, uint(2), cells[NotUrgentImportant][0].ID)
	assert.Equal(t, uint(3), cells[UrgentNotImportant][0].ID, "overdue counts as urgent")
	assert.Equal(t, uint(4), cells[NotUrgentNotImportant][0].ID)
}

func TestQuadrantString(t *testing.T) {
	assert.Equal(t, "do first", UrgentImportant.String())
	assert.Equal(t, "eliminate", NotUrgentNotImportant.String())
}
