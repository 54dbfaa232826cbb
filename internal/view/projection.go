// Package view projects the task set into presentation shapes. Every
// projection is a pure re-derivation of the same underlying slice, never a
// second source of truth.
package view

import (
	"time"

	"tidydo/internal/models"
)

// Kanban groups tasks by status, preserving the input order inside each
// column.
func Kanban(tasks []models.Task) map[string][]models.Task {
	board := map[string][]models.Task{
		models.StatusOpen:       nil,
		models.StatusInProgress: nil,
		models.StatusDone:       nil,
		models.StatusCancelled:  nil,
	}
	for _, task := range tasks {
		board[task.Status] = append(board[task.Status], task)
	}
	return board
}

// Calendar buckets tasks by due date within [from, to]. Undated tasks land
// in the separate second return, never in a date cell.
func Calendar(tasks []models.Task, from, to time.Time) (map[string][]models.Task, []models.Task) {
	dated := make(map[string][]models.Task)
	var undated []models.Task

	fromDay := dayOf(from)
	toDay := dayOf(to)
	for _, task := range tasks {
		if task.Due == nil {
			undated = append(undated, task)
			continue
		}
		day := dayOf(*task.Due)
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}
		key := day.Format("2006-01-02")
		dated[key] = append(dated[key], task)
	}
	return dated, undated
}

// Eisenhower quadrants.
type Quadrant int

const (
	UrgentImportant Quadrant = iota
	NotUrgentImportant
	UrgentNotImportant
	NotUrgentNotImportant
)

func (q Quadrant) String() string {
	switch q {
	case UrgentImportant:
		return "do first"
	case NotUrgentImportant:
		return "schedule"
	case UrgentNotImportant:
		return "delegate"
	default:
		return "eliminate"
	}
}

// Quadrants buckets tasks into the Eisenhower matrix. Urgent means due
// within the window of now (overdue included); important means priority at
// least high.
func Quadrants(tasks []models.Task, now time.Time, urgentWindow time.Duration) map[Quadrant][]models.Task {
	cells := make(map[Quadrant][]models.Task, 4)
	for _, task := range tasks {
		urgent := task.Due != nil && task.Due.Sub(now) <= urgentWindow
		important := models.PriorityRank(task.Priority) <= models.PriorityRank(models.PriorityHigh)

		var cell Quadrant
		switch {
		case urgent && important:
			cell = UrgentImportant
		case important:
			cell = NotUrgentImportant
		case urgent:
			cell = UrgentNotImportant
		default:
			cell = NotUrgentNotImportant
		}
		cells[cell] = append(cells[cell], task)
	}
	return cells
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
