package models

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Task statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

// Task priorities.
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recurrence frequencies.
const (
	FreqDaily   = "daily"
	FreqWeekly  = "weekly"
	FreqMonthly = "monthly"
	FreqYearly  = "yearly"
)

// Task represents a todo item. A task with a non-nil ParentID is a subtask.
type Task struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Status      string     `gorm:"default:open" json:"status"`
	Priority    string     `gorm:"default:medium" json:"priority"`
	Due         *time.Time `json:"due"`
	CompletedAt *time.Time `json:"completed_at"`
	Position    int        `gorm:"default:0" json:"position"`

	// Completed pomodoro tally, bumped by the session tracker.
	PomodoroCount int `gorm:"default:0" json:"pomodoro_count"`

	CategoryID *uint `json:"category_id"`
	ParentID   *uint `gorm:"index" json:"parent_id"`

	// SeriesID links every instance materialized from the same recurrence
	// lineage back to the root task. Nil for non-recurring tasks.
	SeriesID *uint `gorm:"index" json:"series_id,omitempty"`

	// Relationships
	Category   *Category       `json:"category,omitempty"`
	Tags       []Tag           `gorm:"many2many:task_tags;" json:"tags"`
	Subtasks   []Task          `gorm:"foreignKey:ParentID" json:"subtasks,omitempty"`
	Recurrence *RecurrenceRule `gorm:"foreignKey:TaskID" json:"recurrence,omitempty"`
}

// IsDone reports whether the task is completed.
func (t *Task) IsDone() bool {
	return t.Status == StatusDone
}

// PriorityRank maps a priority to its sort rank, lower is more important.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p string) bool {
	return PriorityRank(p) < 4
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// RecurrenceRule describes how a task repeats. It is owned by exactly one
// task at a time and moves to the freshly materialized instance on
// completion.
type RecurrenceRule struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TaskID    uint   `gorm:"index" json:"task_id"`
	Frequency string `gorm:"not null" json:"frequency"`
	Interval  int    `gorm:"default:1" json:"interval"`

	// Weekdays holds a csv of 0..6 (Sunday=0) anchors for weekly rules.
	Weekdays string `json:"weekdays,omitempty"`

	// MonthDay anchors monthly and yearly rules; 0 means "same day as the
	// previous occurrence".
	MonthDay int `json:"month_day,omitempty"`

	// Remaining counts occurrences left to materialize for count-bounded
	// rules. Nil means unbounded.
	Remaining *int `json:"remaining,omitempty"`

	// Until ends the rule after the given date. Nil means no end date.
	Until *time.Time `json:"until,omitempty"`
}

// WeekdayList parses the csv weekday anchors, dropping anything out of range.
func (r *RecurrenceRule) WeekdayList() []time.Weekday {
	if r.Weekdays == "" {
		return nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(r.Weekdays, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}

// SetWeekdays stores weekday anchors as csv, keeping only valid 0..6 values.
func (r *RecurrenceRule) SetWeekdays(days []time.Weekday) {
	var parts []string
	for _, d := range days {
		if d < 0 || d > 6 {
			continue
		}
		parts = append(parts, strconv.Itoa(int(d)))
	}
	r.Weekdays = strings.Join(parts, ",")
}

// Category groups tasks by area (work, study, life, etc.).
type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	Position int    `gorm:"default:0" json:"position"`

	Tasks []Task `gorm:"foreignKey:CategoryID" json:"-"`
}

// Tag represents a task tag.
type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"unique;not null" json:"name"`

	Tasks []Task `gorm:"many2many:task_tags;" json:"-"`
}

// TaskTag is the join table for the many-to-many relationship.
type TaskTag struct {
	TaskID uint `gorm:"primaryKey" json:"task_id"`
	TagID  uint `gorm:"primaryKey" json:"tag_id"`
}

// Setting is a key/value row holding a JSON-encoded value.
type Setting struct {
	Key       string    `gorm:"primarykey" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
