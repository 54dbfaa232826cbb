package models

import (
	"time"

	"gorm.io/gorm"
)

// Pomodoro session states.
const (
	SessionRunning   = "running"
	SessionPaused    = "paused"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

// PomodoroSession represents one focus session. At most one session is
// running or paused at any time.
type PomodoroSession struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// TaskID is optional; a session can run without an attached task. The
	// reference stays valid even after the task is archived.
	TaskID *uint `gorm:"index" json:"task_id"`

	// CategoryID is snapshotted from the task at start so historical stats
	// survive later re-categorization.
	CategoryID *uint `json:"category_id"`

	State          string     `gorm:"default:running" json:"state"`
	StartedAt      time.Time  `gorm:"not null" json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`
	PlannedSeconds int        `json:"planned_seconds"`

	// ActualSeconds is the running time net of pauses, stamped on
	// complete/abandon.
	ActualSeconds int `json:"actual_seconds"`

	// RunningSeconds accumulates finished run intervals; LastResumedAt marks
	// the start of the current interval while the session is running.
	RunningSeconds int        `json:"running_seconds"`
	LastResumedAt  *time.Time `json:"last_resumed_at,omitempty"`

	Task *Task `json:"task,omitempty"`
}

// Active reports whether the session still owns the focus slot.
func (s *PomodoroSession) Active() bool {
	return s.State == SessionRunning || s.State == SessionPaused
}

// Elapsed returns the running time net of pauses as of now.
func (s *PomodoroSession) Elapsed(now time.Time) time.Duration {
	secs := s.RunningSeconds
	if s.State == SessionRunning && s.LastResumedAt != nil {
		secs += int(now.Sub(*s.LastResumedAt).Seconds())
	}
	return time.Duration(secs) * time.Second
}

// Remaining returns the planned time left as of now, floored at zero.
func (s *PomodoroSession) Remaining(now time.Time) time.Duration {
	left := time.Duration(s.PlannedSeconds)*time.Second - s.Elapsed(now)
	if left < 0 {
		return 0
	}
	return left
}
