package service

import (
	"context"
	"time"

	"tidydo/internal/models"
)

// Domain events form a closed set; the dispatcher enumerates its handlers
// statically instead of keeping an open listener registry.

// TaskCompleted fires when a task transitions to done.
type TaskCompleted struct {
	Task *models.Task
	At   time.Time
}

// SessionCompleted fires when a focus session completes. Abandoned sessions
// never emit it.
type SessionCompleted struct {
	Session *models.PomodoroSession
	At      time.Time
}

// Dispatcher routes domain events to the achievement evaluator.
type Dispatcher struct {
	achievements *AchievementService
}

// NewDispatcher wires the evaluator in.
func NewDispatcher(achievements *AchievementService) *Dispatcher {
	return &Dispatcher{achievements: achievements}
}

// PublishTaskCompleted feeds a completion into the evaluator.
func (d *Dispatcher) PublishTaskCompleted(ctx context.Context, ev TaskCompleted) error {
	if d == nil || d.achievements == nil {
		return nil
	}
	return d.achievements.HandleTaskCompleted(ctx, ev)
}

// PublishSessionCompleted feeds a finished session into the evaluator.
func (d *Dispatcher) PublishSessionCompleted(ctx context.Context, ev SessionCompleted) error {
	if d == nil || d.achievements == nil {
		return nil
	}
	return d.achievements.HandleSessionCompleted(ctx, ev)
}
