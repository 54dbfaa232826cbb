package service

import (
	"context"
	"fmt"
	"time"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
	"tidydo/internal/repository"
)

// SessionService runs the pomodoro state machine:
// idle -> running -> {paused <-> running} -> completed, or
// running/paused -> abandoned. At most one session owns the focus slot.
type SessionService struct {
	store  *repository.Store
	events *Dispatcher
	now    func() time.Time
}

func NewSessionService(store *repository.Store, events *Dispatcher) *SessionService {
	return &SessionService{store: store, events: events, now: time.Now}
}

// Start begins a session, optionally attached to a task. The single-slot
// invariant is a serialized check-and-set inside one transaction: a second
// start while one is active fails with ConflictError and leaves the running
// session untouched.
func (s *SessionService) Start(ctx context.Context, taskID *uint, planned time.Duration) (*models.PomodoroSession, error) {
	if planned <= 0 {
		return nil, apperr.Validation("duration", "planned duration must be positive")
	}

	now := s.now()
	var session *models.PomodoroSession
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		active, err := tx.Sessions.Active(ctx)
		if err != nil {
			return err
		}
		if active != nil {
			return apperr.Conflict(fmt.Sprintf("session #%d is already %s", active.ID, active.State))
		}

		var categoryID *uint
		if taskID != nil {
			task, err := tx.Tasks.FindByID(ctx, *taskID)
			if err != nil {
				return err
			}
			// Snapshot the category so historical stats survive later
			// re-categorization.
			categoryID = task.CategoryID
		}

		session = &models.PomodoroSession{
			TaskID:         taskID,
			CategoryID:     categoryID,
			State:          models.SessionRunning,
			StartedAt:      now,
			LastResumedAt:  &now,
			PlannedSeconds: int(planned.Seconds()),
		}
		return tx.Sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Active returns the running or paused session, or NotFoundError when the
// slot is free.
func (s *SessionService) Active(ctx context.Context) (*models.PomodoroSession, error) {
	session, err := s.store.Sessions.Active(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFound("active session", "none")
	}
	return session, nil
}

// Pause suspends the running session. Pausing an already paused session is
// a no-op returning the current state, tolerating UI double-clicks.
func (s *SessionService) Pause(ctx context.Context) (*models.PomodoroSession, error) {
	var session *models.PomodoroSession
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		session, err = tx.Sessions.Active(ctx)
		if err != nil {
			return err
		}
		if session == nil {
			return apperr.NotFound("active session", "none")
		}
		if session.State != models.SessionRunning {
			return nil
		}

		now := s.now()
		s.accumulate(session, now)
		session.State = models.SessionPaused
		return tx.Sessions.Save(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Resume continues a paused session. Resuming a running session is a no-op
// returning the current state.
func (s *SessionService) Resume(ctx context.Context) (*models.PomodoroSession, error) {
	var session *models.PomodoroSession
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		session, err = tx.Sessions.Active(ctx)
		if err != nil {
			return err
		}
		if session == nil {
			return apperr.NotFound("active session", "none")
		}
		if session.State != models.SessionPaused {
			return nil
		}

		now := s.now()
		session.State = models.SessionRunning
		session.LastResumedAt = &now
		return tx.Sessions.Save(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Complete finishes the active session, stamps the actual duration net of
// pauses, bumps the task's pomodoro tally and emits SessionCompleted.
func (s *SessionService) Complete(ctx context.Context) (*models.PomodoroSession, error) {
	session, err := s.finish(ctx, models.SessionCompleted)
	if err != nil {
		return nil, err
	}
	if err := s.events.PublishSessionCompleted(ctx, SessionCompleted{Session: session, At: *session.EndedAt}); err != nil {
		return session, fmt.Errorf("achievement evaluation: %w", err)
	}
	return session, nil
}

// Abandon finishes the active session without credit: the time still counts
// toward the total-focus audit, but no event fires and the task tally stays.
func (s *SessionService) Abandon(ctx context.Context) (*models.PomodoroSession, error) {
	return s.finish(ctx, models.SessionAbandoned)
}

func (s *SessionService) finish(ctx context.Context, state string) (*models.PomodoroSession, error) {
	now := s.now()
	var session *models.PomodoroSession
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		session, err = tx.Sessions.Active(ctx)
		if err != nil {
			return err
		}
		if session == nil {
			return apperr.NotFound("active session", "none")
		}

		s.accumulate(session, now)
		session.State = state
		session.EndedAt = &now
		session.ActualSeconds = session.RunningSeconds

		if state == models.SessionCompleted && session.TaskID != nil {
			task, err := tx.Tasks.Resolve(ctx, *session.TaskID)
			if err == nil {
				task.PomodoroCount++
				if err := tx.Tasks.Save(ctx, task); err != nil {
					return err
				}
			} else if !apperr.IsNotFound(err) {
				return err
			}
		}

		return tx.Sessions.Save(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// accumulate folds the current run interval into RunningSeconds.
func (s *SessionService) accumulate(session *models.PomodoroSession, now time.Time) {
	if session.State == models.SessionRunning && session.LastResumedAt != nil {
		session.RunningSeconds += int(now.Sub(*session.LastResumedAt).Seconds())
	}
	session.LastResumedAt = nil
}

// ListBetween returns sessions started inside [from, to).
func (s *SessionService) ListBetween(ctx context.Context, from, to time.Time) ([]models.PomodoroSession, error) {
	return s.store.Sessions.ListBetween(ctx, from, to)
}
