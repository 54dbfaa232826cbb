package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
)

// SessionRepository handles CRUD for pomodoro sessions.
type SessionRepository struct {
	db *gorm.DB
}

func (r *SessionRepository) Create(ctx context.Context, session *models.PomodoroSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Save(ctx context.Context, session *models.PomodoroSession) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Active returns the running or paused session, or nil when the focus slot
// is free.
func (r *SessionRepository) Active(ctx context.Context) (*models.PomodoroSession, error) {
	var session models.PomodoroSession
	err := r.db.WithContext(ctx).
		Where("state IN ?", []string{models.SessionRunning, models.SessionPaused}).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id uint) (*models.PomodoroSession, error) {
	var session models.PomodoroSession
	err := r.db.WithContext(ctx).First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("session", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// ListBetween returns sessions started inside [from, to) ordered by start.
func (r *SessionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.PomodoroSession, error) {
	q := r.db.WithContext(ctx).Model(&models.PomodoroSession{})
	if !from.IsZero() {
		q = q.Where("started_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("started_at < ?", to)
	}
	var sessions []models.PomodoroSession
	if err := q.Order("started_at ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// CountCompletedBetween counts completed sessions ended inside [from, to).
// Abandoned sessions never count.
func (r *SessionRepository) CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.PomodoroSession{}).
		Where("state = ?", models.SessionCompleted)
	if !from.IsZero() {
		q = q.Where("ended_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("ended_at < ?", to)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count completed sessions: %w", err)
	}
	return count, nil
}

// FocusSecondsBetween sums actual running time of completed sessions ended
// inside [from, to). With includeAbandoned it becomes the total-focus audit
// that counts abandoned time too.
func (r *SessionRepository) FocusSecondsBetween(ctx context.Context, from, to time.Time, includeAbandoned bool) (int64, error) {
	states := []string{models.SessionCompleted}
	if includeAbandoned {
		states = append(states, models.SessionAbandoned)
	}
	q := r.db.WithContext(ctx).Model(&models.PomodoroSession{}).
		Where("state IN ?", states)
	if !from.IsZero() {
		q = q.Where("ended_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("ended_at < ?", to)
	}
	var total *int64
	if err := q.Select("SUM(actual_seconds)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum focus seconds: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// CompletedEndTimes returns EndedAt of every completed session ordered
// ascending. Feeds the streak rebuild.
func (r *SessionRepository) CompletedEndTimes(ctx context.Context) ([]time.Time, error) {
	var stamps []time.Time
	err := r.db.WithContext(ctx).Model(&models.PomodoroSession{}).
		Where("state = ? AND ended_at IS NOT NULL", models.SessionCompleted).
		Order("ended_at ASC").
		Pluck("ended_at", &stamps).Error
	if err != nil {
		return nil, fmt.Errorf("session end times: %w", err)
	}
	return stamps, nil
}
