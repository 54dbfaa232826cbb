package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tidydo/internal/models"
)

// AchievementRepository persists unlocks and the streak counter.
type AchievementRepository struct {
	db *gorm.DB
}

// Unlock records a badge unlock once. Re-unlocking is a silent no-op so the
// append-only history stays immutable.
func (r *AchievementRepository) Unlock(ctx context.Context, achievementID string, at time.Time) error {
	unlock := models.AchievementUnlock{AchievementID: achievementID, UnlockedAt: at}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&unlock).Error
	if err != nil {
		return fmt.Errorf("record unlock: %w", err)
	}
	return nil
}

// IsUnlocked reports whether a badge has already been earned.
func (r *AchievementRepository) IsUnlocked(ctx context.Context, achievementID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AchievementUnlock{}).
		Where("achievement_id = ?", achievementID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check unlock: %w", err)
	}
	return count > 0, nil
}

// ListUnlocks returns all unlocks ordered by unlock time.
func (r *AchievementRepository) ListUnlocks(ctx context.Context) ([]models.AchievementUnlock, error) {
	var unlocks []models.AchievementUnlock
	err := r.db.WithContext(ctx).Order("unlocked_at ASC").Find(&unlocks).Error
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	return unlocks, nil
}

// Streak returns the singleton counter, creating it on a store that predates
// seeding.
func (r *AchievementRepository) Streak(ctx context.Context) (*models.StreakCounter, error) {
	var streak models.StreakCounter
	err := r.db.WithContext(ctx).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = models.StreakCounter{}
		if err := r.db.WithContext(ctx).Create(&streak).Error; err != nil {
			return nil, fmt.Errorf("create streak row: %w", err)
		}
		return &streak, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	return &streak, nil
}

// SaveStreak replaces the counter state.
func (r *AchievementRepository) SaveStreak(ctx context.Context, streak *models.StreakCounter) error {
	if err := r.db.WithContext(ctx).Save(streak).Error; err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}
