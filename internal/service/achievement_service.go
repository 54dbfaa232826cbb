package service

import (
	"context"
	"math"
	"sort"
	"time"

	"tidydo/internal/models"
	"tidydo/internal/repository"
)

// dayFormat is the calendar-day key used by the streak counter.
const dayFormat = "2006-01-02"

// Time-of-day bucket boundaries, local time.
const (
	earlyBirdBeforeHour = 7
	nightOwlFromHour    = 23
)

// streakChunkDays bounds how much history one rebuild transaction folds, so
// a bulk import never holds a single long transaction.
const streakChunkDays = 90

// AchievementService consumes TaskCompleted and SessionCompleted events,
// maintains the streak counter and unlocks badges.
type AchievementService struct {
	store *repository.Store
	loc   *time.Location
}

func NewAchievementService(store *repository.Store) *AchievementService {
	return &AchievementService{store: store, loc: time.Local}
}

// StatsSummary aggregates the numbers the presentation layer renders.
type StatsSummary struct {
	Completions       int64                      `json:"completions"`
	CompletedSessions int64                      `json:"completed_sessions"`
	FocusMinutes      int64                      `json:"focus_minutes"`
	TotalFocusMinutes int64                      `json:"total_focus_minutes"`
	CurrentStreak     int                        `json:"current_streak"`
	LongestStreak     int                        `json:"longest_streak"`
	Unlocked          []models.AchievementUnlock `json:"unlocked"`
}

// HandleTaskCompleted credits the day and re-evaluates the catalog.
func (s *AchievementService) HandleTaskCompleted(ctx context.Context, ev TaskCompleted) error {
	if err := s.creditDay(ctx, ev.At); err != nil {
		return err
	}
	return s.evaluate(ctx, ev.At)
}

// HandleSessionCompleted credits the day and re-evaluates the catalog.
func (s *AchievementService) HandleSessionCompleted(ctx context.Context, ev SessionCompleted) error {
	if err := s.creditDay(ctx, ev.At); err != nil {
		return err
	}
	return s.evaluate(ctx, ev.At)
}

// creditDay applies the qualifying-day rule: same day no change, next day
// extends the streak, a gap resets it to 1.
func (s *AchievementService) creditDay(ctx context.Context, at time.Time) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		streak, err := tx.Achievements.Streak(ctx)
		if err != nil {
			return err
		}
		applyQualifyingDay(streak, at.In(s.loc))
		return tx.Achievements.SaveStreak(ctx, streak)
	})
}

// applyQualifyingDay folds one qualifying timestamp into the counter.
func applyQualifyingDay(streak *models.StreakCounter, localAt time.Time) {
	day := localAt.Format(dayFormat)
	if streak.LastQualifyingDay == day {
		return
	}

	if prev, err := time.ParseInLocation(dayFormat, streak.LastQualifyingDay, localAt.Location()); err == nil {
		// Round so DST-shortened days still count as one calendar day.
		gap := int(math.Round(dayOf(localAt).Sub(prev).Hours() / 24))
		if gap == 1 {
			streak.Current++
		} else {
			streak.Current = 1
		}
	} else {
		streak.Current = 1
	}

	if streak.Current > streak.Longest {
		streak.Longest = streak.Current
	}
	streak.LastQualifyingDay = day
}

// evaluate walks the catalog family by family in ascending tier order. One
// event can unlock several tiers at once, but a lower tier is always
// recorded before a higher one; re-satisfying an unlocked badge is a no-op.
func (s *AchievementService) evaluate(ctx context.Context, at time.Time) error {
	counters, err := s.counters(ctx)
	if err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		skipFamily := ""
		for _, def := range models.AchievementCatalog() {
			if def.Family == skipFamily {
				continue
			}
			if counters.value(def.Criterion) < int64(def.Threshold) {
				// Tiers are cumulative: an unearned tier blocks the rest
				// of the family.
				skipFamily = def.Family
				continue
			}
			unlocked, err := tx.Achievements.IsUnlocked(ctx, def.ID)
			if err != nil {
				return err
			}
			if unlocked {
				continue
			}
			if err := tx.Achievements.Unlock(ctx, def.ID, at); err != nil {
				return err
			}
		}
		return nil
	})
}

// aggregateCounters carries the all-time numbers criteria match against.
type aggregateCounters struct {
	completions  int64
	focusMinutes int64
	streak       int64
	earlyBird    int64
	nightOwl     int64
}

func (c aggregateCounters) value(criterion string) int64 {
	switch criterion {
	case models.CriterionCompletions:
		return c.completions
	case models.CriterionFocusMinutes:
		return c.focusMinutes
	case models.CriterionStreak:
		return c.streak
	case models.CriterionEarlyBird:
		return c.earlyBird
	case models.CriterionNightOwl:
		return c.nightOwl
	}
	return 0
}

func (s *AchievementService) counters(ctx context.Context) (aggregateCounters, error) {
	var c aggregateCounters

	completions, err := s.store.Tasks.CountCompletedBetween(ctx, time.Time{}, time.Time{})
	if err != nil {
		return c, err
	}
	c.completions = completions

	focusSeconds, err := s.store.Sessions.FocusSecondsBetween(ctx, time.Time{}, time.Time{}, false)
	if err != nil {
		return c, err
	}
	c.focusMinutes = focusSeconds / 60

	streak, err := s.store.Achievements.Streak(ctx)
	if err != nil {
		return c, err
	}
	c.streak = int64(streak.Current)

	stamps, err := s.store.Tasks.CompletionTimes(ctx)
	if err != nil {
		return c, err
	}
	for _, at := range stamps {
		hour := at.In(s.loc).Hour()
		if hour < earlyBirdBeforeHour {
			c.earlyBird++
		}
		if hour >= nightOwlFromHour {
			c.nightOwl++
		}
	}

	return c, nil
}

// Stats aggregates completions, focus time, streak and unlocks for the
// given range. Zero bounds mean all-time.
func (s *AchievementService) Stats(ctx context.Context, from, to time.Time) (*StatsSummary, error) {
	completions, err := s.store.Tasks.CountCompletedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.Sessions.CountCompletedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	focusSeconds, err := s.store.Sessions.FocusSecondsBetween(ctx, from, to, false)
	if err != nil {
		return nil, err
	}
	// The audit figure keeps abandoned time.
	totalSeconds, err := s.store.Sessions.FocusSecondsBetween(ctx, from, to, true)
	if err != nil {
		return nil, err
	}
	streak, err := s.store.Achievements.Streak(ctx)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.store.Achievements.ListUnlocks(ctx)
	if err != nil {
		return nil, err
	}

	return &StatsSummary{
		Completions:       completions,
		CompletedSessions: sessions,
		FocusMinutes:      focusSeconds / 60,
		TotalFocusMinutes: totalSeconds / 60,
		CurrentStreak:     streak.Current,
		LongestStreak:     streak.Longest,
		Unlocked:          unlocks,
	}, nil
}

// ListUnlocked resolves unlocks against the catalog for display.
func (s *AchievementService) ListUnlocked(ctx context.Context) ([]models.AchievementDefinition, error) {
	unlocks, err := s.store.Achievements.ListUnlocks(ctx)
	if err != nil {
		return nil, err
	}
	var defs []models.AchievementDefinition
	for _, unlock := range unlocks {
		if def, ok := models.AchievementByID(unlock.AchievementID); ok {
			defs = append(defs, def)
		}
	}
	return defs, nil
}

// RebuildStreak recomputes the counter from the full event history, folding
// it in day-sized chunks so no single transaction spans the whole replay.
// Used after bulk import.
func (s *AchievementService) RebuildStreak(ctx context.Context) error {
	taskStamps, err := s.store.Tasks.CompletionTimes(ctx)
	if err != nil {
		return err
	}
	sessionStamps, err := s.store.Sessions.CompletedEndTimes(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	var days []string
	for _, at := range append(taskStamps, sessionStamps...) {
		day := at.In(s.loc).Format(dayFormat)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Strings(days)

	// Reset, then replay chunk by chunk in short transactions.
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		streak, err := tx.Achievements.Streak(ctx)
		if err != nil {
			return err
		}
		streak.Current = 0
		streak.Longest = 0
		streak.LastQualifyingDay = ""
		return tx.Achievements.SaveStreak(ctx, streak)
	})
	if err != nil {
		return err
	}

	for start := 0; start < len(days); start += streakChunkDays {
		end := start + streakChunkDays
		if end > len(days) {
			end = len(days)
		}
		chunk := days[start:end]
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			streak, err := tx.Achievements.Streak(ctx)
			if err != nil {
				return err
			}
			for _, day := range chunk {
				at, err := time.ParseInLocation(dayFormat, day, s.loc)
				if err != nil {
					continue
				}
				applyQualifyingDay(streak, at)
			}
			return tx.Achievements.SaveStreak(ctx, streak)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
