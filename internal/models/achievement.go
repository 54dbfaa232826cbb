package models

import "time"

// Achievement tiers, ascending.
const (
	TierBronze  = "bronze"
	TierSilver  = "silver"
	TierGold    = "gold"
	TierDiamond = "diamond"
)

// Criterion kinds form a closed set; the evaluator matches on them
// explicitly instead of executing arbitrary predicates.
const (
	CriterionCompletions  = "completions"
	CriterionFocusMinutes = "focus_minutes"
	CriterionStreak       = "streak"
	CriterionEarlyBird    = "early_bird"
	CriterionNightOwl     = "night_owl"
)

// AchievementDefinition describes one badge. Definitions live in code, only
// unlocks are persisted. Tiers within a family are cumulative and checked in
// ascending order.
type AchievementDefinition struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Family    string `json:"family"`
	Tier      string `json:"tier"`
	Criterion string `json:"criterion"`
	Threshold int    `json:"threshold"`
}

// AchievementCatalog returns every definition, family by family with tiers
// in ascending order. The order is load-bearing for the evaluator.
func AchievementCatalog() []AchievementDefinition {
	return []AchievementDefinition{
		{ID: "finisher_bronze", Name: "Getting Started", Family: "finisher", Tier: TierBronze, Criterion: CriterionCompletions, Threshold: 1},
		{ID: "finisher_silver", Name: "Task Slayer", Family: "finisher", Tier: TierSilver, Criterion: CriterionCompletions, Threshold: 50},
		{ID: "finisher_gold", Name: "Closer", Family: "finisher", Tier: TierGold, Criterion: CriterionCompletions, Threshold: 200},
		{ID: "finisher_diamond", Name: "Unstoppable", Family: "finisher", Tier: TierDiamond, Criterion: CriterionCompletions, Threshold: 1000},

		{ID: "focused_bronze", Name: "First Focus", Family: "focused", Tier: TierBronze, Criterion: CriterionFocusMinutes, Threshold: 25},
		{ID: "focused_silver", Name: "Deep Worker", Family: "focused", Tier: TierSilver, Criterion: CriterionFocusMinutes, Threshold: 500},
		{ID: "focused_gold", Name: "Flow State", Family: "focused", Tier: TierGold, Criterion: CriterionFocusMinutes, Threshold: 2000},
		{ID: "focused_diamond", Name: "Monk Mode", Family: "focused", Tier: TierDiamond, Criterion: CriterionFocusMinutes, Threshold: 10000},

		{ID: "streak_bronze", Name: "Warming Up", Family: "streak", Tier: TierBronze, Criterion: CriterionStreak, Threshold: 3},
		{ID: "streak_silver", Name: "Consistent", Family: "streak", Tier: TierSilver, Criterion: CriterionStreak, Threshold: 7},
		{ID: "streak_gold", Name: "Habitual", Family: "streak", Tier: TierGold, Criterion: CriterionStreak, Threshold: 30},
		{ID: "streak_diamond", Name: "Relentless", Family: "streak", Tier: TierDiamond, Criterion: CriterionStreak, Threshold: 100},

		{ID: "early_bird_bronze", Name: "Early Bird", Family: "early_bird", Tier: TierBronze, Criterion: CriterionEarlyBird, Threshold: 5},
		{ID: "early_bird_silver", Name: "Dawn Patrol", Family: "early_bird", Tier: TierSilver, Criterion: CriterionEarlyBird, Threshold: 25},

		{ID: "night_owl_bronze", Name: "Night Owl", Family: "night_owl", Tier: TierBronze, Criterion: CriterionNightOwl, Threshold: 5},
		{ID: "night_owl_silver", Name: "Midnight Oil", Family: "night_owl", Tier: TierSilver, Criterion: CriterionNightOwl, Threshold: 25},
	}
}

// AchievementByID looks a definition up in the catalog.
func AchievementByID(id string) (AchievementDefinition, bool) {
	for _, def := range AchievementCatalog() {
		if def.ID == id {
			return def, true
		}
	}
	return AchievementDefinition{}, false
}

// AchievementUnlock records a badge unlock. Append-only, immutable once
// written.
type AchievementUnlock struct {
	AchievementID string    `gorm:"primarykey" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
}

// StreakCounter is the singleton row tracking the daily streak. It is
// recomputed by the evaluator, never mutated by callers.
type StreakCounter struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UpdatedAt time.Time `json:"updated_at"`

	Current int `gorm:"default:0" json:"current"`
	Longest int `gorm:"default:0" json:"longest"`

	// LastQualifyingDay is a local-timezone calendar day, "2006-01-02".
	LastQualifyingDay string `json:"last_qualifying_day"`
}
