package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
	"tidydo/internal/repository"
)

// SnapshotService round-trips the whole store as one portable JSON bundle.
type SnapshotService struct {
	store        *repository.Store
	achievements *AchievementService
	now          func() time.Time
}

func NewSnapshotService(store *repository.Store, achievements *AchievementService) *SnapshotService {
	return &SnapshotService{store: store, achievements: achievements, now: time.Now}
}

// Snapshot is the bundle envelope. Version gates import: bundles written by
// a different schema version are rejected, never partially loaded.
type Snapshot struct {
	Version    int          `json:"version"`
	BundleID   string       `json:"bundle_id"`
	ExportedAt time.Time    `json:"exported_at"`
	Data       SnapshotData `json:"data"`
}

// SnapshotData carries every table. Associations travel as explicit rows
// (rules, join table) so the import rebuilds them without upsert surprises.
type SnapshotData struct {
	Tasks      []models.Task              `json:"tasks"`
	Rules      []models.RecurrenceRule    `json:"rules"`
	Categories []models.Category          `json:"categories"`
	Tags       []models.Tag               `json:"tags"`
	TaskTags   []models.TaskTag           `json:"task_tags"`
	Sessions   []models.PomodoroSession   `json:"sessions"`
	Unlocks    []models.AchievementUnlock `json:"unlocks"`
	Streak     *models.StreakCounter      `json:"streak,omitempty"`
	Settings   []models.Setting           `json:"settings"`
}

// Export serializes the entire store, archived rows included.
func (s *SnapshotService) Export(ctx context.Context) ([]byte, error) {
	snapshot := Snapshot{
		Version:    repository.SchemaVersion,
		BundleID:   uuid.NewString(),
		ExportedAt: s.now(),
	}

	db := s.store.DB().WithContext(ctx)
	collect := []struct {
		name string
		dest any
	}{
		{"tasks", &snapshot.Data.Tasks},
		{"rules", &snapshot.Data.Rules},
		{"categories", &snapshot.Data.Categories},
		{"tags", &snapshot.Data.Tags},
		{"task tags", &snapshot.Data.TaskTags},
		{"sessions", &snapshot.Data.Sessions},
		{"unlocks", &snapshot.Data.Unlocks},
		{"settings", &snapshot.Data.Settings},
	}
	for _, c := range collect {
		if err := db.Unscoped().Find(c.dest).Error; err != nil {
			return nil, fmt.Errorf("export %s: %w", c.name, err)
		}
	}

	streak, err := s.store.Achievements.Streak(ctx)
	if err != nil {
		return nil, err
	}
	snapshot.Data.Streak = streak

	encoded, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return encoded, nil
}

// Import validates and loads a bundle, replacing current contents in one
// transaction and rebuilding the streak afterwards. Unknown or future
// versions fail with FormatError before anything is touched.
func (s *SnapshotService) Import(ctx context.Context, bundle []byte) error {
	var snapshot Snapshot
	if err := json.Unmarshal(bundle, &snapshot); err != nil {
		return apperr.Format(fmt.Sprintf("not a snapshot bundle: %v", err))
	}
	if snapshot.Version != repository.SchemaVersion {
		return apperr.Format(fmt.Sprintf("unsupported schema version %d (supported: %d)", snapshot.Version, repository.SchemaVersion))
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		db := tx.DB()

		wipe := []any{
			&models.TaskTag{},
			&models.RecurrenceRule{},
			&models.PomodoroSession{},
			&models.Task{},
			&models.Tag{},
			&models.Category{},
			&models.AchievementUnlock{},
			&models.Setting{},
		}
		for _, model := range wipe {
			if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("clear store: %w", err)
			}
		}

		// Referenced rows first; tasks omit associations because they
		// arrive as explicit rows.
		if len(snapshot.Data.Categories) > 0 {
			if err := db.Create(&snapshot.Data.Categories).Error; err != nil {
				return fmt.Errorf("import categories: %w", err)
			}
		}
		if len(snapshot.Data.Tags) > 0 {
			if err := db.Create(&snapshot.Data.Tags).Error; err != nil {
				return fmt.Errorf("import tags: %w", err)
			}
		}
		for i := range snapshot.Data.Tasks {
			task := snapshot.Data.Tasks[i]
			task.Tags = nil
			task.Subtasks = nil
			task.Recurrence = nil
			task.Category = nil
			if err := db.Unscoped().Omit("Tags", "Subtasks", "Recurrence", "Category").Create(&task).Error; err != nil {
				return fmt.Errorf("import task %d: %w", task.ID, err)
			}
		}
		if len(snapshot.Data.Rules) > 0 {
			if err := db.Create(&snapshot.Data.Rules).Error; err != nil {
				return fmt.Errorf("import rules: %w", err)
			}
		}
		if len(snapshot.Data.TaskTags) > 0 {
			if err := db.Create(&snapshot.Data.TaskTags).Error; err != nil {
				return fmt.Errorf("import task tags: %w", err)
			}
		}
		for i := range snapshot.Data.Sessions {
			session := snapshot.Data.Sessions[i]
			session.Task = nil
			if err := db.Omit("Task").Create(&session).Error; err != nil {
				return fmt.Errorf("import session %d: %w", session.ID, err)
			}
		}
		if len(snapshot.Data.Unlocks) > 0 {
			if err := db.Create(&snapshot.Data.Unlocks).Error; err != nil {
				return fmt.Errorf("import unlocks: %w", err)
			}
		}
		if len(snapshot.Data.Settings) > 0 {
			if err := db.Create(&snapshot.Data.Settings).Error; err != nil {
				return fmt.Errorf("import settings: %w", err)
			}
		}
		if snapshot.Data.Streak != nil {
			streak, err := tx.Achievements.Streak(ctx)
			if err != nil {
				return err
			}
			streak.Current = snapshot.Data.Streak.Current
			streak.Longest = snapshot.Data.Streak.Longest
			streak.LastQualifyingDay = snapshot.Data.Streak.LastQualifyingDay
			if err := tx.Achievements.SaveStreak(ctx, streak); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Imported history may disagree with the imported counter; the replay
	// is authoritative.
	return s.achievements.RebuildStreak(ctx)
}
