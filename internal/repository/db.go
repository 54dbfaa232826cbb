package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
)

// SchemaVersion is bumped on incompatible schema changes; snapshot import
// rejects bundles written by other versions.
const SchemaVersion = 1

// busyRetries bounds retry-on-busy attempts before surfacing
// TransientStorageError.
const busyRetries = 3

// NewDB opens the SQLite store, runs migrations and seeds defaults.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = defaultDatabasePath()
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// In-memory databases exist per connection; pin the pool to one so
	// every query sees the same database (used by tests).
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(
		&models.Task{},
		&models.RecurrenceRule{},
		&models.Category{},
		&models.Tag{},
		&models.TaskTag{},
		&models.PomodoroSession{},
		&models.AchievementUnlock{},
		&models.StreakCounter{},
		&models.Setting{},
	); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	if err := seedDefaults(db); err != nil {
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	return db, nil
}

// defaultDatabasePath returns ~/.tidydo/tidydo.db, falling back to the
// working directory when the home dir is unknown.
func defaultDatabasePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "tidydo.db"
	}
	return filepath.Join(homeDir, ".tidydo", "tidydo.db")
}

// ensureDirForSQLite creates the parent dir for the SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// seedDefaults creates the stock categories and the streak row on a fresh
// store.
func seedDefaults(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		defaults := []models.Category{
			{Name: "work", Icon: "💼", Color: "#B5EAD7", Position: 0},
			{Name: "study", Icon: "📚", Color: "#C7CEEA", Position: 1},
			{Name: "life", Icon: "🏠", Color: "#FFDAC1", Position: 2},
			{Name: "other", Icon: "📁", Color: "#E2F0CB", Position: 3},
		}
		if err := db.Create(&defaults).Error; err != nil {
			return err
		}
	}

	var streaks int64
	if err := db.Model(&models.StreakCounter{}).Count(&streaks).Error; err != nil {
		return err
	}
	if streaks == 0 {
		if err := db.Create(&models.StreakCounter{}).Error; err != nil {
			return err
		}
	}

	return nil
}

// Store bundles the repositories over a shared connection. Transaction
// yields a Store bound to one transaction so multi-entity mutations stay
// atomic.
type Store struct {
	db *gorm.DB

	Tasks        *TaskRepository
	Categories   *CategoryRepository
	Sessions     *SessionRepository
	Achievements *AchievementRepository
	Settings     *SettingsRepository
}

// NewStore builds a Store over an open connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Tasks:        &TaskRepository{db: db},
		Categories:   &CategoryRepository{db: db},
		Sessions:     &SessionRepository{db: db},
		Achievements: &AchievementRepository{db: db},
		Settings:     &SettingsRepository{db: db},
	}
}

// DB exposes the underlying connection for raw queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a transaction-bound Store, retrying the whole
// unit on SQLite lock contention.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(NewStore(tx))
		})
	})
}

// withRetry retries fn on busy/locked errors with a short backoff before
// surfacing TransientStorageError. Non-transient errors pass through as-is.
func withRetry(fn func() error) error {
	var err error
	for attempt := 1; attempt <= busyRetries; attempt++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(attempt) * 25 * time.Millisecond)
	}
	return &apperr.TransientStorageError{Attempts: busyRetries, Err: err}
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
