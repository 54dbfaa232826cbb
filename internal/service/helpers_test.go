package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tidydo/internal/repository"
)

// testClock is an injectable clock the services read through their now func.
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time {
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type testEnv struct {
	store        *repository.Store
	tasks        *TaskService
	sessions     *SessionService
	achievements *AchievementService
	snapshots    *SnapshotService
	clock        *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	store := repository.NewStore(db)

	achievements := NewAchievementService(store)
	events := NewDispatcher(achievements)
	tasks := NewTaskService(store, events)
	sessions := NewSessionService(store, events)
	snapshots := NewSnapshotService(store, achievements)

	clock := &testClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.Local)}
	tasks.now = clock.Now
	sessions.now = clock.Now

	return &testEnv{
		store:        store,
		tasks:        tasks,
		sessions:     sessions,
		achievements: achievements,
		snapshots:    snapshots,
		clock:        clock,
	}
}

// dueOn returns an end-of-day pointer for the clock's current date plus days.
func (e *testEnv) dueOn(days int) *time.Time {
	d := e.clock.t.AddDate(0, 0, days)
	due := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
	return &due
}
