package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
	"tidydo/internal/recurrence"
	"tidydo/internal/repository"
)

// maxAncestorDepth bounds the parent-chain walk during cycle detection.
const maxAncestorDepth = 32

// TaskService owns the task lifecycle: creation, mutation, completion,
// recurrence materialization, subtasks and search.
type TaskService struct {
	store  *repository.Store
	events *Dispatcher
	now    func() time.Time
}

func NewTaskService(store *repository.Store, events *Dispatcher) *TaskService {
	return &TaskService{store: store, events: events, now: time.Now}
}

// TaskDraft holds the data needed to create a new task.
type TaskDraft struct {
	Title       string
	Description string
	Priority    string
	Due         *time.Time
	CategoryID  *uint
	Tags        []string
	ParentID    *uint
}

// TaskPatch applies field-level changes. Nil pointers leave fields alone;
// the Clear flags null optional references out.
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	Due           *time.Time
	ClearDue      bool
	CategoryID    *uint
	ClearCategory bool
	ParentID      *uint
	ClearParent   bool
	Position      *int
	Tags          *[]string
}

// CompleteResult reports a completion and, for recurring tasks, the
// freshly materialized instance.
type CompleteResult struct {
	Completed   *models.Task
	NewInstance *models.Task

	// RuleExhausted is set when the recurrence rule hit its end condition,
	// so no new instance exists. Reported, not an error.
	RuleExhausted bool
}

// Create validates the draft and persists the task.
func (s *TaskService) Create(ctx context.Context, draft TaskDraft) (*models.Task, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, apperr.Validation("title", "must not be empty")
	}

	priority := draft.Priority
	if !models.ValidPriority(priority) {
		priority = models.PriorityMedium
	}

	if draft.Due != nil && dayOf(*draft.Due).Before(dayOf(s.now())) {
		return nil, apperr.Validation("due", "cannot be before creation date")
	}

	var task *models.Task
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if draft.CategoryID != nil {
			if _, err := tx.Categories.FindByID(ctx, *draft.CategoryID); err != nil {
				if apperr.IsNotFound(err) {
					return apperr.Validation("category", fmt.Sprintf("category %d does not exist", *draft.CategoryID))
				}
				return err
			}
		}
		if draft.ParentID != nil {
			if _, err := tx.Tasks.FindByID(ctx, *draft.ParentID); err != nil {
				if apperr.IsNotFound(err) {
					return apperr.Validation("parent", fmt.Sprintf("parent task %d does not exist", *draft.ParentID))
				}
				return err
			}
		}

		tags, err := tx.Tasks.FindOrCreateTags(ctx, draft.Tags)
		if err != nil {
			return err
		}

		maxPos, err := tx.Tasks.MaxPosition(ctx)
		if err != nil {
			return err
		}

		task = &models.Task{
			Title:       title,
			Description: draft.Description,
			Status:      models.StatusOpen,
			Priority:    priority,
			Due:         draft.Due,
			CategoryID:  draft.CategoryID,
			ParentID:    draft.ParentID,
			Position:    maxPos + 1,
			Tags:        tags,
		}
		return tx.Tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Get loads one task with its relationships.
func (s *TaskService) Get(ctx context.Context, id uint) (*models.Task, error) {
	return s.store.Tasks.FindByID(ctx, id)
}

// Update applies the patch transactionally. Parent changes that would make
// the task its own ancestor fail with CycleError and change nothing.
func (s *TaskService) Update(ctx context.Context, id uint, patch TaskPatch) (*models.Task, error) {
	var task *models.Task
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		task, err = tx.Tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return apperr.Validation("title", "must not be empty")
			}
			task.Title = title
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.Priority != nil {
			if !models.ValidPriority(*patch.Priority) {
				return apperr.Validation("priority", "must be urgent, high, medium or low")
			}
			task.Priority = *patch.Priority
		}
		if patch.Status != nil {
			if !models.ValidStatus(*patch.Status) {
				return apperr.Validation("status", "unknown status")
			}
			s.applyStatus(task, *patch.Status)
		}
		if patch.ClearDue {
			task.Due = nil
		} else if patch.Due != nil {
			if dayOf(*patch.Due).Before(dayOf(task.CreatedAt)) {
				return apperr.Validation("due", "cannot be before creation date")
			}
			task.Due = patch.Due
		}
		if patch.ClearCategory {
			task.CategoryID = nil
		} else if patch.CategoryID != nil {
			if _, err := tx.Categories.FindByID(ctx, *patch.CategoryID); err != nil {
				if apperr.IsNotFound(err) {
					return apperr.Validation("category", fmt.Sprintf("category %d does not exist", *patch.CategoryID))
				}
				return err
			}
			task.CategoryID = patch.CategoryID
		}
		if patch.ClearParent {
			task.ParentID = nil
		} else if patch.ParentID != nil {
			if err := s.checkParent(ctx, tx, task, *patch.ParentID); err != nil {
				return err
			}
			task.ParentID = patch.ParentID
		}
		if patch.Position != nil {
			task.Position = *patch.Position
		}
		if patch.Tags != nil {
			tags, err := tx.Tasks.FindOrCreateTags(ctx, *patch.Tags)
			if err != nil {
				return err
			}
			if err := tx.Tasks.ReplaceTags(ctx, task, tags); err != nil {
				return err
			}
		}

		return tx.Tasks.Save(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// applyStatus keeps the completed_at invariant: set iff status is done.
func (s *TaskService) applyStatus(task *models.Task, status string) {
	task.Status = status
	if status == models.StatusDone {
		now := s.now()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
}

// checkParent rejects missing parents, self-parenting, recurrence on
// subtasks, and any assignment that would create an ancestry cycle.
func (s *TaskService) checkParent(ctx context.Context, tx *repository.Store, task *models.Task, parentID uint) error {
	if parentID == task.ID {
		return &apperr.CycleError{TaskID: task.ID}
	}
	if task.Recurrence != nil {
		return apperr.Validation("parent", "a recurring task cannot become a subtask")
	}
	if _, err := tx.Tasks.FindByID(ctx, parentID); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.Validation("parent", fmt.Sprintf("parent task %d does not exist", parentID))
		}
		return err
	}

	current := parentID
	for depth := 0; depth < maxAncestorDepth; depth++ {
		next, err := tx.Tasks.ParentOf(ctx, current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if *next == task.ID {
			return &apperr.CycleError{TaskID: task.ID}
		}
		current = *next
	}
	return &apperr.CycleError{TaskID: task.ID}
}

// Complete marks the task done, emits TaskCompleted, and for recurring
// tasks materializes the next instance in the same transaction.
func (s *TaskService) Complete(ctx context.Context, id uint) (*CompleteResult, error) {
	result := &CompleteResult{}
	completedAt := s.now()

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := tx.Tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if task.IsDone() {
			return apperr.Conflict(fmt.Sprintf("task #%d is already completed", id))
		}

		task.Status = models.StatusDone
		task.CompletedAt = &completedAt
		result.Completed = task

		if task.Recurrence != nil && task.ParentID == nil {
			if err := s.materialize(ctx, tx, task, result); err != nil {
				return err
			}
		}

		return tx.Tasks.Save(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.PublishTaskCompleted(ctx, TaskCompleted{Task: result.Completed, At: completedAt}); err != nil {
		return result, fmt.Errorf("achievement evaluation: %w", err)
	}
	return result, nil
}

// materialize clones the completed instance into the next occurrence and
// moves the rule forward. Completing an occurrence twice cannot double
// materialize: the open-sibling guard bails out first.
func (s *TaskService) materialize(ctx context.Context, tx *repository.Store, task *models.Task, result *CompleteResult) error {
	seriesID := task.ID
	if task.SeriesID != nil {
		seriesID = *task.SeriesID
	}
	task.SeriesID = &seriesID

	exists, err := tx.Tasks.OpenInstanceExists(ctx, seriesID, task.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	rule := task.Recurrence
	if task.Due == nil {
		return nil
	}

	next, ok := recurrence.NextOccurrence(rule, *task.Due)
	if !ok {
		result.RuleExhausted = true
		return nil
	}

	clone := &models.Task{
		Title:       task.Title,
		Description: task.Description,
		Status:      models.StatusOpen,
		Priority:    task.Priority,
		Due:         &next,
		CategoryID:  task.CategoryID,
		Position:    task.Position,
		SeriesID:    &seriesID,
	}
	if err := tx.Tasks.Create(ctx, clone); err != nil {
		return err
	}
	if len(task.Tags) > 0 {
		if err := tx.Tasks.ReplaceTags(ctx, clone, task.Tags); err != nil {
			return err
		}
	}

	// The rule follows the live instance; the done row keeps none.
	rule.TaskID = clone.ID
	if rule.Remaining != nil {
		remaining := *rule.Remaining - 1
		rule.Remaining = &remaining
	}
	if err := tx.Tasks.SaveRule(ctx, rule); err != nil {
		return err
	}
	task.Recurrence = nil
	clone.Recurrence = rule

	result.NewInstance = clone
	return nil
}

// Delete soft-deletes the task and cascades to subtasks. Historical
// sessions keep their task reference.
func (s *TaskService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Tasks.SoftDelete(ctx, id)
	})
}

// Search runs a filtered substring search in the stable multi-view order.
func (s *TaskService) Search(ctx context.Context, filter repository.SearchFilter) ([]models.Task, error) {
	return s.store.Tasks.Search(ctx, filter)
}

// AddSubtask appends a subtask under the parent.
func (s *TaskService) AddSubtask(ctx context.Context, parentID uint, title string) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation("title", "must not be empty")
	}

	var subtask *models.Task
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Tasks.FindByID(ctx, parentID); err != nil {
			return err
		}
		siblings, err := tx.Tasks.Subtasks(ctx, parentID)
		if err != nil {
			return err
		}
		subtask = &models.Task{
			Title:    title,
			Status:   models.StatusOpen,
			Priority: models.PriorityMedium,
			ParentID: &parentID,
			Position: len(siblings),
		}
		return tx.Tasks.Create(ctx, subtask)
	})
	if err != nil {
		return nil, err
	}
	return subtask, nil
}

// ToggleSubtask flips a subtask between open and done. Checklist flips do
// not feed the streak counter.
func (s *TaskService) ToggleSubtask(ctx context.Context, id uint) (*models.Task, error) {
	var task *models.Task
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		task, err = tx.Tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if task.ParentID == nil {
			return apperr.Validation("task", fmt.Sprintf("task #%d is not a subtask", id))
		}
		if task.IsDone() {
			s.applyStatus(task, models.StatusOpen)
		} else {
			s.applyStatus(task, models.StatusDone)
		}
		return tx.Tasks.Save(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// SubtaskProgress derives a parent's completion as done/total. Never stored.
func (s *TaskService) SubtaskProgress(ctx context.Context, parentID uint) (done, total int, err error) {
	subtasks, err := s.store.Tasks.Subtasks(ctx, parentID)
	if err != nil {
		return 0, 0, err
	}
	for _, st := range subtasks {
		if st.IsDone() {
			done++
		}
	}
	return done, len(subtasks), nil
}

// Reorder assigns positions by the order of ids.
func (s *TaskService) Reorder(ctx context.Context, ids []uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		for i, id := range ids {
			task, err := tx.Tasks.FindByID(ctx, id)
			if err != nil {
				return err
			}
			task.Position = i
			if err := tx.Tasks.Save(ctx, task); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetRecurrence attaches a normalized rule to a top-level task with a due
// date.
func (s *TaskService) SetRecurrence(ctx context.Context, taskID uint, rule models.RecurrenceRule) (*models.Task, error) {
	if err := recurrence.Normalize(&rule); err != nil {
		return nil, err
	}

	var task *models.Task
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		task, err = tx.Tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.ParentID != nil {
			return apperr.Validation("recurrence", "only top-level tasks can recur")
		}
		if task.Due == nil {
			return apperr.Validation("recurrence", "a recurring task needs a due date")
		}

		if err := tx.Tasks.DeleteRule(ctx, taskID); err != nil {
			return err
		}
		rule.ID = 0
		rule.TaskID = taskID
		if err := tx.Tasks.SaveRule(ctx, &rule); err != nil {
			return err
		}
		task.Recurrence = &rule

		if task.SeriesID == nil {
			task.SeriesID = &task.ID
			return tx.Tasks.Save(ctx, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ClearRecurrence drops the task's rule.
func (s *TaskService) ClearRecurrence(ctx context.Context, taskID uint) (*models.Task, error) {
	var task *models.Task
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		task, err = tx.Tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := tx.Tasks.DeleteRule(ctx, taskID); err != nil {
			return err
		}
		task.Recurrence = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// RollForward advances overdue open recurring tasks to their next
// occurrence. Used by the background materializer so stale instances do not
// pile up while the app is closed. Returns the number of tasks moved.
func (s *TaskService) RollForward(ctx context.Context) (int, error) {
	tasks, err := s.store.Tasks.Search(ctx, repository.SearchFilter{
		Status:       models.StatusOpen,
		TopLevelOnly: true,
	})
	if err != nil {
		return 0, err
	}

	today := dayOf(s.now())
	moved := 0
	for i := range tasks {
		task := &tasks[i]
		if task.Recurrence == nil || task.Due == nil || !dayOf(*task.Due).Before(today) {
			continue
		}
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			rule := task.Recurrence
			due := *task.Due
			for steps := 0; dayOf(due).Before(today) && steps < 1000; steps++ {
				next, ok := recurrence.NextOccurrence(rule, due)
				if !ok {
					break
				}
				due = next
				if rule.Remaining != nil {
					remaining := *rule.Remaining - 1
					rule.Remaining = &remaining
				}
			}
			if due.Equal(*task.Due) {
				return nil
			}
			task.Due = &due
			if err := tx.Tasks.SaveRule(ctx, rule); err != nil {
				return err
			}
			if err := tx.Tasks.Save(ctx, task); err != nil {
				return err
			}
			moved++
			return nil
		})
		if err != nil {
			return moved, err
		}
	}

	if err := s.store.Settings.Set(ctx, "last_roll_forward", s.now()); err != nil {
		return moved, err
	}
	return moved, nil
}

// LastRollForward returns when RollForward last ran, if ever.
func (s *TaskService) LastRollForward(ctx context.Context) (time.Time, bool, error) {
	var at time.Time
	found, err := s.store.Settings.Get(ctx, "last_roll_forward", &at)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, found, nil
}

// CreateCategory adds a category.
func (s *TaskService) CreateCategory(ctx context.Context, name, icon, color string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name", "must not be empty")
	}

	var category *models.Category
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		existing, err := tx.Categories.List(ctx)
		if err != nil {
			return err
		}
		category = &models.Category{Name: name, Icon: icon, Color: color, Position: len(existing)}
		return tx.Categories.Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns all categories in display order.
func (s *TaskService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.Categories.List(ctx)
}

// DeleteCategory removes the category and clears the reference on every
// task pointing at it. Tasks are never lost.
func (s *TaskService) DeleteCategory(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Categories.FindByID(ctx, id); err != nil {
			return err
		}
		if err := tx.Tasks.ClearCategory(ctx, id); err != nil {
			return err
		}
		return tx.Categories.Delete(ctx, id)
	})
}

// ListTags returns all tags sorted by name.
func (s *TaskService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.store.Tasks.ListTags(ctx)
}

// DeleteTag removes a tag from the store and from every task carrying it.
func (s *TaskService) DeleteTag(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Tasks.DeleteTag(ctx, id)
	})
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
