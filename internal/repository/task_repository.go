package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"tidydo/internal/apperr"
	"tidydo/internal/models"
)

// TaskRepository handles CRUD for tasks, tags and recurrence rules.
type TaskRepository struct {
	db *gorm.DB
}

// SearchFilter narrows a task search. Zero values mean "no constraint".
type SearchFilter struct {
	Query      string
	Status     string
	Priority   string
	CategoryID *uint
	Tag        string
	DueFrom    *time.Time
	DueTo      *time.Time

	// TopLevelOnly excludes subtasks from the result.
	TopLevelOnly bool
	Limit        int
}

// prioritySortExpr orders priorities urgent > high > medium > low in SQL.
const prioritySortExpr = "CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 ELSE 4 END"

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID loads a live task with its tags, rule and subtasks.
func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Recurrence").
		Preload("Subtasks").
		First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// Resolve looks a task up tolerating archived rows, for historical
// references from sessions and unlocks.
func (r *TaskRepository) Resolve(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Unscoped().Preload("Tags").First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// ReplaceTags rewrites the task's tag set.
func (r *TaskRepository) ReplaceTags(ctx context.Context, task *models.Task, tags []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(task).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	task.Tags = tags
	return nil
}

// SoftDelete archives the task and its subtasks. Historical sessions keep
// their task reference.
func (r *TaskRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("task", id)
	}
	if err := r.db.WithContext(ctx).Where("parent_id = ?", id).Delete(&models.Task{}).Error; err != nil {
		return fmt.Errorf("delete subtasks: %w", err)
	}
	return nil
}

// Search matches the query as a case-insensitive substring of title or
// description, AND-ed with the filters, in the stable multi-view order:
// priority desc, due asc (undated last), created asc.
func (r *TaskRepository) Search(ctx context.Context, f SearchFilter) ([]models.Task, error) {
	q := r.db.WithContext(ctx).Model(&models.Task{}).Preload("Tags").Preload("Recurrence")

	if needle := strings.TrimSpace(f.Query); needle != "" {
		pattern := "%" + strings.ToLower(needle) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Tag != "" {
		q = q.Where("id IN (?)", r.db.Model(&models.TaskTag{}).
			Select("task_tags.task_id").
			Joins("JOIN tags ON tags.id = task_tags.tag_id").
			Where("tags.name = ?", strings.TrimSpace(f.Tag)))
	}
	if f.DueFrom != nil {
		q = q.Where("due >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		q = q.Where("due <= ?", *f.DueTo)
	}
	if f.TopLevelOnly {
		q = q.Where("parent_id IS NULL")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var tasks []models.Task
	err := q.Order(prioritySortExpr).
		Order("due IS NULL").
		Order("due ASC").
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return tasks, nil
}

// Subtasks returns the live children of a task ordered by position.
func (r *TaskRepository) Subtasks(ctx context.Context, parentID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("position ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	return tasks, nil
}

// ParentOf returns the parent id of a live task, nil for top-level tasks.
func (r *TaskRepository) ParentOf(ctx context.Context, id uint) (*uint, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Select("id", "parent_id").First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find parent: %w", err)
	}
	return task.ParentID, nil
}

// OpenInstanceExists reports whether the series already has a live open
// instance other than excludeID. Guards against double materialization.
func (r *TaskRepository) OpenInstanceExists(ctx context.Context, seriesID, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("series_id = ? AND id <> ? AND status IN ?", seriesID, excludeID,
			[]string{models.StatusOpen, models.StatusInProgress}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check open instance: %w", err)
	}
	return count > 0, nil
}

// MaxPosition returns the highest position among live top-level tasks.
func (r *TaskRepository) MaxPosition(ctx context.Context) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("parent_id IS NULL").
		Select("MAX(position)").Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("max position: %w", err)
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

// ClearCategory detaches every task from a category being deleted.
func (r *TaskRepository) ClearCategory(ctx context.Context, categoryID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error
	if err != nil {
		return fmt.Errorf("clear category: %w", err)
	}
	return nil
}

// FindOrCreateTags resolves tag names to rows, creating missing ones.
// Blank names are skipped.
func (r *TaskRepository) FindOrCreateTags(ctx context.Context, names []string) ([]models.Tag, error) {
	var tags []models.Tag
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var tag models.Tag
		err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name}
			if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
				return nil, fmt.Errorf("create tag %q: %w", name, err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("find tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// ListTags returns all tags sorted by name.
func (r *TaskRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// DeleteTag removes a tag and detaches it from every task. Tasks survive.
func (r *TaskRepository) DeleteTag(ctx context.Context, id uint) error {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("tag", id)
		}
		return fmt.Errorf("find tag: %w", err)
	}
	if err := r.db.WithContext(ctx).Where("tag_id = ?", id).Delete(&models.TaskTag{}).Error; err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}
	if err := r.db.WithContext(ctx).Delete(&tag).Error; err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// SaveRule upserts the task's recurrence rule.
func (r *TaskRepository) SaveRule(ctx context.Context, rule *models.RecurrenceRule) error {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("save recurrence rule: %w", err)
	}
	return nil
}

// DeleteRule drops a task's recurrence rule if present.
func (r *TaskRepository) DeleteRule(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&models.RecurrenceRule{}).Error; err != nil {
		return fmt.Errorf("delete recurrence rule: %w", err)
	}
	return nil
}

// CountCompletedBetween counts tasks completed inside [from, to). Zero
// bounds mean unbounded.
func (r *TaskRepository) CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	q := r.db.WithContext(ctx).Unscoped().Model(&models.Task{}).
		Where("status = ?", models.StatusDone)
	if !from.IsZero() {
		q = q.Where("completed_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("completed_at < ?", to)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return count, nil
}

// CompletionTimes returns CompletedAt of every done task, archived included,
// ordered ascending. Feeds the streak rebuild.
func (r *TaskRepository) CompletionTimes(ctx context.Context) ([]time.Time, error) {
	var stamps []time.Time
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Task{}).
		Where("status = ? AND completed_at IS NOT NULL", models.StatusDone).
		Order("completed_at ASC").
		Pluck("completed_at", &stamps).Error
	if err != nil {
		return nil, fmt.Errorf("completion times: %w", err)
	}
	return stamps, nil
}
