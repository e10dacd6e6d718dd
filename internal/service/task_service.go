package service

import (
	"errors"
	"strings"
	"time"

	"github.com/bulletlog/internal/db"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskTitleEmpty = errors.New("task title is empty")
	ErrTaskBadParent  = errors.New("task parent invalid")
)

// TaskService wraps task related database operations.
type TaskService struct {
	db *gorm.DB
}

// TaskFilter describes filters for listing tasks.
type TaskFilter struct {
	Completed *bool
	DueBefore *time.Time
	DueAfter  *time.Time
	Search    string
}

// TaskInput represents fields accepted when creating or updating a task.
type TaskInput struct {
	Title       string
	Description string
	Color       string
	DueDate     *time.Time
	ParentID    *uint
	UserID      uint
}

// NewTaskService creates a TaskService instance.
func NewTaskService(gdb *gorm.DB) *TaskService {
	return &TaskService{db: gdb}
}

// List 返回顶层任务及其子任务，未完成的排在前面
func (s *TaskService) List(filter TaskFilter) ([]db.Task, error) {
	query := s.db.Model(&db.Task{}).Where("parent_id IS NULL").Preload("Subtasks")

	if filter.Completed != nil {
		if *filter.Completed {
			query = query.Where("completed_at IS NOT NULL")
		} else {
			query = query.Where("completed_at IS NULL")
		}
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date IS NOT NULL AND due_date <= ?", filter.DueBefore)
	}
	if filter.DueAfter != nil {
		query = query.Where("due_date IS NOT NULL AND due_date >= ?", filter.DueAfter)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(title LIKE ? OR description LIKE ?)", search, search)
	}

	var tasks []db.Task
	if err := query.
		Order("completed_at IS NOT NULL, due_date IS NULL, due_date asc, id asc").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get fetches a task by id with subtasks preloaded.
func (s *TaskService) Get(id uint) (*db.Task, error) {
	var task db.Task
	if err := s.db.Preload("Subtasks").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Create persists a new task.
func (s *TaskService) Create(input TaskInput) (*db.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTaskTitleEmpty
	}

	if input.ParentID != nil {
		var parent db.Task
		if err := s.db.First(&parent, *input.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTaskBadParent
			}
			return nil, err
		}
		// 仅支持一层子任务
		if parent.ParentID != nil {
			return nil, ErrTaskBadParent
		}
	}

	task := db.Task{
		UserID:      input.UserID,
		Title:       title,
		Description: input.Description,
		Color:       strings.TrimSpace(input.Color),
		DueDate:     input.DueDate,
		ParentID:    input.ParentID,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies updates to an existing task.
func (s *TaskService) Update(id uint, input TaskInput) (*db.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTaskTitleEmpty
	}

	var task db.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	task.Title = title
	task.Description = input.Description
	task.Color = strings.TrimSpace(input.Color)
	task.DueDate = input.DueDate

	if err := s.db.Save(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Complete marks a task done at the given time.
func (s *TaskService) Complete(id uint, now time.Time) (*db.Task, error) {
	return s.setCompletedAt(id, &now)
}

// Reopen clears a task's completion mark.
func (s *TaskService) Reopen(id uint) (*db.Task, error) {
	return s.setCompletedAt(id, nil)
}

// Delete removes a task together with its subtasks.
func (s *TaskService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&db.Task{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&db.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// Overdue 返回截止时间早于 now 且未完成的任务
func (s *TaskService) Overdue(now time.Time) ([]db.Task, error) {
	var tasks []db.Task
	if err := s.db.
		Where("completed_at IS NULL AND due_date IS NOT NULL AND due_date < ?", now).
		Order("due_date asc, id asc").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) setCompletedAt(id uint, at *time.Time) (*db.Task, error) {
	var task db.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	task.CompletedAt = at
	if err := s.db.Save(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}
