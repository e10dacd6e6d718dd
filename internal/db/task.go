package db

import (
	"time"

	"gorm.io/gorm"
)

// Task 定义了待办模型
// CompletedAt 为空表示未完成；ParentID 支持一层子任务
type Task struct {
	gorm.Model
	UserID      uint `gorm:"index"`
	User        User
	Title       string
	Description string
	Color       string
	DueDate     *time.Time `gorm:"index"`
	CompletedAt *time.Time
	ParentID    *uint  `gorm:"index"`
	Subtasks    []Task `gorm:"foreignKey:ParentID"`
}
