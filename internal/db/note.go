package db

import (
	"time"

	"gorm.io/gorm"
)

// Note 定义了日记模型
// Content 为 Markdown 原文，渲染和净化在 service 层完成
// NoteDate 是笔记归属的日历日期，区别于创建时间，便于按天/按月检索
type Note struct {
	gorm.Model
	UserID    uint `gorm:"index"`
	User      User
	Title     string
	Content   string
	Color     string
	IsStarred bool
	NoteDate  time.Time `gorm:"index"`
	WordCount int
	Labels    []Label     `gorm:"many2many:note_labels;"`
	Images    []NoteImage `gorm:"constraint:OnDelete:CASCADE"`
}

// NoteImage 记录笔记附图及缩略图地址
type NoteImage struct {
	gorm.Model
	NoteID       uint `gorm:"index"`
	URL          string
	ThumbnailURL string
}

// Label 定义了笔记分类标签
type Label struct {
	gorm.Model
	Name  string `gorm:"unique;not null"`
	Color string
	Notes []Note `gorm:"many2many:note_labels;"`
}
