package service

import (
	"errors"
	"strings"

	"github.com/bulletlog/internal/db"
	"gorm.io/gorm"
)

var (
	ErrLabelNotFound  = errors.New("label not found")
	ErrLabelExists    = errors.New("label already exists")
	ErrLabelInUse     = errors.New("label is used by notes")
	ErrLabelNameEmpty = errors.New("label name is empty")
)

// LabelService wraps label related database operations.
type LabelService struct {
	db *gorm.DB
}

// LabelWithCount carries a label and the number of notes using it.
type LabelWithCount struct {
	db.Label
	NoteCount int64 `json:"noteCount"`
}

// NewLabelService creates a LabelService instance.
func NewLabelService(gdb *gorm.DB) *LabelService {
	return &LabelService{db: gdb}
}

// List 返回所有标签及其关联笔记数，按名称排序
func (s *LabelService) List() ([]LabelWithCount, error) {
	var labels []db.Label
	if err := s.db.Order("name asc").Find(&labels).Error; err != nil {
		return nil, err
	}

	result := make([]LabelWithCount, 0, len(labels))
	for _, label := range labels {
		var count int64
		if err := s.db.Table("note_labels").Where("label_id = ?", label.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		result = append(result, LabelWithCount{Label: label, NoteCount: count})
	}
	return result, nil
}

// Create persists a new label with a unique name.
func (s *LabelService) Create(name, color string) (*db.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLabelNameEmpty
	}

	var existing db.Label
	err := s.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, ErrLabelExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	label := db.Label{Name: name, Color: strings.TrimSpace(color)}
	if err := s.db.Create(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// Update renames a label or changes its color.
func (s *LabelService) Update(id uint, name, color string) (*db.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLabelNameEmpty
	}

	var label db.Label
	if err := s.db.First(&label, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabelNotFound
		}
		return nil, err
	}

	var dup db.Label
	err := s.db.Where("name = ? AND id <> ?", name, id).First(&dup).Error
	if err == nil {
		return nil, ErrLabelExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	label.Name = name
	label.Color = strings.TrimSpace(color)
	if err := s.db.Save(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// Delete removes a label that is not referenced by any note.
func (s *LabelService) Delete(id uint) error {
	var label db.Label
	if err := s.db.First(&label, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLabelNotFound
		}
		return err
	}

	var count int64
	if err := s.db.Table("note_labels").Where("label_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrLabelInUse
	}

	return s.db.Delete(&label).Error
}
