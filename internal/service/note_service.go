package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bulletlog/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
)

var (
	ErrNoteNotFound = errors.New("note not found")
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	noteSanitizer = bluemonday.UGCPolicy()
)

// NoteService wraps note related database operations.
type NoteService struct {
	db *gorm.DB
}

// NoteFilter describes filters for listing notes.
type NoteFilter struct {
	Search     string
	LabelNames []string
	Starred    bool
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	PerPage    int
}

// NoteListResult aggregates paginated list data and counters.
type NoteListResult struct {
	Notes      []db.Note
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NoteInput represents fields accepted when creating or updating a note.
type NoteInput struct {
	Title     string
	Content   string
	Color     string
	IsStarred bool
	NoteDate  time.Time
	LabelIDs  []uint
	ImageURLs []string
	UserID    uint
}

// NewNoteService creates a NoteService instance.
func NewNoteService(gdb *gorm.DB) *NoteService {
	return &NoteService{db: gdb}
}

// Get fetches a note by id with labels and images preloaded.
func (s *NoteService) Get(id uint) (*db.Note, error) {
	var note db.Note
	if err := s.db.Preload("Labels").Preload("Images").First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}

// Create persists a note and associates labels in a transaction.
func (s *NoteService) Create(input NoteInput) (*db.Note, error) {
	note := db.Note{
		UserID:    input.UserID,
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		Color:     strings.TrimSpace(input.Color),
		IsStarred: input.IsStarred,
		NoteDate:  normalizeToDate(input.NoteDate),
		WordCount: countWords(input.Content),
	}
	if note.NoteDate.IsZero() {
		note.NoteDate = normalizeToDate(time.Now())
	}

	return s.saveWithLabels(&note, input.LabelIDs, input.ImageURLs)
}

// Update applies updates to an existing note.
func (s *NoteService) Update(id uint, input NoteInput) (*db.Note, error) {
	var existing db.Note
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	existing.Title = strings.TrimSpace(input.Title)
	existing.Content = input.Content
	existing.Color = strings.TrimSpace(input.Color)
	existing.IsStarred = input.IsStarred
	if !input.NoteDate.IsZero() {
		existing.NoteDate = normalizeToDate(input.NoteDate)
	}
	existing.WordCount = countWords(input.Content)

	return s.saveWithLabels(&existing, input.LabelIDs, input.ImageURLs)
}

// Delete removes a note by id.
func (s *NoteService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", id).Delete(&db.NoteImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Note{}, id).Error
	})
}

// List provides paginated notes based on filters, newest note date first.
func (s *NoteService) List(filter NoteFilter) (*NoteListResult, error) {
	result := &NoteListResult{Page: filter.Page, PerPage: filter.PerPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 20
	}

	countQuery := s.applyFilters(s.db.Model(&db.Note{}), filter)
	if err := countQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage

	var notes []db.Note
	dataQuery := s.applyFilters(s.db.Model(&db.Note{}).Preload("Labels").Preload("Images"), filter)
	if err := dataQuery.
		Order("notes.note_date desc, notes.id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&notes).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}

	result.Notes = notes
	return result, nil
}

// ListByMonth 返回指定月份内的笔记，用于日历视图
func (s *NoteService) ListByMonth(year int, month time.Month) ([]db.Note, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, -1)

	var notes []db.Note
	if err := s.db.Preload("Labels").
		Where("note_date BETWEEN ? AND ?", start, end).
		Order("note_date asc, id asc").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// RenderHTML 将 Markdown 内容渲染为净化后的 HTML 片段
func RenderHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return noteSanitizer.Sanitize(buf.String()), nil
}

func (s *NoteService) saveWithLabels(note *db.Note, labelIDs []uint, imageURLs []string) (*db.Note, error) {
	return note, s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(note).Error; err != nil {
			return err
		}

		var labels []db.Label
		if len(labelIDs) > 0 {
			if err := tx.Where("id IN ?", labelIDs).Find(&labels).Error; err != nil {
				return err
			}
			if len(labels) != len(labelIDs) {
				return ErrLabelNotFound
			}
		}

		if err := tx.Model(note).Association("Labels").Replace(labels); err != nil {
			return err
		}

		if imageURLs != nil {
			if err := tx.Where("note_id = ?", note.ID).Delete(&db.NoteImage{}).Error; err != nil {
				return err
			}
			for _, url := range imageURLs {
				url = strings.TrimSpace(url)
				if url == "" {
					continue
				}
				if err := tx.Create(&db.NoteImage{NoteID: note.ID, URL: url}).Error; err != nil {
					return err
				}
			}
		}

		return tx.Preload("Labels").Preload("Images").First(note, note.ID).Error
	})
}

func (s *NoteService) applyFilters(query *gorm.DB, filter NoteFilter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(notes.title LIKE ? OR notes.content LIKE ?)", search, search)
	}

	if filter.Starred {
		query = query.Where("notes.is_starred = ?", true)
	}

	if len(filter.LabelNames) > 0 {
		subQuery := s.db.Model(&db.Note{}).
			Select("notes.id").
			Joins("JOIN note_labels ON notes.id = note_labels.note_id").
			Joins("JOIN labels ON labels.id = note_labels.label_id").
			Where("labels.name IN ?", filter.LabelNames).
			Distinct()

		query = query.Where("notes.id IN (?)", subQuery)
	}

	if filter.StartDate != nil {
		query = query.Where("notes.note_date >= ?", filter.StartDate)
	}

	if filter.EndDate != nil {
		query = query.Where("notes.note_date <= ?", filter.EndDate)
	}

	return query
}

// countWords 统计正文字数：CJK 按字符计，其余按空白分词计
func countWords(content string) int {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}

	count := 0
	inWord := false
	for _, r := range trimmed {
		switch {
		case r >= 0x4E00 && r <= 0x9FFF:
			count++
			inWord = false
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			inWord = false
		default:
			if !inWord {
				count++
				inWord = true
			}
		}
	}
	return count
}
