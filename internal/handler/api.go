package handler

import (
	"github.com/bulletlog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	habits      *service.HabitService
	habitLogs   *service.HabitLogService
	habitStatus *service.HabitStatusService
	notes       *service.NoteService
	labels      *service.LabelService
	tasks       *service.TaskService
	uploadDir   string
	uploadURL   string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, uploadDir, uploadURL string) *API {
	return &API{
		db:          db,
		habits:      service.NewHabitService(db),
		habitLogs:   service.NewHabitLogService(db),
		habitStatus: service.NewHabitStatusService(db),
		notes:       service.NewNoteService(db),
		labels:      service.NewLabelService(db),
		tasks:       service.NewTaskService(db),
		uploadDir:   uploadDir,
		uploadURL:   uploadURL,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
