package service

import (
	"errors"
	"testing"

	"github.com/bulletlog/internal/db"
)

func TestLabelServiceCreateAndList(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	labels := NewLabelService(db.DB)
	notes := NewNoteService(db.DB)

	work, err := labels.Create("工作", "#60a5fa")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := labels.Create("生活", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// 重名
	if _, err := labels.Create("工作", ""); !errors.Is(err, ErrLabelExists) {
		t.Fatalf("expected ErrLabelExists, got %v", err)
	}
	// 空名
	if _, err := labels.Create("  ", ""); !errors.Is(err, ErrLabelNameEmpty) {
		t.Fatalf("expected ErrLabelNameEmpty, got %v", err)
	}

	if _, err := notes.Create(NoteInput{Title: "周会", Content: "c", LabelIDs: []uint{work.ID}}); err != nil {
		t.Fatalf("Create note returned error: %v", err)
	}

	list, err := labels.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(list))
	}
	for _, item := range list {
		switch item.Name {
		case "工作":
			if item.NoteCount != 1 {
				t.Fatalf("expected note count 1 for 工作, got %d", item.NoteCount)
			}
		case "生活":
			if item.NoteCount != 0 {
				t.Fatalf("expected note count 0 for 生活, got %d", item.NoteCount)
			}
		}
	}
}

func TestLabelServiceUpdate(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	labels := NewLabelService(db.DB)

	work, _ := labels.Create("工作", "")
	if _, err := labels.Create("生活", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	renamed, err := labels.Update(work.ID, "职场", "#f87171")
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if renamed.Name != "职场" || renamed.Color != "#f87171" {
		t.Fatalf("unexpected update result: %+v", renamed)
	}

	// 改成已存在的名字
	if _, err := labels.Update(work.ID, "生活", ""); !errors.Is(err, ErrLabelExists) {
		t.Fatalf("expected ErrLabelExists, got %v", err)
	}

	if _, err := labels.Update(9999, "x", ""); !errors.Is(err, ErrLabelNotFound) {
		t.Fatalf("expected ErrLabelNotFound, got %v", err)
	}
}

func TestLabelServiceDeleteGuardsUsage(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	labels := NewLabelService(db.DB)
	notes := NewNoteService(db.DB)

	used, _ := labels.Create("工作", "")
	unused, _ := labels.Create("草稿", "")

	if _, err := notes.Create(NoteInput{Title: "t", Content: "c", LabelIDs: []uint{used.ID}}); err != nil {
		t.Fatalf("Create note returned error: %v", err)
	}

	if err := labels.Delete(used.ID); !errors.Is(err, ErrLabelInUse) {
		t.Fatalf("expected ErrLabelInUse, got %v", err)
	}

	if err := labels.Delete(unused.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if err := labels.Delete(unused.ID); !errors.Is(err, ErrLabelNotFound) {
		t.Fatalf("expected ErrLabelNotFound, got %v", err)
	}
}
