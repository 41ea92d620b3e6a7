package service

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"taskquest/internal/model"
)

// AddCategory appends a new category at level 1 with a freshly shuffled
// palette. A blank name is rejected with (nil, nil).
func (s *Store) AddCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	s.mu.Lock()
	cat := model.Category{
		ID:         s.ids.NewID(),
		Name:       name,
		XP:         0,
		Level:      1,
		ColorOrder: model.ShuffledPalette(s.shuffle),
		ColorIndex: 0,
		Tasks:      []model.Task{},
	}
	s.doc.Categories = append(s.doc.Categories, cat)
	err := s.save(ctx)
	out := copyCategory(&s.doc.Categories[len(s.doc.Categories)-1])
	s.mu.Unlock()

	s.log.WithFields(log.Fields{"category": cat.ID, "name": name}).Info("category added")
	s.dispatch(notice{changes: []Change{ChangeCategories}})
	return out, err
}

// DeleteCategory removes a category and all of its tasks once confirm agrees.
// The cursor is cleared when it pointed at the deleted category. Unknown ids
// and refusals report false.
func (s *Store) DeleteCategory(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	s.mu.Lock()
	cat, _ := s.doc.FindCategory(id)
	if cat == nil {
		s.mu.Unlock()
		return false, nil
	}
	name := cat.Name
	s.mu.Unlock()

	if confirm == nil || !confirm.Confirm(fmt.Sprintf("Delete category %q and all its tasks?", name)) {
		return false, nil
	}

	s.mu.Lock()
	_, idx := s.doc.FindCategory(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.doc.Categories = append(s.doc.Categories[:idx], s.doc.Categories[idx+1:]...)
	changes := []Change{ChangeCategories}
	if s.selected == id {
		s.selected = ""
		changes = append(changes, ChangeSelection)
	}
	err := s.save(ctx)
	s.mu.Unlock()

	s.log.WithFields(log.Fields{"category": id, "name": name}).Info("category deleted")
	s.dispatch(notice{changes: changes})
	return true, err
}

// ResetCategoryTasks marks every task of the category as not done. Experience
// and level are left alone.
func (s *Store) ResetCategoryTasks(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	cat, _ := s.doc.FindCategory(id)
	if cat == nil {
		s.mu.Unlock()
		return false, nil
	}
	changed := false
	for i := range cat.Tasks {
		if cat.Tasks[i].Done {
			cat.Tasks[i].Done = false
			changed = true
		}
	}
	if !changed {
		s.mu.Unlock()
		return false, nil
	}
	err := s.save(ctx)
	s.mu.Unlock()

	s.log.WithField("category", id).Info("category tasks reset")
	s.dispatch(notice{changes: []Change{ChangeTasks}})
	return true, err
}

// ResetAll wipes the document and the stored slot once confirm agrees.
func (s *Store) ResetAll(ctx context.Context, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm.Confirm("Reset all categories, tasks and progress?") {
		return false, nil
	}

	s.mu.Lock()
	s.doc = model.New()
	s.selected = ""
	var err error
	if clearErr := s.gateway.Clear(ctx); clearErr != nil {
		s.log.WithError(clearErr).Error("clear document")
		err = fmt.Errorf("clear document: %w", clearErr)
	}
	s.mu.Unlock()

	s.log.Info("all progress reset")
	s.dispatch(notice{changes: []Change{ChangeReset}})
	return true, err
}
