package service

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"taskquest/internal/model"
	"taskquest/internal/progression"
)

// ToggleResult describes a task state flip.
type ToggleResult struct {
	Task         model.Task
	CategoryName string
	// Completed is true for a not-done to done transition.
	Completed bool
	// Progress is only meaningful when Completed is true.
	Progress progression.Result
}

// AddTask appends a task to the selected category. categoryID may be empty
// to mean the selection; any other id must match it. Missing selection,
// mismatched category or blank text are rejected with (nil, nil).
func (s *Store) AddTask(ctx context.Context, categoryID, text string, daily bool) (*model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.mu.Lock()
	if s.selected == "" || (categoryID != "" && categoryID != s.selected) {
		s.mu.Unlock()
		return nil, nil
	}
	cat, _ := s.doc.FindCategory(s.selected)
	if cat == nil {
		s.mu.Unlock()
		return nil, nil
	}

	task := model.Task{
		ID:    s.ids.NewID(),
		Text:  text,
		Daily: daily,
		Color: cat.NextColor(),
	}
	cat.Tasks = append(cat.Tasks, task)
	catID := cat.ID
	err := s.save(ctx)
	s.mu.Unlock()

	s.log.WithFields(log.Fields{"category": catID, "task": task.ID, "daily": daily}).Info("task added")
	s.dispatch(notice{changes: []Change{ChangeTasks}})
	return &task, err
}

// ToggleTask flips a task's done flag. Completing stamps today's date and
// awards experience; un-completing only clears the flag and keeps the stale
// completion date. Unknown ids return (nil, nil).
func (s *Store) ToggleTask(ctx context.Context, categoryID, taskID string) (*ToggleResult, error) {
	s.mu.Lock()
	cat, _ := s.doc.FindCategory(categoryID)
	if cat == nil {
		s.mu.Unlock()
		return nil, nil
	}
	task := cat.FindTask(taskID)
	if task == nil {
		s.mu.Unlock()
		return nil, nil
	}

	res := &ToggleResult{CategoryName: cat.Name}
	var n notice
	if task.Done {
		task.Done = false
		n.changes = []Change{ChangeTasks}
	} else {
		task.Done = true
		task.LastCompleted = model.NewDate(s.Today())
		res.Completed = true
		res.Progress = progression.ApplyCompletion(cat)
		n.changes = []Change{ChangeTasks, ChangeProgress}
		if res.Progress.LeveledUp {
			n.levelUps = []levelUp{{name: cat.Name, level: res.Progress.NewLevel}}
		}
	}
	res.Task = *task
	if task.LastCompleted != nil {
		res.Task.LastCompleted = model.NewDate(*task.LastCompleted)
	}
	err := s.save(ctx)
	s.mu.Unlock()

	entry := s.log.WithFields(log.Fields{"category": categoryID, "task": taskID, "done": res.Task.Done})
	if res.Progress.LeveledUp {
		entry = entry.WithField("level", res.Progress.NewLevel)
	}
	entry.Info("task toggled")
	s.dispatch(n)
	return res, err
}
