package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"taskquest/internal/model"
)

// CheckAndResetStale un-does daily tasks whose last completion is not today.
// Running it again on the same day changes nothing.
func CheckAndResetStale(doc *model.Document, today model.CalendarDate) bool {
	changed := false
	for i := range doc.Categories {
		tasks := doc.Categories[i].Tasks
		for j := range tasks {
			if tasks[j].Daily && tasks[j].Done && !tasks[j].CompletedOn(today) {
				tasks[j].Done = false
				changed = true
			}
		}
	}
	return changed
}

// ForceResetAll un-does every done daily task regardless of its date.
func ForceResetAll(doc *model.Document) bool {
	changed := false
	for i := range doc.Categories {
		tasks := doc.Categories[i].Tasks
		for j := range tasks {
			if tasks[j].Daily && tasks[j].Done {
				tasks[j].Done = false
				changed = true
			}
		}
	}
	return changed
}

// CheckDailyReset applies CheckAndResetStale for today and saves on change.
func (s *Store) CheckDailyReset(ctx context.Context) (bool, error) {
	today := s.Today()
	return s.dailyReset(ctx, "stale", func(doc *model.Document) bool {
		return CheckAndResetStale(doc, today)
	})
}

// ForceDailyReset applies ForceResetAll and saves on change.
func (s *Store) ForceDailyReset(ctx context.Context) (bool, error) {
	return s.dailyReset(ctx, "forced", ForceResetAll)
}

func (s *Store) dailyReset(ctx context.Context, kind string, reset func(*model.Document) bool) (bool, error) {
	s.mu.Lock()
	if !reset(s.doc) {
		s.mu.Unlock()
		return false, nil
	}
	err := s.save(ctx)
	s.mu.Unlock()

	s.log.WithFields(log.Fields{"kind": kind}).Info("daily tasks reset")
	s.dispatch(notice{changes: []Change{ChangeDailyReset}})
	return true, err
}
