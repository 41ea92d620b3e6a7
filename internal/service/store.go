package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"taskquest/internal/ident"
	"taskquest/internal/model"
	"taskquest/internal/repository"
)

// Options tune a Store. Zero values fall back to production defaults.
type Options struct {
	IDs      ident.Generator
	Now      func() time.Time
	Location *time.Location
	// Shuffle has the signature of rand.Shuffle and orders new palettes.
	Shuffle func(n int, swap func(i, j int))
	Logger  log.FieldLogger
}

// Store owns the in-memory document and the selection cursor. All mutations
// go through it; each one that should survive a restart is saved through the
// gateway before listeners are notified.
type Store struct {
	mu        sync.Mutex
	doc       *model.Document
	selected  string
	gateway   repository.Gateway
	listeners map[int]Listener
	nextSub   int

	ids     ident.Generator
	now     func() time.Time
	loc     *time.Location
	shuffle func(n int, swap func(i, j int))
	log     log.FieldLogger
}

type levelUp struct {
	name  string
	level int
}

// notice collects what to tell listeners once the lock is released.
type notice struct {
	changes  []Change
	levelUps []levelUp
}

func NewStore(gateway repository.Gateway, opts Options) *Store {
	s := &Store{
		doc:       model.New(),
		gateway:   gateway,
		listeners: make(map[int]Listener),
		ids:       opts.IDs,
		now:       opts.Now,
		loc:       opts.Location,
		shuffle:   opts.Shuffle,
		log:       opts.Logger,
	}
	if s.ids == nil {
		s.ids = ident.NewUUID()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.shuffle == nil {
		s.shuffle = rand.Shuffle
	}
	if s.log == nil {
		s.log = log.StandardLogger()
	}
	return s
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Open loads the stored document, then un-does daily tasks completed on an
// earlier day. A corrupt blob is logged and ignored; the store keeps its
// current in-memory document.
func (s *Store) Open(ctx context.Context) error {
	doc, err := s.gateway.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrCorruptDocument):
		s.log.WithError(err).Warn("stored document is corrupt, keeping in-memory state")
	case err != nil:
		return fmt.Errorf("load document: %w", err)
	case doc != nil:
		s.mu.Lock()
		s.doc = doc
		s.selected = ""
		s.mu.Unlock()
		s.log.WithField("categories", len(doc.Categories)).Info("document loaded")
	}

	if _, err := s.CheckDailyReset(ctx); err != nil {
		return err
	}
	s.dispatch(notice{changes: []Change{ChangeLoaded}})
	return nil
}

// Today returns the current calendar day in the store's location.
func (s *Store) Today() model.CalendarDate {
	return model.DateOf(s.now().In(s.loc))
}

// Snapshot returns a deep copy of the document and the selected category id.
func (s *Store) Snapshot() (*model.Document, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), s.selected
}

// Selected returns a copy of the selected category, or nil.
func (s *Store) Selected() *model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return nil
	}
	cat, _ := s.doc.FindCategory(s.selected)
	if cat == nil {
		return nil
	}
	return copyCategory(cat)
}

// SelectCategory moves the cursor. Unknown ids leave it untouched.
func (s *Store) SelectCategory(id string) bool {
	s.mu.Lock()
	cat, _ := s.doc.FindCategory(id)
	if cat == nil {
		s.mu.Unlock()
		return false
	}
	s.selected = id
	s.mu.Unlock()

	s.dispatch(notice{changes: []Change{ChangeSelection}})
	return true
}

// ClearSelection resets the cursor to none.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	changed := s.selected != ""
	s.selected = ""
	s.mu.Unlock()
	if changed {
		s.dispatch(notice{changes: []Change{ChangeSelection}})
	}
}

// save persists the document. Callers hold s.mu.
func (s *Store) save(ctx context.Context) error {
	if err := s.gateway.Save(ctx, s.doc); err != nil {
		s.log.WithError(err).Error("save document")
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *Store) dispatch(n notice) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextSub; i++ {
		if l, ok := s.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		for _, up := range n.levelUps {
			l.LevelUp(up.name, up.level)
		}
		for _, change := range n.changes {
			l.Render(change)
		}
	}
}

func copyCategory(cat *model.Category) *model.Category {
	doc := &model.Document{Categories: []model.Category{*cat}}
	return &doc.Clone().Categories[0]
}
