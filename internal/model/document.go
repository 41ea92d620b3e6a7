package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDocument is returned when a document breaks one of its invariants.
var ErrInvalidDocument = errors.New("invalid document")

// Document is the root of everything the tracker persists. Category order is
// display order.
type Document struct {
	Categories []Category `json:"categories"`
}

// New returns an empty document.
func New() *Document {
	return &Document{Categories: []Category{}}
}

// FindCategory returns the category with the given id and its position, or
// nil and -1.
func (d *Document) FindCategory(id string) (*Category, int) {
	for i := range d.Categories {
		if d.Categories[i].ID == id {
			return &d.Categories[i], i
		}
	}
	return nil, -1
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	out := &Document{Categories: make([]Category, 0, len(d.Categories))}
	for _, cat := range d.Categories {
		out.Categories = append(out.Categories, cat.clone())
	}
	return out
}

// Validate reports the first broken invariant, wrapped in ErrInvalidDocument.
func (d *Document) Validate() error {
	seen := make(map[string]bool)
	for i, cat := range d.Categories {
		switch {
		case strings.TrimSpace(cat.ID) == "":
			return fmt.Errorf("%w: category %d has no id", ErrInvalidDocument, i)
		case seen[cat.ID]:
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidDocument, cat.ID)
		case strings.TrimSpace(cat.Name) == "":
			return fmt.Errorf("%w: category %q has a blank name", ErrInvalidDocument, cat.ID)
		case cat.XP < 0:
			return fmt.Errorf("%w: category %q has negative xp %d", ErrInvalidDocument, cat.ID, cat.XP)
		case cat.Level < 1:
			return fmt.Errorf("%w: category %q has level %d below 1", ErrInvalidDocument, cat.ID, cat.Level)
		case len(cat.ColorOrder) == 0:
			return fmt.Errorf("%w: category %q has no colors", ErrInvalidDocument, cat.ID)
		case !isPalettePermutation(cat.ColorOrder):
			return fmt.Errorf("%w: category %q color order is not a palette permutation", ErrInvalidDocument, cat.ID)
		case cat.ColorIndex < 0 || cat.ColorIndex >= len(cat.ColorOrder):
			return fmt.Errorf("%w: category %q color index %d out of range", ErrInvalidDocument, cat.ID, cat.ColorIndex)
		}
		seen[cat.ID] = true

		for _, task := range cat.Tasks {
			switch {
			case strings.TrimSpace(task.ID) == "":
				return fmt.Errorf("%w: task without id in category %q", ErrInvalidDocument, cat.ID)
			case seen[task.ID]:
				return fmt.Errorf("%w: duplicate id %q", ErrInvalidDocument, task.ID)
			case strings.TrimSpace(task.Text) == "":
				return fmt.Errorf("%w: task %q has blank text", ErrInvalidDocument, task.ID)
			case !IsPaletteColor(task.Color):
				return fmt.Errorf("%w: task %q color %q is not in the palette", ErrInvalidDocument, task.ID, task.Color)
			}
			seen[task.ID] = true
		}
	}
	return nil
}

// normalize replaces null collections with empty ones so decoded documents
// compare equal to freshly built ones.
func (d *Document) normalize() {
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	for i := range d.Categories {
		if d.Categories[i].Tasks == nil {
			d.Categories[i].Tasks = []Task{}
		}
	}
}
