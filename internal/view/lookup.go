package view

import (
	"strconv"
	"strings"

	"taskquest/internal/model"
)

// FindCategory resolves ref as a 1-based position or a category id.
func FindCategory(doc *model.Document, ref string) *model.Category {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(doc.Categories) {
			return &doc.Categories[n-1]
		}
		return nil
	}
	cat, _ := doc.FindCategory(ref)
	return cat
}

// FindTask resolves ref as a 1-based position or a task id inside cat.
func FindTask(cat *model.Category, ref string) *model.Task {
	if cat == nil {
		return nil
	}
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(cat.Tasks) {
			return &cat.Tasks[n-1]
		}
		return nil
	}
	return cat.FindTask(ref)
}
