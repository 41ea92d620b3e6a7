// Package view derives display-ready values from the document. Nothing here
// mutates state; presentation layers format the results.
package view

import (
	"taskquest/internal/model"
	"taskquest/internal/progression"
)

// CategoryRow is one entry of the category list.
type CategoryRow struct {
	Position  int
	ID        string
	Name      string
	Level     int
	XP        int
	Threshold int
	Remaining int
	Percent   int
	Done      int
	Total     int
	Badges    []Badge
	Selected  bool
}

// TaskRow is one entry of the selected category's task list.
type TaskRow struct {
	Position       int
	ID             string
	Text           string
	Color          string
	Done           bool
	Daily          bool
	CompletedToday bool
}

// Board is everything a screen shows at once.
type Board struct {
	Today      model.CalendarDate
	Categories []CategoryRow
	// Selected is nil when no category is selected.
	Selected *CategoryRow
	Tasks    []TaskRow
}

// Project builds the board for doc with the given selection.
func Project(doc *model.Document, selectedID string, today model.CalendarDate) Board {
	board := Board{Today: today}
	for i, cat := range doc.Categories {
		row := categoryRow(i+1, cat)
		row.Selected = cat.ID == selectedID
		board.Categories = append(board.Categories, row)
		if row.Selected {
			selected := row
			board.Selected = &selected
			board.Tasks = taskRows(cat, today)
		}
	}
	return board
}

func categoryRow(position int, cat model.Category) CategoryRow {
	threshold := progression.ThresholdFor(cat.Level)
	return CategoryRow{
		Position:  position,
		ID:        cat.ID,
		Name:      cat.Name,
		Level:     cat.Level,
		XP:        cat.XP,
		Threshold: threshold,
		Remaining: progression.Remaining(cat),
		Percent:   percent(cat.XP, threshold),
		Done:      cat.DoneCount(),
		Total:     len(cat.Tasks),
		Badges:    UnlockedBadges(cat.Level),
	}
}

func taskRows(cat model.Category, today model.CalendarDate) []TaskRow {
	rows := make([]TaskRow, 0, len(cat.Tasks))
	for i, task := range cat.Tasks {
		rows = append(rows, TaskRow{
			Position:       i + 1,
			ID:             task.ID,
			Text:           task.Text,
			Color:          task.Color,
			Done:           task.Done,
			Daily:          task.Daily,
			CompletedToday: task.Done && task.CompletedOn(today),
		})
	}
	return rows
}

func percent(xp, threshold int) int {
	if threshold <= 0 {
		return 0
	}
	p := xp * 100 / threshold
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
