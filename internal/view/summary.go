package view

import "taskquest/internal/model"

// PendingDaily is a daily task that still needs doing today.
type PendingDaily struct {
	Category string
	Text     string
}

// Summary is the daily digest pushed by the scheduler or asked for on demand.
type Summary struct {
	Today        model.CalendarDate
	PendingDaily []PendingDaily
	DoneToday    int
	OpenTasks    int
	Categories   []CategoryRow
}

// DailySummary collects what is left for today and where every category stands.
func DailySummary(doc *model.Document, today model.CalendarDate) Summary {
	s := Summary{Today: today}
	for i, cat := range doc.Categories {
		s.Categories = append(s.Categories, categoryRow(i+1, cat))
		for _, task := range cat.Tasks {
			switch {
			case task.Done && task.CompletedOn(today):
				s.DoneToday++
			case !task.Done && task.Daily:
				s.PendingDaily = append(s.PendingDaily, PendingDaily{Category: cat.Name, Text: task.Text})
			}
			if !task.Done {
				s.OpenTasks++
			}
		}
	}
	return s
}
