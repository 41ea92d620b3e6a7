package model

// Task is a single unit of work inside a category. Daily tasks are expected to
// be completed again every calendar day.
type Task struct {
	ID            string        `json:"id"`
	Text          string        `json:"text"`
	Done          bool          `json:"done"`
	Daily         bool          `json:"daily"`
	LastCompleted *CalendarDate `json:"lastCompleted"`
	Color         string        `json:"color"`
}

// CompletedOn reports whether the last recorded completion happened on day.
func (t Task) CompletedOn(day CalendarDate) bool {
	return t.LastCompleted != nil && *t.LastCompleted == day
}

func (t Task) clone() Task {
	if t.LastCompleted != nil {
		day := *t.LastCompleted
		t.LastCompleted = &day
	}
	return t
}
