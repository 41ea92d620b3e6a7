package model

import "time"

// DateLayout is the on-disk format of a CalendarDate.
const DateLayout = "2006-01-02"

// CalendarDate is a date-only value. Two dates are the same day iff their
// strings are equal; no time zone is attached.
type CalendarDate string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate(t.Format(DateLayout))
}

// NewDate returns a pointer to a copy of d, for optional fields.
func NewDate(d CalendarDate) *CalendarDate {
	return &d
}

func (d CalendarDate) String() string {
	return string(d)
}
