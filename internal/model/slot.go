package model

import "time"

// Slot is a single key-value row holding a serialized document.
type Slot struct {
	Name      string `gorm:"primaryKey"`
	Blob      string
	UpdatedAt time.Time
}
