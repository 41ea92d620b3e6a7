package model

import "time"

// Chat stores Telegram chats that talked to the bot so scheduled messages
// know where to go.
type Chat struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
