package models

import "time"

// Client is a person who submitted at least one application. Keyed by
// Telegram user id when the Mini App supplied one, otherwise by phone.
type Client struct {
	ID             int64     `json:"id"`
	TelegramUserID int64     `json:"telegram_user_id,omitempty"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
