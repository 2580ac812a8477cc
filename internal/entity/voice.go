package entity

import (
	"time"
)

// CommandKeyword is one stored keyword extending the built-in command
// vocabulary. An empty Route targets the global table.
type CommandKeyword struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Route     string    `json:"route"`
	Locale    string    `json:"locale"`
	Keyword   string    `json:"keyword"`
	Position  int       `json:"position"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoiceSession struct {
	ID         string     `json:"id"`
	DeviceID   string     `json:"device_id"`
	UserID     string     `json:"user_id"`
	Locale     string     `json:"locale"`
	Route      string     `json:"route"`
	Utterances int        `json:"utterances"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}
