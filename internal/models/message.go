package models

import "time"

// MaxMessageLength is the maximum chat message length in characters.
const MaxMessageLength = 1000

// ChatMessage is a message posted to an event chat.
type ChatMessage struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
