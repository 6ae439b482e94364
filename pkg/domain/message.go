package domain

import "time"

// Role tags a transcript entry with its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation transcript.
// Seq is assigned by the state when the message is appended and is strictly
// monotonic within a session.
type Message struct {
	ID      string    `json:"id"`
	Seq     int       `json:"seq"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}
