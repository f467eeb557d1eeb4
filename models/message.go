package models

import "time"

// Role is the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation.
// IsLoading marks a placeholder assistant turn awaiting a response;
// IsError marks a turn that represents a translated failure rather than
// a genuine model reply. Neither flag crosses the wire.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	IsLoading bool      `json:"-"`
	IsError   bool      `json:"-"`
}

// Turn is the wire form of a message: only role and content are submitted
// to the relay and forwarded upstream.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToTurns projects messages onto their wire form, preserving order.
func ToTurns(msgs []Message) []Turn {
	turns := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}
