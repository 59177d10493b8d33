package chat

import "time"

// Message roles. The relay only ever writes these two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn inside a session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
