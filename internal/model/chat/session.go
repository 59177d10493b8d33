package chat

import "time"

// TitleLimit bounds a session title derived from the first prompt.
const TitleLimit = 60

// Session is a persisted, titled conversation thread owned by one user.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TruncateTitle shortens a prompt to the title limit on a code-point boundary.
func TruncateTitle(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= TitleLimit {
		return prompt
	}
	return string(runes[:TitleLimit])
}
