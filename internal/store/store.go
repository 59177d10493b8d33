// Package store defines how the core services reach relational persistence.
package store

import (
	"context"
	"errors"

	"github.com/hackmentor/hackmentor/internal/model/chat"
	"github.com/hackmentor/hackmentor/internal/model/user"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUserNotFound    = errors.New("user not found")
)

// SessionStore persists conversation threads.
type SessionStore interface {
	CreateSession(ctx context.Context, userID, title string) (chat.Session, error)
	GetSession(ctx context.Context, id string) (chat.Session, error)
	// ListSessions returns the user's sessions most-recently-updated first.
	ListSessions(ctx context.Context, userID string) ([]chat.Session, error)
	// DeleteSession removes a session and cascades to its messages.
	DeleteSession(ctx context.Context, id string) error
	// TouchSession records an update timestamp; a non-empty title replaces
	// the current one.
	TouchSession(ctx context.Context, id, title string) error
}

// MessageStore persists individual turns.
type MessageStore interface {
	AppendMessage(ctx context.Context, sessionID, role, content string) (chat.Message, error)
	// ListMessages returns a session's messages in creation order.
	ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error)
	CountMessages(ctx context.Context, sessionID string) (int, error)
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	FindUserByEmail(ctx context.Context, email string) (user.User, error)
	FindUserByUsername(ctx context.Context, username string) (user.User, error)
}

// Store is the full persistence surface the server wires at startup.
type Store interface {
	SessionStore
	MessageStore
	UserStore
}
