// Package memory is the in-process store used by tests and by deployments
// that run without a database file.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackmentor/hackmentor/internal/model/chat"
	"github.com/hackmentor/hackmentor/internal/model/user"
	"github.com/hackmentor/hackmentor/internal/store"
)

// Store implements store.Store with mutex-guarded maps.
type Store struct {
	mu       sync.RWMutex
	users    map[string]user.User
	sessions map[string]chat.Session
	messages map[string][]chat.Message
	seq      int64
}

// NewStore bootstraps an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]user.User),
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
	}
}

// now returns strictly increasing timestamps so ordering stays stable even
// when turns land within one clock tick.
func (s *Store) now() time.Time {
	s.seq++
	return time.Now().UTC().Add(time.Duration(s.seq) * time.Nanosecond)
}

func (s *Store) CreateSession(_ context.Context, userID, title string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session := chat.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[session.ID] = session
	s.messages[session.ID] = make([]chat.Message, 0, 16)
	return session, nil
}

func (s *Store) GetSession(_ context.Context, id string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return chat.Session{}, store.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) ListSessions(_ context.Context, userID string) ([]chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]chat.Session, 0, 8)
	for _, session := range s.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return store.ErrSessionNotFound
	}
	delete(s.sessions, id)
	delete(s.messages, id)
	return nil
}

func (s *Store) TouchSession(_ context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return store.ErrSessionNotFound
	}
	if title != "" {
		session.Title = title
	}
	session.UpdatedAt = s.now()
	s.sessions[id] = session
	return nil
}

func (s *Store) AppendMessage(_ context.Context, sessionID, role, content string) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return chat.Message{}, store.ErrSessionNotFound
	}

	message := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	}
	s.messages[sessionID] = append(s.messages[sessionID], message)
	return message, nil
}

func (s *Store) ListMessages(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

func (s *Store) CountMessages(_ context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return 0, store.ErrSessionNotFound
	}
	return len(messages), nil
}

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, store.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, store.ErrUserNotFound
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, store.ErrUserNotFound
}
