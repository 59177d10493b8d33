// Package chat owns session lifecycle and turn persistence on top of the
// store interfaces.
package chat

import (
	"context"
	"errors"
	"fmt"

	model "github.com/hackmentor/hackmentor/internal/model/chat"
	"github.com/hackmentor/hackmentor/internal/store"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotOwner        = errors.New("session does not belong to caller")
)

const defaultTitle = "New chat"

// Service encapsulates conversation state management for authenticated users.
type Service struct {
	sessions store.SessionStore
	messages store.MessageStore
}

// NewService wires the service to its persistence.
func NewService(sessions store.SessionStore, messages store.MessageStore) *Service {
	return &Service{sessions: sessions, messages: messages}
}

// CreateSession provisions an empty session for the user. The title stays
// a placeholder until the first turn lands.
func (s *Service) CreateSession(ctx context.Context, userID string) (model.Session, error) {
	return s.sessions.CreateSession(ctx, userID, defaultTitle)
}

// ListSessions returns the user's sessions most-recently-updated first.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]model.Session, error) {
	return s.sessions.ListSessions(ctx, userID)
}

// DeleteSession removes an owned session and all its messages.
func (s *Service) DeleteSession(ctx context.Context, sessionID, userID string) error {
	if _, err := s.ownedSession(ctx, sessionID, userID); err != nil {
		return err
	}
	return s.sessions.DeleteSession(ctx, sessionID)
}

// Transcript returns an owned session's messages in creation order.
func (s *Service) Transcript(ctx context.Context, sessionID, userID string) ([]model.Message, error) {
	if _, err := s.ownedSession(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.messages.ListMessages(ctx, sessionID)
}

// RecordUserTurn persists the prompt as a user message. The first turn in a
// session also sets the title from the prompt; every turn bumps the
// session's update timestamp.
func (s *Service) RecordUserTurn(ctx context.Context, sessionID, userID, prompt string) error {
	if _, err := s.ownedSession(ctx, sessionID, userID); err != nil {
		return err
	}

	count, err := s.messages.CountMessages(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("count messages: %w", err)
	}

	if _, err := s.messages.AppendMessage(ctx, sessionID, model.RoleUser, prompt); err != nil {
		return fmt.Errorf("append user message: %w", err)
	}

	title := ""
	if count == 0 {
		title = model.TruncateTitle(prompt)
	}
	return s.sessions.TouchSession(ctx, sessionID, title)
}

// RecordAssistantTurn persists the raw model output as an assistant message.
// Raw, not sanitized: the store keeps the full record and display layers
// sanitize on the way out.
func (s *Service) RecordAssistantTurn(ctx context.Context, sessionID, content string) error {
	if _, err := s.messages.AppendMessage(ctx, sessionID, model.RoleAssistant, content); err != nil {
		return fmt.Errorf("append assistant message: %w", err)
	}
	return s.sessions.TouchSession(ctx, sessionID, "")
}

func (s *Service) ownedSession(ctx context.Context, sessionID, userID string) (model.Session, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return model.Session{}, ErrSessionNotFound
		}
		return model.Session{}, err
	}
	if session.UserID != userID {
		return model.Session{}, ErrNotOwner
	}
	return session, nil
}
