package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hackmentor/hackmentor/internal/model/chat"
	"github.com/hackmentor/hackmentor/internal/model/user"
	"github.com/hackmentor/hackmentor/internal/store"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, user.User{
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("CreateUser err: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	byEmail, err := s.FindUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail err: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("lookup mismatch: %s vs %s", byEmail.ID, created.ID)
	}

	if _, err := s.FindUserByUsername(ctx, "nobody"); err != store.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDuplicateUserRejected(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, user.User{Username: "ada", Email: "ada@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("CreateUser err: %v", err)
	}
	if _, err := s.CreateUser(ctx, user.User{Username: "ada", Email: "other@example.com", PasswordHash: "h"}); err == nil {
		t.Fatal("expected unique constraint violation on username")
	}
}

func TestSessionOrderingByUpdate(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, user.User{Username: "ada", Email: "a@example.com", PasswordHash: "h"})

	first, err := s.CreateSession(ctx, u.ID, "first")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	second, err := s.CreateSession(ctx, u.ID, "second")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	// Touching the older session moves it to the front.
	if err := s.TouchSession(ctx, first.ID, ""); err != nil {
		t.Fatalf("TouchSession err: %v", err)
	}

	sessions, err := s.ListSessions(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListSessions err: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != first.ID || sessions[1].ID != second.ID {
		t.Fatalf("unexpected order: %s, %s", sessions[0].ID, sessions[1].ID)
	}
}

func TestTouchSessionTitle(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, user.User{Username: "ada", Email: "a@example.com", PasswordHash: "h"})
	session, _ := s.CreateSession(ctx, u.ID, "New chat")

	if err := s.TouchSession(ctx, session.ID, "explain big O"); err != nil {
		t.Fatalf("TouchSession err: %v", err)
	}

	got, err := s.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if got.Title != "explain big O" {
		t.Fatalf("title not updated: %q", got.Title)
	}

	if err := s.TouchSession(ctx, "missing", ""); err != store.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMessagesOrderedAndCounted(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, user.User{Username: "ada", Email: "a@example.com", PasswordHash: "h"})
	session, _ := s.CreateSession(ctx, u.ID, "t")

	if _, err := s.AppendMessage(ctx, session.ID, chat.RoleUser, "q"); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}
	if _, err := s.AppendMessage(ctx, session.ID, chat.RoleAssistant, "a"); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}

	messages, err := s.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != chat.RoleUser || messages[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected order: %s, %s", messages[0].Role, messages[1].Role)
	}

	count, err := s.CountMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("CountMessages err: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}

func TestDeleteSessionCascades(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, user.User{Username: "ada", Email: "a@example.com", PasswordHash: "h"})
	session, _ := s.CreateSession(ctx, u.ID, "t")
	_, _ = s.AppendMessage(ctx, session.ID, chat.RoleUser, "q")

	if err := s.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("DeleteSession err: %v", err)
	}

	if _, err := s.GetSession(ctx, session.ID); err != store.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	messages, err := s.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("messages survived the cascade: %d", len(messages))
	}

	if err := s.DeleteSession(ctx, session.ID); err != store.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}
