package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hackmentor/hackmentor/internal/model/chat"
)

// fakeBackend mimics the API surface the conversation manager touches.
type fakeBackend struct {
	mux          *http.ServeMux
	sessions     []chat.Session
	sendCalls    atomic.Int64
	lastSession  atomic.Value // string: sessionId of the last /send
	createdCount atomic.Int64
}

func newFakeBackend(t *testing.T, reply []string) (*fakeBackend, *Client) {
	t.Helper()

	b := &fakeBackend{mux: http.NewServeMux()}
	b.lastSession.Store("")

	b.mux.HandleFunc("GET /sessions", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(b.sessions)
	})
	b.mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, _ *http.Request) {
		b.createdCount.Add(1)
		session := chat.Session{ID: fmt.Sprintf("s-%d", b.createdCount.Load()), Title: "New chat"}
		b.sessions = append([]chat.Session{session}, b.sessions...)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(session)
	})
	b.mux.HandleFunc("GET /sessions/{id}/messages", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]chat.Message{
			{ID: "m1", Role: chat.RoleUser, Content: "old prompt"},
			{ID: "m2", Role: chat.RoleAssistant, Content: "old reply"},
		})
	})
	b.mux.HandleFunc("POST /send", func(w http.ResponseWriter, r *http.Request) {
		b.sendCalls.Add(1)
		var payload struct {
			SessionID string `json:"sessionId"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		b.lastSession.Store(payload.SessionID)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, frag := range reply {
			writeFrame(w, fmt.Sprintf(`{"content":%q}`, frag))
		}
		writeFrame(w, "[DONE]")
	})

	srv := httptest.NewServer(b.mux)
	t.Cleanup(srv.Close)
	return b, New(srv.URL)
}

func TestGuestSendIsEphemeral(t *testing.T) {
	backend, api := newFakeBackend(t, []string{"hi ", "there"})
	conv := NewConversation(api)

	state, err := conv.Send(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if state != StateCompleted {
		t.Fatalf("expected completed, got %s", state)
	}

	if got := backend.createdCount.Load(); got != 0 {
		t.Fatalf("guest send must not create sessions, created %d", got)
	}
	if got := backend.lastSession.Load().(string); got != "" {
		t.Fatalf("guest send must carry no session id, got %q", got)
	}

	messages := conv.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected user + assistant message, got %d", len(messages))
	}
	if messages[0].Role != chat.RoleUser || messages[0].Content != "hello" {
		t.Fatalf("unexpected user message: %+v", messages[0])
	}
	if messages[1].Role != chat.RoleAssistant || messages[1].Content != "hi there" {
		t.Fatalf("unexpected assistant message: %+v", messages[1])
	}
}

func TestAuthenticatedSendCreatesSessionFirst(t *testing.T) {
	backend, api := newFakeBackend(t, []string{"ok"})
	conv := NewConversation(api)

	if err := conv.SetAuthenticated(context.Background(), true); err != nil {
		t.Fatalf("SetAuthenticated err: %v", err)
	}

	if _, err := conv.Send(context.Background(), "first prompt", nil); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	if got := backend.createdCount.Load(); got != 1 {
		t.Fatalf("expected one auto-created session, got %d", got)
	}
	if got := backend.lastSession.Load().(string); got != "s-1" {
		t.Fatalf("send must target the new session, got %q", got)
	}
	if conv.ActiveSession() != "s-1" {
		t.Fatalf("active session not set: %q", conv.ActiveSession())
	}

	sessions := conv.Sessions()
	if len(sessions) != 1 || sessions[0].Title != "first prompt" {
		t.Fatalf("session title not updated locally: %+v", sessions)
	}
}

func TestSignOutClearsState(t *testing.T) {
	_, api := newFakeBackend(t, []string{"ok"})
	conv := NewConversation(api)

	ctx := context.Background()
	_ = conv.SetAuthenticated(ctx, true)
	if _, err := conv.Send(ctx, "hello", nil); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	if err := conv.SetAuthenticated(ctx, false); err != nil {
		t.Fatalf("SetAuthenticated err: %v", err)
	}
	if len(conv.Messages()) != 0 || len(conv.Sessions()) != 0 || conv.ActiveSession() != "" {
		t.Fatal("sign-out must clear all local state")
	}
}

func TestSelectSessionReplacesMessages(t *testing.T) {
	_, api := newFakeBackend(t, nil)
	conv := NewConversation(api)

	if err := conv.SelectSession(context.Background(), "s-9"); err != nil {
		t.Fatalf("SelectSession err: %v", err)
	}

	messages := conv.Messages()
	if len(messages) != 2 || messages[0].Content != "old prompt" {
		t.Fatalf("transcript not loaded: %+v", messages)
	}
	if conv.ActiveSession() != "s-9" {
		t.Fatalf("active session not switched: %q", conv.ActiveSession())
	}
}

func TestSendRejectedWhileStreaming(t *testing.T) {
	_, api := newFakeBackend(t, []string{"x"})
	conv := NewConversation(api)

	// Simulate an in-flight stream.
	conv.mu.Lock()
	conv.streamState = StateStreaming
	conv.mu.Unlock()

	if _, err := conv.Send(context.Background(), "hello", nil); err != ErrStreamInFlight {
		t.Fatalf("expected ErrStreamInFlight, got %v", err)
	}
}
