package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackmentor/hackmentor/internal/model/chat"
)

// ErrStreamInFlight rejects a send while another stream is active.
var ErrStreamInFlight = errors.New("a response is still streaming")

// failureText replaces the assistant message when a stream genuinely fails.
const failureText = "Something went wrong. Please try again."

// Conversation owns the visible session and message lists and routes
// streaming updates onto the in-flight assistant message. Safe for use from
// one UI loop plus the streaming goroutine.
type Conversation struct {
	api *Client

	mu            sync.Mutex
	authenticated bool
	sessions      []chat.Session
	messages      []chat.Message
	activeSession string
	streamState   StreamState
	streamTarget  string
	cancel        context.CancelFunc
}

// NewConversation wires the state manager to its API client.
func NewConversation(api *Client) *Conversation {
	return &Conversation{api: api, streamState: StateIdle}
}

// SetAuthenticated reacts to identity changes. Losing the identity clears
// all local state immediately; gaining one loads the saved sessions.
func (c *Conversation) SetAuthenticated(ctx context.Context, authenticated bool) error {
	c.mu.Lock()
	c.authenticated = authenticated
	c.sessions = nil
	c.messages = nil
	c.activeSession = ""
	c.mu.Unlock()

	if !authenticated {
		return nil
	}

	sessions, err := c.api.ListSessions(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.sessions = sessions
	c.mu.Unlock()
	return nil
}

// SelectSession makes a session active and replaces the message list with
// its transcript.
func (c *Conversation) SelectSession(ctx context.Context, id string) error {
	messages, err := c.api.ListMessages(ctx, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.activeSession = id
	c.messages = messages
	c.mu.Unlock()
	return nil
}

// NewChat starts a fresh conversation. Guests just clear the in-memory
// transcript; signed-in users get a server-side session.
func (c *Conversation) NewChat(ctx context.Context) error {
	c.mu.Lock()
	authenticated := c.authenticated
	c.mu.Unlock()

	if !authenticated {
		c.mu.Lock()
		c.activeSession = ""
		c.messages = nil
		c.mu.Unlock()
		return nil
	}

	session, err := c.api.CreateSession(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.sessions = append([]chat.Session{session}, c.sessions...)
	c.activeSession = session.ID
	c.messages = nil
	c.mu.Unlock()
	return nil
}

// DeleteSession removes a session server-side and locally.
func (c *Conversation) DeleteSession(ctx context.Context, id string) error {
	if err := c.api.DeleteSession(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.sessions[:0]
	for _, session := range c.sessions {
		if session.ID != id {
			kept = append(kept, session)
		}
	}
	c.sessions = kept
	if c.activeSession == id {
		c.activeSession = ""
		c.messages = nil
	}
	c.mu.Unlock()
	return nil
}

// Send executes one full turn: append the user message and an empty
// assistant placeholder, stream the response into the placeholder, and
// settle the terminal state. onUpdate fires after every visible change.
// Blocks until the stream ends; run it off the UI loop and use Stop to
// abort.
func (c *Conversation) Send(ctx context.Context, prompt string, onUpdate func()) (StreamState, error) {
	c.mu.Lock()
	if c.streamState == StateConnecting || c.streamState == StateStreaming {
		c.mu.Unlock()
		return StateIdle, ErrStreamInFlight
	}

	authenticated := c.authenticated
	sessionID := c.activeSession
	c.mu.Unlock()

	// Signed-in users with no active session get one created before the
	// turn so it can be persisted.
	if authenticated && sessionID == "" {
		if err := c.NewChat(ctx); err != nil {
			return StateIdle, err
		}
		c.mu.Lock()
		sessionID = c.activeSession
		c.mu.Unlock()
	}

	assistantID := uuid.NewString()
	now := time.Now()

	c.mu.Lock()
	c.messages = append(c.messages,
		chat.Message{ID: uuid.NewString(), Role: chat.RoleUser, Content: prompt, CreatedAt: now},
		chat.Message{ID: assistantID, Role: chat.RoleAssistant, Content: "", CreatedAt: now},
	)
	c.streamState = StateConnecting
	c.streamTarget = assistantID
	streamCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	notify(onUpdate)

	state, err := c.api.Stream(streamCtx, prompt, sessionID, func(delta string) {
		c.appendDelta(assistantID, delta)
		notify(onUpdate)
	})
	cancel()

	c.mu.Lock()
	c.streamState = state
	c.streamTarget = ""
	c.cancel = nil
	if state == StateErrored {
		// Aborts keep partial content; genuine failures replace it.
		c.replaceContent(assistantID, failureText)
	}
	if state == StateCompleted && authenticated && sessionID != "" {
		c.retitleLocally(sessionID, prompt)
	}
	c.mu.Unlock()

	notify(onUpdate)
	return state, err
}

// Stop aborts the in-flight stream, if any. The partial assistant content
// stays visible.
func (c *Conversation) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Streaming reports whether a turn is currently in flight.
func (c *Conversation) Streaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamState == StateConnecting || c.streamState == StateStreaming
}

// State returns the most recent stream state.
func (c *Conversation) State() StreamState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamState
}

// Messages returns a copy of the visible transcript.
func (c *Conversation) Messages() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chat.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Sessions returns a copy of the session list.
func (c *Conversation) Sessions() []chat.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chat.Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}

// ActiveSession returns the active session id, or "" for an ephemeral chat.
func (c *Conversation) ActiveSession() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeSession
}

// appendDelta grows the streaming target by one fragment. Updates key off
// the message id exclusively, so out-of-date deltas can never touch another
// message.
func (c *Conversation) appendDelta(id, delta string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streamTarget != id {
		return
	}
	c.streamState = StateStreaming
	for i := range c.messages {
		if c.messages[i].ID == id {
			c.messages[i].Content += delta
			return
		}
	}
}

// replaceContent overwrites a message's content. Caller holds the lock.
func (c *Conversation) replaceContent(id, content string) {
	for i := range c.messages {
		if c.messages[i].ID == id {
			c.messages[i].Content = content
			return
		}
	}
}

// retitleLocally mirrors the server's first-turn titling so the session
// list updates without a refetch. Caller holds the lock.
func (c *Conversation) retitleLocally(sessionID, prompt string) {
	for i := range c.sessions {
		if c.sessions[i].ID == sessionID {
			if c.sessions[i].Title == "" || c.sessions[i].Title == "New chat" {
				c.sessions[i].Title = chat.TruncateTitle(prompt)
			}
			c.sessions[i].UpdatedAt = time.Now()
			return
		}
	}
}

func notify(onUpdate func()) {
	if onUpdate != nil {
		onUpdate()
	}
}
