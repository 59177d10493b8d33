// Package client is the Go front end for the relay API: a thin HTTP
// client, an SSE stream consumer, and the conversation state it feeds.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/hackmentor/hackmentor/internal/model/chat"
	"github.com/hackmentor/hackmentor/internal/model/user"
)

// TokenHolder keeps the bearer credential with an explicit lifecycle:
// populated on sign-in, cleared on sign-out. Nothing else reads or writes
// the token.
type TokenHolder struct {
	mu    sync.RWMutex
	token string
}

func (t *TokenHolder) Set(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

func (t *TokenHolder) Clear() {
	t.Set("")
}

func (t *TokenHolder) Get() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// Present reports whether a credential is held.
func (t *TokenHolder) Present() bool {
	return t.Get() != ""
}

// Client talks to the backend API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *TokenHolder
}

// New creates a client against baseURL (no trailing slash).
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		tokens:  &TokenHolder{},
	}
}

// Tokens exposes the credential holder.
func (c *Client) Tokens() *TokenHolder {
	return c.tokens
}

// Credentials is what /auth endpoints return.
type Credentials struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// SignUp registers an account and stores the returned token.
func (c *Client) SignUp(ctx context.Context, username, email, password string) (user.User, error) {
	return c.authenticate(ctx, "/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

// SignIn exchanges credentials for a token and stores it.
func (c *Client) SignIn(ctx context.Context, email, password string) (user.User, error) {
	return c.authenticate(ctx, "/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignOut drops the stored credential.
func (c *Client) SignOut() {
	c.tokens.Clear()
}

func (c *Client) authenticate(ctx context.Context, path string, payload map[string]string) (user.User, error) {
	var creds Credentials
	if err := c.doJSON(ctx, http.MethodPost, path, payload, &creds); err != nil {
		return user.User{}, err
	}
	c.tokens.Set(creds.Token)
	return creds.User, nil
}

// ListSessions fetches the caller's sessions, most recent first.
func (c *Client) ListSessions(ctx context.Context) ([]chat.Session, error) {
	var sessions []chat.Session
	if err := c.doJSON(ctx, http.MethodGet, "/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession provisions a new server-side session.
func (c *Client) CreateSession(ctx context.Context) (chat.Session, error) {
	var session chat.Session
	if err := c.doJSON(ctx, http.MethodPost, "/sessions", nil, &session); err != nil {
		return chat.Session{}, err
	}
	return session, nil
}

// DeleteSession removes a session and its messages.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/sessions/"+id, nil, nil)
}

// ListMessages fetches a session's transcript in creation order.
func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	var messages []chat.Message
	if err := c.doJSON(ctx, http.MethodGet, "/sessions/"+sessionID+"/messages", nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) applyAuth(req *http.Request) {
	if token := c.tokens.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return errors.New(payload.Error)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
