package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// StreamState is the consumer's lifecycle.
type StreamState int

const (
	StateIdle StreamState = iota
	StateConnecting
	StateStreaming
	StateCompleted
	StateErrored
	StateAborted
)

func (s StreamState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

const (
	framePrefix  = "data: "
	doneSentinel = "[DONE]"
)

// ErrStreamFailed is the generic user-facing failure for a broken stream.
var ErrStreamFailed = errors.New("something went wrong, please try again")

// Stream sends a prompt to the relay and feeds every content delta to
// onDelta in arrival order. It blocks until the stream ends and returns the
// terminal state. Cancel ctx to abort: partial content already delivered
// through onDelta stands, and the result is StateAborted with a nil error.
func (c *Client) Stream(ctx context.Context, prompt, sessionID string, onDelta func(string)) (StreamState, error) {
	payload, err := json.Marshal(map[string]string{
		"prompt":    prompt,
		"sessionId": sessionID,
	})
	if err != nil {
		return StateErrored, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return StateErrored, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return StateAborted, nil
		}
		return StateErrored, ErrStreamFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return StateErrored, apiError(resp)
	}

	var carry []byte
	buf := make([]byte, 2048)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			var lines []string
			lines, carry = SplitLines(carry, buf[:n])
			for _, line := range lines {
				done, frameErr := consumeFrame(line, onDelta)
				if frameErr != nil {
					return StateErrored, frameErr
				}
				if done {
					return StateCompleted, nil
				}
			}
		}
		if readErr != nil {
			if ctx.Err() != nil {
				// User-initiated abort, not an error.
				return StateAborted, nil
			}
			if errors.Is(readErr, io.EOF) {
				return StateCompleted, nil
			}
			return StateErrored, ErrStreamFailed
		}
	}
}

// consumeFrame handles one line of the stream. Malformed payloads are
// skipped rather than fatal; only an explicit error field ends the stream
// with a failure.
func consumeFrame(line string, onDelta func(string)) (done bool, err error) {
	if !strings.HasPrefix(line, framePrefix) {
		return false, nil
	}
	data := strings.TrimPrefix(line, framePrefix)
	if data == doneSentinel {
		return true, nil
	}
	if !gjson.Valid(data) {
		return false, nil
	}

	parsed := gjson.Parse(data)
	if errField := parsed.Get("error"); errField.Exists() {
		return false, errors.New(errField.String())
	}
	if content := parsed.Get("content"); content.Exists() {
		onDelta(content.String())
	}
	return false, nil
}
