package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sseServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func writeFrame(w http.ResponseWriter, data string) {
	fmt.Fprintf(w, "data: %s\n\n", data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func TestStreamReassemblesContent(t *testing.T) {
	c := sseServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, frag := range []string{"he", "ll", "o"} {
			writeFrame(w, fmt.Sprintf(`{"content":%q}`, frag))
		}
		writeFrame(w, "[DONE]")
	})

	var got string
	state, err := c.Stream(context.Background(), "hi", "", func(delta string) {
		got += delta
	})
	if err != nil {
		t.Fatalf("Stream err: %v", err)
	}
	if state != StateCompleted {
		t.Fatalf("expected completed, got %s", state)
	}
	if got != "hello" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestStreamSkipsMalformedFrames(t *testing.T) {
	c := sseServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeFrame(w, `{"content":"foo"}`)
		writeFrame(w, `{not json at all`)
		writeFrame(w, `{"content":"bar"}`)
		writeFrame(w, "[DONE]")
	})

	var got string
	state, err := c.Stream(context.Background(), "hi", "", func(delta string) {
		got += delta
	})
	if err != nil {
		t.Fatalf("Stream err: %v", err)
	}
	if state != StateCompleted {
		t.Fatalf("expected completed, got %s", state)
	}
	if got != "foobar" {
		t.Fatalf("malformed frame corrupted the content: %q", got)
	}
}

func TestStreamErrorFrame(t *testing.T) {
	c := sseServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeFrame(w, `{"content":"partial"}`)
		writeFrame(w, `{"error":"Failed to get response from AI"}`)
	})

	state, err := c.Stream(context.Background(), "hi", "", func(string) {})
	if state != StateErrored {
		t.Fatalf("expected errored, got %s", state)
	}
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestStreamCancellationMidStream(t *testing.T) {
	release := make(chan struct{})
	c := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeFrame(w, `{"content":"one"}`)
		writeFrame(w, `{"content":"two"}`)
		// Hold the stream open until the client aborts.
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got string
	deltas := 0
	state, err := c.Stream(ctx, "hi", "", func(delta string) {
		got += delta
		deltas++
		if deltas == 2 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("abort must not surface as an error, got %v", err)
	}
	if state != StateAborted {
		t.Fatalf("expected aborted, got %s", state)
	}
	if got != "onetwo" {
		t.Fatalf("partial content must be kept: %q", got)
	}
}

func TestStreamRejectedBeforeOpen(t *testing.T) {
	c := sseServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"prompt is required"}`)
	})

	state, err := c.Stream(context.Background(), "", "", func(string) {})
	if state != StateErrored {
		t.Fatalf("expected errored, got %s", state)
	}
	if err == nil || err.Error() != "prompt is required" {
		t.Fatalf("expected server error message, got %v", err)
	}
}

func TestStreamTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeFrame(w, `{"content":"x"}`)
	}))
	c := New(srv.URL)
	srv.Close() // connection refused from here on

	state, err := c.Stream(context.Background(), "hi", "", func(string) {})
	if state != StateErrored {
		t.Fatalf("expected errored, got %s", state)
	}
	if err == nil {
		t.Fatal("expected an error")
	}
}
