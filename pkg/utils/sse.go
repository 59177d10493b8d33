package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// DoneSentinel terminates every relay stream.
const DoneSentinel = "[DONE]"

// SetupSSEHeaders prepares a response for a text/event-stream body.
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// SendSSEChunk writes one data frame and flushes it.
func SendSSEChunk(w http.ResponseWriter, flusher http.Flusher, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal sse payload: %v", err)
		return
	}

	if _, err := w.Write([]byte("data: ")); err != nil {
		log.Printf("failed to write sse prefix: %v", err)
		return
	}
	if _, err := w.Write(data); err != nil {
		log.Printf("failed to write sse payload: %v", err)
		return
	}
	if _, err := w.Write([]byte("\n\n")); err != nil {
		log.Printf("failed to write sse terminator: %v", err)
		return
	}
	flusher.Flush()
}

// SendSSEDone writes the literal end-of-stream marker and flushes it.
func SendSSEDone(w http.ResponseWriter, flusher http.Flusher) {
	if _, err := w.Write([]byte("data: " + DoneSentinel + "\n\n")); err != nil {
		log.Printf("failed to write sse done marker: %v", err)
		return
	}
	flusher.Flush()
}
