// Package relay executes one chat turn over a long-lived SSE response:
// validate, optionally persist, call the model once, sanitize, and replay
// the answer as paced content deltas.
package relay

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hackmentor/hackmentor/internal/auth"
	"github.com/hackmentor/hackmentor/internal/service/ai"
	chatService "github.com/hackmentor/hackmentor/internal/service/chat"
	"github.com/hackmentor/hackmentor/pkg/utils"
)

// Defaults simulate token-by-token delivery of an already-complete response.
const (
	DefaultChunkSize  = 3
	DefaultChunkDelay = 15 * time.Millisecond
)

// genericFailure is the only error text that ever crosses the stream
// boundary; details stay in the server log.
const genericFailure = "Failed to get response from AI"

// ModelClient is the single-shot upstream contract.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Handler serves POST /send.
type Handler struct {
	model      ModelClient
	chatSvc    *chatService.Service
	chunkSize  int
	chunkDelay time.Duration
}

// New creates the relay handler. Zero chunk settings fall back to defaults.
func New(model ModelClient, chatSvc *chatService.Service, chunkSize int, chunkDelay time.Duration) *Handler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkDelay <= 0 {
		chunkDelay = DefaultChunkDelay
	}
	return &Handler{
		model:      model,
		chatSvc:    chatSvc,
		chunkSize:  chunkSize,
		chunkDelay: chunkDelay,
	}
}

// RegisterRoutes mounts the relay endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/send", h.handleSend)
}

type sendRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"sessionId"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload sendRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Prompt) == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if h.model == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai backend unavailable")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// The stream opens before any upstream work; everything after this
	// point reports failure in-stream.
	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()

	// Persistence is gated on identity AND session id; either one absent
	// means a fully ephemeral turn.
	userID, authenticated := auth.CallerFromContext(ctx).UserID()
	persist := authenticated && payload.SessionID != ""

	if persist {
		if err := h.chatSvc.RecordUserTurn(ctx, payload.SessionID, userID, payload.Prompt); err != nil {
			log.Printf("[relay] failed to record user turn session=%s: %v", payload.SessionID, err)
			h.sendError(w, flusher)
			return
		}
	}

	raw, err := h.model.Complete(ctx, payload.Prompt)
	if err != nil {
		log.Printf("[relay] upstream completion failed: %v", err)
		h.sendError(w, flusher)
		return
	}

	clean := ai.Sanitize(raw)

	if persist {
		// The raw response is the stored record; clients see the
		// sanitized view.
		if err := h.chatSvc.RecordAssistantTurn(ctx, payload.SessionID, raw); err != nil {
			log.Printf("[relay] failed to record assistant turn session=%s: %v", payload.SessionID, err)
			h.sendError(w, flusher)
			return
		}
	}

	for _, fragment := range ChunkRunes(clean, h.chunkSize) {
		utils.SendSSEChunk(w, flusher, map[string]string{"content": fragment})

		select {
		case <-ctx.Done():
			// Client went away; emitted fragments stand.
			log.Printf("[relay] client disconnected mid-stream")
			return
		case <-time.After(h.chunkDelay):
		}
	}

	utils.SendSSEDone(w, flusher)
}

func (h *Handler) sendError(w http.ResponseWriter, flusher http.Flusher) {
	utils.SendSSEChunk(w, flusher, map[string]string{"error": genericFailure})
}
