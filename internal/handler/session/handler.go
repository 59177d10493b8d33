// Package session exposes CRUD for a user's saved conversations.
package session

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackmentor/hackmentor/internal/auth"
	"github.com/hackmentor/hackmentor/internal/model/chat"
	"github.com/hackmentor/hackmentor/internal/service/ai"
	chatService "github.com/hackmentor/hackmentor/internal/service/chat"
	"github.com/hackmentor/hackmentor/pkg/utils"
)

// Handler serves /sessions routes. All of them require authentication.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the session handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the session CRUD surface.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions", h.handleList)
	r.Post("/sessions", h.handleCreate)
	r.Delete("/sessions/{sessionID}", h.handleDelete)
	r.Get("/sessions/{sessionID}/messages", h.handleMessages)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CallerFromContext(r.Context()).UserID()

	sessions, err := h.chatSvc.ListSessions(r.Context(), userID)
	if err != nil {
		log.Printf("[session] list failed user=%s: %v", userID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CallerFromContext(r.Context()).UserID()

	session, err := h.chatSvc.CreateSession(r.Context(), userID)
	if err != nil {
		log.Printf("[session] create failed user=%s: %v", userID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CallerFromContext(r.Context()).UserID()
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatSvc.DeleteSession(r.Context(), sessionID, userID); err != nil {
		respondServiceError(w, userID, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CallerFromContext(r.Context()).UserID()
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.Transcript(r.Context(), sessionID, userID)
	if err != nil {
		respondServiceError(w, userID, err)
		return
	}

	// Assistant turns are stored raw; history readers get the same
	// sanitized view the live stream delivered.
	for i := range messages {
		if messages[i].Role == chat.RoleAssistant {
			messages[i].Content = ai.Sanitize(messages[i].Content)
		}
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

func respondServiceError(w http.ResponseWriter, userID string, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound), errors.Is(err, chatService.ErrNotOwner):
		// Foreign sessions look like missing ones.
		utils.RespondError(w, http.StatusNotFound, "session not found")
	default:
		log.Printf("[session] request failed user=%s: %v", userID, err)
		utils.RespondError(w, http.StatusInternalServerError, "request failed")
	}
}
