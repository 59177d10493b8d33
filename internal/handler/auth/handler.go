// Package auth exposes account signup and signin.
package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	authpkg "github.com/hackmentor/hackmentor/internal/auth"
	"github.com/hackmentor/hackmentor/internal/model/user"
	"github.com/hackmentor/hackmentor/internal/store"
	"github.com/hackmentor/hackmentor/pkg/utils"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Handler serves /auth routes.
type Handler struct {
	users  store.UserStore
	tokens *authpkg.TokenManager
}

// New creates the auth handler.
func New(users store.UserStore, tokens *authpkg.TokenManager) *Handler {
	return &Handler{users: users, tokens: tokens}
}

// RegisterRoutes mounts signup and signin.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Post("/signin", h.handleSignin)
}

type credentialsResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username := strings.TrimSpace(payload.Username)
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	switch {
	case username == "" || email == "" || payload.Password == "":
		utils.RespondError(w, http.StatusBadRequest, "all fields are required")
		return
	case len(username) < 3:
		utils.RespondError(w, http.StatusBadRequest, "username must be at least 3 characters")
		return
	case !emailRe.MatchString(email):
		utils.RespondError(w, http.StatusBadRequest, "invalid email address")
		return
	case len(payload.Password) < 8:
		utils.RespondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	ctx := r.Context()
	if _, err := h.users.FindUserByEmail(ctx, email); err == nil {
		utils.RespondError(w, http.StatusConflict, "email is already taken")
		return
	} else if !errors.Is(err, store.ErrUserNotFound) {
		log.Printf("[auth] email lookup failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	if _, err := h.users.FindUserByUsername(ctx, username); err == nil {
		utils.RespondError(w, http.StatusConflict, "username is already taken")
		return
	} else if !errors.Is(err, store.ErrUserNotFound) {
		log.Printf("[auth] username lookup failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	hash, err := authpkg.HashPassword(payload.Password)
	if err != nil {
		log.Printf("[auth] password hash failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	created, err := h.users.CreateUser(ctx, user.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		log.Printf("[auth] create user failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	token, err := h.tokens.Issue(created.ID)
	if err != nil {
		log.Printf("[auth] token issue failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, credentialsResponse{Token: token, User: created})
}

func (h *Handler) handleSignin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || payload.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	// Identical response for unknown email and wrong password.
	account, err := h.users.FindUserByEmail(r.Context(), email)
	if err != nil || !authpkg.CheckPassword(account.PasswordHash, payload.Password) {
		if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			log.Printf("[auth] signin lookup failed: %v", err)
		}
		utils.RespondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.tokens.Issue(account.ID)
	if err != nil {
		log.Printf("[auth] token issue failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	utils.RespondJSON(w, http.StatusOK, credentialsResponse{Token: token, User: account})
}
