package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	authmodel "github.com/hackmentor/hackmentor/internal/auth"
	authHandler "github.com/hackmentor/hackmentor/internal/handler/auth"
	"github.com/hackmentor/hackmentor/internal/handler/relay"
	sessionHandler "github.com/hackmentor/hackmentor/internal/handler/session"
	middlewarePkg "github.com/hackmentor/hackmentor/internal/middleware"
	chatService "github.com/hackmentor/hackmentor/internal/service/chat"
	"github.com/hackmentor/hackmentor/internal/store"
	"github.com/hackmentor/hackmentor/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(st store.Store, chatSvc *chatService.Service, tokens *authmodel.TokenManager, relayHandler *relay.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(ar chi.Router) {
		authHandler.New(st, tokens).RegisterRoutes(ar)
	})

	// Session CRUD is for signed-in users only.
	r.Group(func(sr chi.Router) {
		sr.Use(middlewarePkg.RequireAuth(tokens))
		sessionHandler.New(chatSvc).RegisterRoutes(sr)
	})

	// The relay accepts guests; a valid token upgrades the turn to a
	// persisted one when a session id is supplied.
	r.Group(func(gr chi.Router) {
		gr.Use(middlewarePkg.OptionalAuth(tokens))
		relayHandler.RegisterRoutes(gr)
	})

	return r
}
