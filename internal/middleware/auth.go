package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/hackmentor/hackmentor/internal/auth"
	"github.com/hackmentor/hackmentor/pkg/utils"
)

// bearerToken extracts the credential from an Authorization header, or "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// OptionalAuth attaches a Caller to the request context. A missing or
// invalid token downgrades the request to guest instead of rejecting it.
func OptionalAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := auth.Guest()
			if token := bearerToken(r); token != "" {
				userID, err := tokens.Verify(token)
				if err != nil {
					log.Printf("[auth] ignoring invalid token: %v", err)
				} else {
					caller = auth.Authenticated(userID)
				}
			}
			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), caller)))
		})
	}
}

// RequireAuth rejects requests without a valid token.
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			userID, err := tokens.Verify(token)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := auth.WithCaller(r.Context(), auth.Authenticated(userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
