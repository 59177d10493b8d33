package auth

import "context"

// Caller is the request identity: either a guest or an authenticated user.
// Every persistence-gated step branches on UserID's second return rather
// than on token presence.
type Caller struct {
	userID string
}

// Guest is the anonymous caller.
func Guest() Caller {
	return Caller{}
}

// Authenticated wraps a verified user id.
func Authenticated(userID string) Caller {
	return Caller{userID: userID}
}

// UserID returns the identity and whether the caller is authenticated.
func (c Caller) UserID() (string, bool) {
	return c.userID, c.userID != ""
}

type callerKey struct{}

// WithCaller stores the caller on the request context.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext returns the stored caller, defaulting to guest.
func CallerFromContext(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey{}).(Caller); ok {
		return c
	}
	return Guest()
}
