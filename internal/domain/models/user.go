package models

import (
	"context"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

// User is the authenticated caller, reconstructed from the JWT claims on
// every request. Identity is managed by an external service; this is the
// projection the core needs for ownership checks.
type User struct {
	ID   uuid.UUID
	Role types.UserRole
}

// AnonymousUser represents an unauthenticated caller.
var AnonymousUser = &User{}

func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

type contextKey string

const userContextKey = contextKey("user")

// WithUser returns a copy of ctx carrying the caller identity.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the caller set by the auth middleware.
// Panics on a missing value: every handler past the middleware must
// have one, so absence is a programming error.
func UserFromContext(ctx context.Context) *User {
	user, ok := ctx.Value(userContextKey).(*User)
	if !ok {
		panic("missing user value in request context")
	}
	return user
}
