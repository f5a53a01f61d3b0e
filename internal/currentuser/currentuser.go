package currentuser

import (
	"context"

	"github.com/google/uuid"
)

// Claims is the caller identity established by the authorization gate.
type Claims struct {
	UserID   uuid.UUID
	Email    string
	FullName string
}

type ctxKey struct{}

// With returns a context carrying the caller identity. The identity is
// established exactly once per request and read-only afterwards; setting it
// twice is a programming error, not a runtime condition.
func With(ctx context.Context, claims Claims) context.Context {
	if _, ok := ctx.Value(ctxKey{}).(Claims); ok {
		panic("currentuser: identity already set for this request")
	}
	return context.WithValue(ctx, ctxKey{}, claims)
}

// FromContext returns the caller identity, if one was established.
func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(Claims)
	return claims, ok
}

// UserID returns the caller's user id, or uuid.Nil for anonymous contexts.
func UserID(ctx context.Context) uuid.UUID {
	if claims, ok := FromContext(ctx); ok {
		return claims.UserID
	}
	return uuid.Nil
}
