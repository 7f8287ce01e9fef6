// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// ActorContext identifies the authenticated actor for the current request.
// The core never authenticates credentials itself; this is populated by the
// identity middleware from validated JWT claims.
type ActorContext struct {
	UserID   string
	Username string
	Role     string
	BranchID string
}

type actorContextKey struct{}

// WithActor adds ActorContext to context.
func WithActor(ctx context.Context, actor *ActorContext) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns ActorContext from context, or nil.
func GetActor(ctx context.Context) *ActorContext {
	if v, ok := ctx.Value(actorContextKey{}).(*ActorContext); ok {
		return v
	}
	return nil
}

// GetUsername returns the actor's username from context or empty string.
func GetUsername(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.Username
	}
	return ""
}

// GetBranchID returns the actor's branch from context or empty string.
func GetBranchID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.BranchID
	}
	return ""
}
