// Package shared holds cross-cutting request-scoped types and helpers.
package shared

import (
	"context"

	"github.com/meridian-erp/meridian-erp/internal/lifecycle"
)

// Actor describes the authenticated caller of a lifecycle operation. Identity,
// role and ownership are resolved by the surrounding gateway and forwarded in
// request headers; the core never performs authentication itself.
type Actor struct {
	ID   int64
	Role lifecycle.Role
	// Owner reports whether the actor owns the order addressed by the
	// current request. Only meaningful for the dealer self-service role.
	Owner bool
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context. The second return value
// reports whether an actor was set.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
