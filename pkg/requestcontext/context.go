// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services read them, tests
// inject them without running the HTTP stack.
package requestcontext

import (
	"context"
	"time"
)

// Role tags a member's capability level. Exactly two roles exist.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

// Actor is the authenticated member attached to a request.
type Actor struct {
	ID   int64
	Role Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

type (
	actorKey       struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	clientInfoKey  struct{}
)

// ClientInfo carries parsed client metadata (kiosk browser, admin UI) for
// audit logging.
type ClientInfo struct {
	IP      string
	Browser string
	OS      string
}

// ActorFrom retrieves the authenticated actor. ok is false when the request is
// unauthenticated.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// WithActor injects the authenticated actor into the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Now retrieves the request-scoped time from context, falling back to
// time.Now for non-HTTP contexts (workers, CLI, tests that don't care).
// All temporal policy — the entry cool-down above all — reads the clock
// through here so tests can pin it.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Client retrieves parsed client metadata, zero value when absent.
func Client(ctx context.Context) ClientInfo {
	if ci, ok := ctx.Value(clientInfoKey{}).(ClientInfo); ok {
		return ci
	}
	return ClientInfo{}
}

// WithClient injects client metadata into a context.
func WithClient(ctx context.Context, ci ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, ci)
}
