package userctx

import (
	"context"

	"github.com/blogem/admin-console/models"
)

// Context key type
type contextKey string

const actorKey contextKey = "actor"
const displayNameKey contextKey = "display_name"

// SetActor adds the acting administrator to request context
func SetActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor retrieves the acting administrator from request context. A
// request without one yields the zero actor, which is never authenticated.
func GetActor(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(actorKey).(models.Actor)
	return actor
}

// SetDisplayName adds the user's display name to request context
func SetDisplayName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, displayNameKey, name)
}

// GetDisplayName retrieves the display name, falling back to the actor id
func GetDisplayName(ctx context.Context) string {
	if name, ok := ctx.Value(displayNameKey).(string); ok && name != "" {
		return name
	}
	if id := GetActor(ctx).ID; id != "" {
		return id
	}
	return "anonymous"
}
