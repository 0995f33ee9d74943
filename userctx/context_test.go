package userctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogem/admin-console/models"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.False(t, GetActor(ctx).Authenticated())
	assert.Equal(t, "anonymous", GetDisplayName(ctx))

	ctx = SetActor(ctx, models.Actor{ID: "auth0|7", Role: models.RoleAdmin})
	assert.Equal(t, models.RoleAdmin, GetActor(ctx).Role)
	assert.Equal(t, "auth0|7", GetDisplayName(ctx))

	ctx = SetDisplayName(ctx, "Sam")
	assert.Equal(t, "Sam", GetDisplayName(ctx))
}
