package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenDenylist_RevokeExpiresWithToken(t *testing.T) {
	mr, client := newTestRedis(t)
	denylist := NewTokenDenylist(client)
	ctx := context.Background()

	revoked, err := denylist.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, denylist.Revoke(ctx, "tok-1", time.Minute))
	revoked, err = denylist.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = denylist.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenDenylist_ExpiredTokenIsNotStored(t *testing.T) {
	mr, client := newTestRedis(t)
	require.NoError(t, NewTokenDenylist(client).Revoke(context.Background(), "tok-2", 0))
	assert.False(t, mr.Exists(revokedTokenKey("tok-2")))
}
