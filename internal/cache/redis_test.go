package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodpair/moodpair/internal/cache"
	"github.com/moodpair/moodpair/internal/config"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	return cache.NewRedisCache(cfg), mr
}

type statusPayload struct {
	Status    string `json:"status"`
	PartnerID uint64 `json:"partner_id,omitempty"`
}

func TestMatchStatusRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	var out statusPayload
	hit, err := c.GetMatchStatus(ctx, 1, &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetMatchStatus(ctx, 1, statusPayload{Status: "pending", PartnerID: 2}, time.Minute))

	hit, err = c.GetMatchStatus(ctx, 1, &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, uint64(2), out.PartnerID)
}

func TestMatchStatusCorruptPayloadIsAMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, mr.Set(c.KeyForMatchStatus(1), "{not json"))

	var out statusPayload
	hit, err := c.GetMatchStatus(ctx, 1, &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInvalidateMatchStatus(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, c.SetMatchStatus(ctx, 1, statusPayload{Status: "accepted"}, time.Minute))
	require.NoError(t, c.SetMatchStatus(ctx, 2, statusPayload{Status: "accepted"}, time.Minute))
	require.NoError(t, c.SetMatchStatus(ctx, 3, statusPayload{Status: "pending"}, time.Minute))

	require.NoError(t, c.InvalidateMatchStatus(ctx, 1, 2))

	assert.False(t, mr.Exists(c.KeyForMatchStatus(1)))
	assert.False(t, mr.Exists(c.KeyForMatchStatus(2)))
	// untouched user keeps their descriptor
	assert.True(t, mr.Exists(c.KeyForMatchStatus(3)))

	// invalidating nothing is a no-op
	assert.NoError(t, c.InvalidateMatchStatus(ctx))
}

func TestLikeCount(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	_, hit, err := c.GetLikeCount(ctx, 7)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.UpdateLikeCount(ctx, 7, 42, time.Minute))

	count, hit, err := c.GetLikeCount(ctx, 7)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(42), count)

	// reads push the TTL back out
	ttl := mr.TTL(c.KeyForLikeCount(7))
	assert.Greater(t, ttl, time.Minute)

	require.NoError(t, c.InvalidateLikeCount(ctx, 7))
	_, hit, err = c.GetLikeCount(ctx, 7)
	require.NoError(t, err)
	assert.False(t, hit)
}
