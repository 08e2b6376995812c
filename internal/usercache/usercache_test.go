package usercache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/forum/internal/apperr"
	"github.com/mentorlink/forum/internal/models"
	"github.com/mentorlink/forum/internal/testutil"
)

func TestUnreachableRedisIsBypassed(t *testing.T) {
	db := testutil.TestDB(t)
	testutil.SeedUser(t, db, "u1")

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	c := New(client, db, time.Minute)
	ctx := context.Background()

	u, err := c.FindUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "User u1", u.Name)

	users, err := c.FindUsers(ctx, []string{"u1", "ghost"})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = c.FindUser(ctx, "ghost")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, c.PutUser(ctx, models.User{ID: "u2", Name: "New"}))
	u, err = db.FindUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "New", u.Name)
}

func TestCacheWithRedis(t *testing.T) {
	addr := os.Getenv("FORUM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FORUM_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	db := testutil.TestDB(t)
	testutil.SeedUser(t, db, "cache-u1")
	testutil.SeedUser(t, db, "cache-u2")
	t.Cleanup(func() { client.Del(context.Background(), userKey("cache-u1"), userKey("cache-u2")) })

	c := New(client, db, time.Minute)

	u, err := c.FindUser(ctx, "cache-u1")
	require.NoError(t, err)
	assert.Equal(t, "User cache-u1", u.Name)

	raw, err := client.Get(ctx, userKey("cache-u1")).Result()
	require.NoError(t, err)
	assert.Contains(t, raw, "User cache-u1")

	// Cached entry wins over the backing store until invalidated.
	require.NoError(t, db.PutUser(ctx, models.User{ID: "cache-u1", Name: "Renamed"}))
	u, err = c.FindUser(ctx, "cache-u1")
	require.NoError(t, err)
	assert.Equal(t, "User cache-u1", u.Name)

	require.NoError(t, c.PutUser(ctx, models.User{ID: "cache-u1", Name: "Renamed again"}))
	users, err := c.FindUsers(ctx, []string{"cache-u1", "cache-u2"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed again", users["cache-u1"].Name)
	assert.Equal(t, "User cache-u2", users["cache-u2"].Name)

	ttl, err := client.TTL(ctx, userKey("cache-u2")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
