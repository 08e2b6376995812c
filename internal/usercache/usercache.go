// Package usercache is a Redis read-through cache in front of a user store.
package usercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mentorlink/forum/internal/models"
	"github.com/mentorlink/forum/internal/store"
)

// DefaultTTL applies when New is given a non-positive ttl.
const DefaultTTL = 10 * time.Minute

var (
	_ store.UserStore  = (*Cache)(nil)
	_ store.UserWriter = (*Cache)(nil)
)

// Cache serves user lookups from Redis and falls back to next on a miss.
// Redis failures are logged and bypassed.
type Cache struct {
	client *redis.Client
	next   store.UserStore
	ttl    time.Duration
}

// New wraps next with a cache stored in client.
func New(client *redis.Client, next store.UserStore, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, next: next, ttl: ttl}
}

func userKey(id string) string {
	return fmt.Sprintf("forum:user:%s", id)
}

// FindUser returns the cached user or loads it from next.
func (c *Cache) FindUser(ctx context.Context, id string) (*models.User, error) {
	v, err := c.client.Get(ctx, userKey(id)).Result()
	switch {
	case err == nil:
		var u models.User
		if jerr := json.Unmarshal([]byte(v), &u); jerr == nil {
			return &u, nil
		}
		slog.Warn("usercache: corrupt entry", slog.String("user_id", id))
	case !errors.Is(err, redis.Nil):
		slog.Warn("usercache: get failed", slog.String("user_id", id), slog.String("error", err.Error()))
	}

	u, err := c.next.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, *u)
	return u, nil
}

// FindUsers resolves ids with one MGET and loads the misses from next.
func (c *Cache) FindUsers(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}
	missing := ids
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Warn("usercache: mget failed", slog.String("error", err.Error()))
	} else {
		missing = missing[:0:0]
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var u models.User
			if err := json.Unmarshal([]byte(s), &u); err != nil {
				missing = append(missing, ids[i])
				continue
			}
			out[ids[i]] = u
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	loaded, err := c.next.FindUsers(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, u := range loaded {
		out[id] = u
		c.set(ctx, u)
	}
	return out, nil
}

// PutUser writes through to next and drops the cached entry.
func (c *Cache) PutUser(ctx context.Context, u models.User) error {
	w, ok := c.next.(store.UserWriter)
	if !ok {
		return fmt.Errorf("usercache: underlying store is read-only")
	}
	if err := w.PutUser(ctx, u); err != nil {
		return err
	}
	c.Invalidate(ctx, u.ID)
	return nil
}

// Invalidate removes id from the cache.
func (c *Cache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, userKey(id)).Err(); err != nil {
		slog.Warn("usercache: del failed", slog.String("user_id", id), slog.String("error", err.Error()))
	}
}

func (c *Cache) set(ctx context.Context, u models.User) {
	b, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, userKey(u.ID), b, c.ttl).Err(); err != nil {
		slog.Warn("usercache: set failed", slog.String("user_id", u.ID), slog.String("error", err.Error()))
	}
}
