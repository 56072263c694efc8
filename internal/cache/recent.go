package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"bloodlagbe_backend/internal/model"
)

const (
	// RecentPostsKey is the sorted set holding the newest post ids globally,
	// scored by creation timestamp.
	RecentPostsKey = "posts:recent"

	// RecentPostsCap is the maximum number of post ids kept in the set.
	RecentPostsCap = 100

	// RecentPostsTTL expires an idle cache so it gets re-warmed from the
	// database rather than serving an arbitrarily old snapshot.
	RecentPostsTTL = 24 * time.Hour
)

// RecentPostsCache caches the ids of the newest posts. The database stays
// the source of truth; every operation here is best-effort and callers fall
// back to a direct query on miss or error.
type RecentPostsCache interface {
	// Add inserts a post id scored by its creation time, trims the set to
	// RecentPostsCap and refreshes the TTL.
	Add(ctx context.Context, postID string, createdAt time.Time) error

	// Latest returns up to limit post ids, newest first.
	Latest(ctx context.Context, limit int) ([]string, error)

	// Exists reports whether the cache key is present. False means the key
	// was never written or its TTL expired; callers should warm it.
	Exists(ctx context.Context) (bool, error)

	// Warm bulk-loads the given posts into the cache.
	Warm(ctx context.Context, posts []model.Post) error
}

// RedisRecentPostsCache implements RecentPostsCache on a Redis sorted set.
type RedisRecentPostsCache struct {
	client *redis.Client
}

// NewRecentPostsCache creates a RecentPostsCache backed by Redis.
func NewRecentPostsCache(client *redis.Client) RecentPostsCache {
	return &RedisRecentPostsCache{client: client}
}

// Add pipelines ZADD + ZREMRANGEBYRANK (trim to cap) + EXPIRE.
func (c *RedisRecentPostsCache) Add(ctx context.Context, postID string, createdAt time.Time) error {
	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, RecentPostsKey, redis.Z{
		Score:  float64(createdAt.UnixMilli()),
		Member: postID,
	})
	pipe.ZRemRangeByRank(ctx, RecentPostsKey, 0, int64(-RecentPostsCap-1))
	pipe.Expire(ctx, RecentPostsKey, RecentPostsTTL)

	_, err := pipe.Exec(ctx)
	return err
}

// Latest reads the highest-scored members, newest first.
func (c *RedisRecentPostsCache) Latest(ctx context.Context, limit int) ([]string, error) {
	return c.client.ZRevRange(ctx, RecentPostsKey, 0, int64(limit-1)).Result()
}

// Exists checks the cache key.
func (c *RedisRecentPostsCache) Exists(ctx context.Context) (bool, error) {
	n, err := c.client.Exists(ctx, RecentPostsKey).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Warm pipelines ZADD for each post plus a trim and EXPIRE.
func (c *RedisRecentPostsCache) Warm(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, p := range posts {
		pipe.ZAdd(ctx, RecentPostsKey, redis.Z{
			Score:  float64(p.CreatedAt.UnixMilli()),
			Member: p.ID,
		})
	}
	pipe.ZRemRangeByRank(ctx, RecentPostsKey, 0, int64(-RecentPostsCap-1))
	pipe.Expire(ctx, RecentPostsKey, RecentPostsTTL)

	_, err := pipe.Exec(ctx)
	return err
}
