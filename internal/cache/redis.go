package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// presenceTTL governs how long a user counts as online after their last
// activity when no explicit logout happens.
const presenceTTL = 5 * time.Minute

// PresenceCache overlays short-lived online state on top of the persisted
// IsOnline flag. All methods are safe to call on a nil receiver, in which case
// the database flag alone is authoritative.
type PresenceCache struct {
	client *redis.Client
}

func NewPresenceCache(addr string) (*PresenceCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PresenceCache{client: client}, nil
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

func (c *PresenceCache) SetOnline(ctx context.Context, userID string) error {
	if c == nil {
		return nil
	}
	return c.client.Set(ctx, presenceKey(userID), "1", presenceTTL).Err()
}

func (c *PresenceCache) SetOffline(ctx context.Context, userID string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, presenceKey(userID)).Err()
}

// IsOnline reports whether a presence key exists for the user. Errors are
// swallowed into "offline": presence is advisory, never load-bearing.
func (c *PresenceCache) IsOnline(ctx context.Context, userID string) bool {
	if c == nil {
		return false
	}
	n, err := c.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false
	}
	return n > 0
}
