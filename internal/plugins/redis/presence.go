package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const presenceKey = "presence:online"

// RedisPresenceStore keeps online users in a single ZSet scored by the
// moment their presence expires. Stale members are swept on read.
type RedisPresenceStore struct {
	rdb *redis.Client
}

func NewRedisPresenceStore(rdb *redis.Client) *RedisPresenceStore {
	return &RedisPresenceStore{rdb: rdb}
}

func (p *RedisPresenceStore) SetOnline(ctx context.Context, userID string, ttl time.Duration) error {
	err := p.rdb.ZAdd(ctx, presenceKey, redis.Z{
		Score:  float64(time.Now().Add(ttl).Unix()),
		Member: userID,
	}).Err()
	if err != nil {
		return err
	}
	// Bound the whole set's lifetime so an idle deployment does not
	// leak the key.
	return p.rdb.Expire(ctx, presenceKey, ttl*2).Err()
}

func (p *RedisPresenceStore) SetOffline(ctx context.Context, userID string) error {
	return p.rdb.ZRem(ctx, presenceKey, userID).Err()
}

func (p *RedisPresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	now := time.Now().Unix()
	p.rdb.ZRemRangeByScore(ctx, presenceKey, "-inf", strconv.FormatInt(now, 10))
	return p.rdb.ZRange(ctx, presenceKey, 0, -1).Result()
}
