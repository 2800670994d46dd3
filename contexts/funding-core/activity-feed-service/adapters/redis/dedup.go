package redisadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupStore implements ports.EventDedupStore on Redis SETNX with a TTL, so
// replayed events are skipped across worker restarts.
type DedupStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewDedupStore(client *redis.Client, keyPrefix string) *DedupStore {
	if keyPrefix == "" {
		keyPrefix = "activity-feed:dedup"
	}
	return &DedupStore{client: client, keyPrefix: keyPrefix}
}

func (d *DedupStore) ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	key := fmt.Sprintf("%s:%s", d.keyPrefix, eventID)
	reserved, err := d.client.SetNX(ctx, key, payloadHash, ttl).Result()
	if err != nil {
		return false, err
	}
	return !reserved, nil
}
