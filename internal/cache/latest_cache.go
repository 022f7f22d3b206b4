package cache

import (
	"complykit/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LatestCache keeps the most recent submission per owner as a backup
type LatestCache interface {
	Set(ctx context.Context, ownerKey string, latest *model.LatestSubmission) error
	Get(ctx context.Context, ownerKey string) (*model.LatestSubmission, error)
}

type latestCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLatestCache(client *redis.Client, ttl time.Duration) LatestCache {
	return &latestCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *latestCache) key(ownerKey string) string {
	return fmt.Sprintf("latest:%s", ownerKey)
}

func (c *latestCache) Set(ctx context.Context, ownerKey string, latest *model.LatestSubmission) error {
	data, err := json.Marshal(latest)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(ownerKey), data, c.ttl).Err()
}

func (c *latestCache) Get(ctx context.Context, ownerKey string) (*model.LatestSubmission, error) {
	data, err := c.client.Get(ctx, c.key(ownerKey)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var latest model.LatestSubmission
	if err := json.Unmarshal([]byte(data), &latest); err != nil {
		return nil, err
	}
	return &latest, nil
}
