package cache

import (
	"complykit/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingCache queues results that are not yet in the document store,
// keyed by owner (see model.Owner.Key)
type PendingCache interface {
	Push(ctx context.Context, ownerKey string, result *model.QuestionnaireResult) error
	List(ctx context.Context, ownerKey string) ([]*model.QuestionnaireResult, error)
	// Drain atomically removes and returns every queued result
	Drain(ctx context.Context, ownerKey string) ([]*model.QuestionnaireResult, error)
	Count(ctx context.Context, ownerKey string) (int64, error)
}

type pendingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPendingCache(client *redis.Client, ttl time.Duration) PendingCache {
	return &pendingCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *pendingCache) key(ownerKey string) string {
	return fmt.Sprintf("pending:%s", ownerKey)
}

func (c *pendingCache) Push(ctx context.Context, ownerKey string, result *model.QuestionnaireResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, c.key(ownerKey), data)
	pipe.Expire(ctx, c.key(ownerKey), c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *pendingCache) List(ctx context.Context, ownerKey string) ([]*model.QuestionnaireResult, error) {
	raw, err := c.client.LRange(ctx, c.key(ownerKey), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return decodeResults(raw)
}

func (c *pendingCache) Drain(ctx context.Context, ownerKey string) ([]*model.QuestionnaireResult, error) {
	pipe := c.client.TxPipeline()
	lr := pipe.LRange(ctx, c.key(ownerKey), 0, -1)
	pipe.Del(ctx, c.key(ownerKey))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return decodeResults(lr.Val())
}

func (c *pendingCache) Count(ctx context.Context, ownerKey string) (int64, error) {
	return c.client.LLen(ctx, c.key(ownerKey)).Result()
}

func decodeResults(raw []string) ([]*model.QuestionnaireResult, error) {
	results := make([]*model.QuestionnaireResult, 0, len(raw))
	for _, item := range raw {
		var r model.QuestionnaireResult
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("corrupt pending entry: %w", err)
		}
		results = append(results, &r)
	}
	return results, nil
}
