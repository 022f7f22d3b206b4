package cache

import (
	"complykit/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SummaryCache stores summary status per result and generated text per
// answer fingerprint
type SummaryCache interface {
	Set(ctx context.Context, summary *model.Summary) error
	Get(ctx context.Context, resultID string) (*model.Summary, error)
	SetText(ctx context.Context, fingerprint, text string) error
	GetText(ctx context.Context, fingerprint string) (string, bool, error)
}

type summaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSummaryCache(client *redis.Client, ttl time.Duration) SummaryCache {
	return &summaryCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *summaryCache) resultKey(resultID string) string {
	return fmt.Sprintf("summary:result:%s", resultID)
}

func (c *summaryCache) textKey(fingerprint string) string {
	return fmt.Sprintf("summary:fp:%s", fingerprint)
}

func (c *summaryCache) Set(ctx context.Context, summary *model.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.resultKey(summary.ResultID), data, c.ttl).Err()
}

func (c *summaryCache) Get(ctx context.Context, resultID string) (*model.Summary, error) {
	data, err := c.client.Get(ctx, c.resultKey(resultID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary model.Summary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *summaryCache) SetText(ctx context.Context, fingerprint, text string) error {
	return c.client.Set(ctx, c.textKey(fingerprint), text, c.ttl).Err()
}

func (c *summaryCache) GetText(ctx context.Context, fingerprint string) (string, bool, error) {
	text, err := c.client.Get(ctx, c.textKey(fingerprint)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}
