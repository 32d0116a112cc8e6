package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/pkg/logger"
)

type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SetRawDataset(ctx context.Context, urlHash string, body []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, fmt.Sprintf("dataset:%s", urlHash), body, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set dataset cache: %w", err)
	}

	logger.Debug("Raw dataset cached",
		zap.String("url_hash", urlHash),
		zap.Int("bytes", len(body)),
		zap.Duration("ttl", ttl),
	)
	return nil
}

func (c *Client) GetRawDataset(ctx context.Context, urlHash string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("dataset:%s", urlHash)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get dataset cache: %w", err)
	}

	logger.Debug("Raw dataset cache hit", zap.String("url_hash", urlHash))
	return data, true, nil
}

func (c *Client) InvalidateDataset(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "dataset:*", 0).Iterator()
	for iter.Next(ctx) {
		err := c.client.Del(ctx, iter.Val()).Err()
		if err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Raw dataset cache invalidated")
	return nil
}
