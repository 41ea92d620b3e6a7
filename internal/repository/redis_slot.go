package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskquest/internal/model"
)

// DefaultRedisKey is the key that holds the document in Redis.
const DefaultRedisKey = "taskquest:document"

// RedisSlot keeps the document as a single Redis string without expiry.
type RedisSlot struct {
	client *redis.Client
	key    string
}

// NewRedisSlot wraps an existing client.
func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSlot{client: client, key: key}
}

// OpenRedisSlot connects to redisURL and checks the connection.
func OpenRedisSlot(ctx context.Context, redisURL, key string) (*RedisSlot, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisSlot(client, key), nil
}

func (s *RedisSlot) Load(ctx context.Context) (*model.Document, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return decodeBlob(data)
}

func (s *RedisSlot) Save(ctx context.Context, doc *model.Document) error {
	data, err := model.Encode(doc)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	return nil
}

func (s *RedisSlot) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisSlot) Close() error {
	return s.client.Close()
}
