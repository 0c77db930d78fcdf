package notify

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher delivers audit events to the notification collaborator.
// Delivery is fire-and-forget; the engine never waits on it.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Close() error
}

type RedisPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(addr, password string, logger *zap.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisPublisher{
		client: client,
		logger: logger.With(zap.String("component", "notify")),
	}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// NopPublisher is used when no notification backend is configured and in
// tests.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
