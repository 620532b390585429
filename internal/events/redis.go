package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis channels.
const (
	ChannelCompleted = "pipeline:completed"
	ChannelSteps     = "pipeline:steps"
)

// ChannelFor returns the Redis channel an event is published on.
func ChannelFor(name string) string {
	if name == PipelineCompleted {
		return ChannelCompleted
	}
	return ChannelSteps
}

// RedisPublisher publishes events as JSON with PUBLISH.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher connects to the server at url (redis://...) and checks it
// answers PING.
func NewRedisPublisher(ctx context.Context, url string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisPublisher{rdb: rdb}, nil
}

// NewRedisPublisherFromClient wraps an existing client.
func NewRedisPublisherFromClient(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, e Envelope) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, ChannelFor(e.Name), data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Name, err)
	}
	return nil
}

// Ping checks the server is reachable.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close closes the connection pool.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
